package stealth

import (
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultProxyCooldown = 10 * time.Minute

// ProxyPool hands out egress proxies round-robin. It can be shared between
// sessions; GetProxy never blocks and never fails on a non-empty pool.
type ProxyPool struct {
	mu       sync.Mutex
	proxies  []string
	next     int
	cooldown map[string]time.Time
	now      func() time.Time
}

func NewProxyPool(proxies []string) *ProxyPool {
	return &ProxyPool{
		proxies:  append([]string(nil), proxies...),
		cooldown: make(map[string]time.Time),
		now:      time.Now,
	}
}

// GetProxy returns the next proxy not in cooldown. When every proxy is
// cooling down the first one is returned anyway. Empty pool gives "".
func (p *ProxyPool) GetProxy() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	now := p.now()
	for attempt := 0; attempt < len(p.proxies); attempt++ {
		proxy := p.proxies[p.next]
		p.next = (p.next + 1) % len(p.proxies)

		until, cooling := p.cooldown[proxy]
		if !cooling || until.Before(now) {
			return proxy
		}
	}

	return p.proxies[0]
}

func (p *ProxyPool) MarkFailed(proxy string, cooldown time.Duration) {
	if proxy == "" {
		return
	}
	if cooldown <= 0 {
		cooldown = DefaultProxyCooldown
	}

	p.mu.Lock()
	p.cooldown[proxy] = p.now().Add(cooldown)
	p.mu.Unlock()

	log.Warnf("proxy %s marked for cooldown (%v)", maskProxy(proxy), cooldown)
}

func (p *ProxyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

type PoolStats struct {
	Total     int `json:"total_proxies"`
	Cooling   int `json:"cooling_proxies"`
	Available int `json:"available_proxies"`
}

func (p *ProxyPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	cooling := 0
	for _, proxy := range p.proxies {
		if until, ok := p.cooldown[proxy]; ok && !until.Before(now) {
			cooling++
		}
	}
	return PoolStats{Total: len(p.proxies), Cooling: cooling, Available: len(p.proxies) - cooling}
}

// maskProxy hides proxy credentials before the address is logged.
func maskProxy(proxy string) string {
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		if i := strings.LastIndex(proxy, "@"); i >= 0 {
			return "***@" + proxy[i+1:]
		}
		return proxy
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.String()
}
