package stealth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout  = 30 * time.Second
	CSRFCookieName  = "XSRF-TOKEN"
	CSRFHeaderName  = "X-XSRF-TOKEN"
	jsonContentType = "application/json;charset=UTF-8"
	maxErrorBody    = 2048
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Mode                 Mode
	BaseURL              string
	Timeout              time.Duration
	ProxyPool            *ProxyPool
	ProxyCooldown        time.Duration
	MaxRequestsPerSecond float64
	Retry                RetryPolicy
	// TLSConfig overrides the client TLS settings, e.g. extra root CAs.
	TLSConfig *tls.Config
}

type state int

const (
	unstarted state = iota
	started
	closed
)

// Session is one browser-like HTTP identity: fixed Chrome fingerprint,
// cookie jar, CSRF token and (in aggressive mode) one egress proxy.
type Session struct {
	cfg           Config
	chromeVersion string
	headers       http.Header
	limiter       *rate.Limiter

	mu         sync.Mutex
	state      state
	client     HTTPClient
	transport  *http.Transport
	proxy      string
	customHTTP HTTPClient

	csrfMu    sync.RWMutex
	csrfToken string
}

func NewSession(cfg Config) *Session {
	if cfg.Mode == "" {
		cfg.Mode = ModeStealth
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	s := &Session{cfg: cfg, chromeVersion: pickChromeVersion()}
	s.headers = headersFor(cfg.Mode, s.chromeVersion)
	if cfg.MaxRequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), 1)
	}
	return s
}

// SetHTTPClient replaces the transport built by Start. Must be called before Start.
func (s *Session) SetHTTPClient(client HTTPClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customHTTP = client
}

func (s *Session) Mode() Mode            { return s.cfg.Mode }
func (s *Session) ChromeVersion() string { return s.chromeVersion }

func (s *Session) Proxy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proxy
}

func (s *Session) Headers() http.Header {
	return s.headers.Clone()
}

func (s *Session) CSRFToken() string {
	s.csrfMu.RLock()
	defer s.csrfMu.RUnlock()
	return s.csrfToken
}

func (s *Session) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *Session) startLocked() error {
	switch s.state {
	case closed:
		return errs.ErrSessionClosed
	case started:
		return nil
	}

	if s.cfg.Mode == ModeAggressive && s.cfg.ProxyPool != nil {
		s.proxy = s.cfg.ProxyPool.GetProxy()
	}

	if s.customHTTP != nil {
		s.client = s.customHTTP
		s.state = started
		log.Debugf("session started in %s mode with custom http client", s.cfg.Mode)
		return nil
	}

	transport := &http.Transport{
		Proxy:               nil,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     s.cfg.TLSConfig.Clone(),
	}

	if s.cfg.Mode == ModeFast {
		transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	} else if err := http2.ConfigureTransport(transport); err != nil {
		return fmt.Errorf("configure http2 transport: %w", err)
	}

	if s.proxy != "" {
		proxyURL, err := url.Parse(s.proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy url %q: %w", maskProxy(s.proxy), err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}

	s.transport = transport
	s.client = &http.Client{Transport: transport, Jar: jar, Timeout: s.cfg.Timeout}
	s.state = started

	log.Debugf("session started in %s mode (chrome %s, proxy: %v)", s.cfg.Mode, s.chromeVersion, s.proxy != "")
	return nil
}

// Close releases the transport. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == closed {
		return nil
	}
	if s.transport != nil {
		s.transport.CloseIdleConnections()
	}
	s.state = closed
	s.client = nil
	s.transport = nil
	return nil
}

func (s *Session) httpClient() (HTTPClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startLocked(); err != nil {
		return nil, err
	}
	return s.client, nil
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        *url.URL
	cookies    []*http.Cookie
	jar        http.CookieJar
}

func (r *Response) Cookie(name string) (string, bool) {
	for _, c := range r.cookies {
		if c.Name == name && c.Value != "" {
			return c.Value, true
		}
	}
	if r.jar != nil && r.URL != nil {
		for _, c := range r.jar.Cookies(r.URL) {
			if c.Name == name && c.Value != "" {
				return c.Value, true
			}
		}
	}
	return "", false
}

func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("error decoding JSON response: %w", err)
	}
	return nil
}

type requestOptions struct {
	skipCSRF bool
	headers  http.Header
}

type RequestOption func(*requestOptions)

func WithoutCSRF() RequestOption {
	return func(o *requestOptions) { o.skipCSRF = true }
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

func (s *Session) Get(ctx context.Context, rawURL string, params url.Values, opts ...RequestOption) (*Response, error) {
	target, err := s.resolve(rawURL, params)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, http.MethodGet, target, nil, applyOptions(opts), true)
}

// Probe is a GET whose HTTP status is reported, not turned into an error.
func (s *Session) Probe(ctx context.Context, rawURL string) (*Response, error) {
	target, err := s.resolve(rawURL, nil)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, http.MethodGet, target, nil, requestOptions{}, false)
}

// Post sends payload as JSON. The held CSRF token goes into X-XSRF-TOKEN
// unless WithoutCSRF is given.
func (s *Session) Post(ctx context.Context, rawURL string, payload any, opts ...RequestOption) (*Response, error) {
	target, err := s.resolve(rawURL, nil)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	if o.headers == nil {
		o.headers = http.Header{}
	}

	var body []byte
	if payload != nil {
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		o.headers.Set("Content-Type", jsonContentType)
	}

	if token := s.CSRFToken(); !o.skipCSRF && token != "" {
		o.headers.Set(CSRFHeaderName, token)
	}

	return s.send(ctx, http.MethodPost, target, body, o, true)
}

// RefreshCSRFToken loads rawURL and keeps the value of cookieName as the
// CSRF token. A missing cookie is logged and the previous token kept.
func (s *Session) RefreshCSRFToken(ctx context.Context, rawURL, cookieName string) (string, error) {
	if cookieName == "" {
		cookieName = CSRFCookieName
	}

	resp, err := s.Get(ctx, rawURL, nil)
	if err != nil {
		log.Errorf("failed to refresh CSRF token: %v", err)
		return "", errors.Wrap(err, "CSRF token refresh failed")
	}

	token, found := resp.Cookie(cookieName)
	if !found {
		log.Warnf("CSRF cookie '%s' not found", cookieName)
		return s.CSRFToken(), nil
	}

	s.csrfMu.Lock()
	s.csrfToken = token
	s.csrfMu.Unlock()

	metrics.CSRFRefreshCounter.Inc()
	log.Debugf("CSRF token refreshed: %s...", truncate(token, 10))
	return token, nil
}

// WithCSRFRetry performs the request and, on an authentication failure,
// refreshes the CSRF token from csrfRefreshURL and tries exactly once more.
func (s *Session) WithCSRFRetry(ctx context.Context, method, rawURL, csrfRefreshURL string, payload any) (*Response, error) {
	do := func() (*Response, error) {
		if strings.EqualFold(method, http.MethodGet) {
			return s.Get(ctx, rawURL, nil)
		}
		return s.Post(ctx, rawURL, payload)
	}

	resp, err := do()
	if err == nil || !errs.IsAuthentication(err) {
		return resp, err
	}

	log.Info("auth failed, refreshing CSRF token and retrying...")
	if _, refreshErr := s.RefreshCSRFToken(ctx, csrfRefreshURL, CSRFCookieName); refreshErr != nil {
		return nil, refreshErr
	}
	return do()
}

func (s *Session) send(ctx context.Context, method, target string, body []byte, o requestOptions, checkStatus bool) (*Response, error) {
	client, err := s.httpClient()
	if err != nil {
		return nil, err
	}

	var resp *Response
	err = s.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		resp, attemptErr = s.roundTrip(ctx, client, method, target, body, o)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	if checkStatus {
		if err = s.checkStatus(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *Session) roundTrip(ctx context.Context, client HTTPClient, method, target string, body []byte, o requestOptions) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	for key, values := range s.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	for key, values := range o.headers {
		req.Header[key] = append([]string(nil), values...)
	}

	httpResp, err := client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsCounter.WithLabelValues(method, "error").Inc()
		return nil, &errs.NetworkError{Op: method, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &errs.NetworkError{Op: method, Err: fmt.Errorf("error reading response body: %w", err)}
	}
	metrics.UpstreamRequestsCounter.WithLabelValues(method, strconv.Itoa(httpResp.StatusCode)).Inc()

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
		URL:        req.URL,
		cookies:    httpResp.Cookies(),
	}
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		resp.URL = httpResp.Request.URL
	}
	if c, ok := client.(*http.Client); ok {
		resp.jar = c.Jar
	}
	return resp, nil
}

func (s *Session) checkStatus(resp *Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RateLimitedCounter.Inc()
		rateErr := &errs.RateLimitError{Provider: "session", RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}

		if proxy := s.Proxy(); s.cfg.Mode == ModeAggressive && s.cfg.ProxyPool != nil && proxy != "" {
			log.Info("rate limited, current proxy marked for cooldown")
			s.cfg.ProxyPool.MarkFailed(proxy, s.cfg.ProxyCooldown)
		}
		return rateErr

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &errs.AuthenticationError{Provider: "session", Status: resp.StatusCode}

	case resp.StatusCode >= http.StatusBadRequest:
		return &errs.HTTPError{Status: resp.StatusCode, Body: truncate(string(resp.Body), maxErrorBody)}
	}
	return nil
}

func (s *Session) resolve(rawURL string, params url.Values) (string, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if !target.IsAbs() && s.cfg.BaseURL != "" {
		base, err := url.Parse(s.cfg.BaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base url %q: %w", s.cfg.BaseURL, err)
		}
		target = base.ResolveReference(target)
	}

	if len(params) > 0 {
		if target.RawQuery != "" {
			target.RawQuery += "&" + params.Encode()
		} else {
			target.RawQuery = params.Encode()
		}
	}
	return target.String(), nil
}

func applyOptions(opts []RequestOption) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// parseRetryAfter understands the delta-seconds form only.
func parseRetryAfter(value string) *int {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return nil
	}
	return &seconds
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
