package jobroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/maxaizer/swiss-jobs/internal/clients/stealth"
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

type Config struct {
	Mode                 stealth.Mode
	BaseURL              string
	Timeout              time.Duration
	ProxyPool            *stealth.ProxyPool
	ProxyCooldown        time.Duration
	MaxRequestsPerSecond float64
	IncludeRawData       bool
	// RotateProxyOnRateLimit drops the session after a 429 in aggressive
	// mode so the next call starts over with a fresh proxy and CSRF token.
	RotateProxyOnRateLimit bool
	Retry                  stealth.RetryPolicy
}

// Provider is the job-room.ch client. The session is created on first use
// and bootstrapped with one CSRF GET against the portal root.
type Provider struct {
	cfg         Config
	resolver    LocationResolver
	transformer *Transformer
	httpClient  stealth.HTTPClient

	mu        sync.Mutex
	session   *stealth.Session
	csrfReady bool
	closed    bool
}

func NewProvider(cfg Config, resolver LocationResolver) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Mode == "" {
		cfg.Mode = stealth.ModeStealth
	}
	if resolver == nil {
		resolver = NewLocations()
	}
	return &Provider{
		cfg:         cfg,
		resolver:    resolver,
		transformer: NewTransformer(Name, cfg.IncludeRawData),
	}
}

// SetHTTPClient makes every session of this provider use client instead of its own transport.
func (p *Provider) SetHTTPClient(client stealth.HTTPClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.httpClient = client
}

func (p *Provider) Name() string        { return Name }
func (p *Provider) DisplayName() string { return DisplayName }

func (p *Provider) Capabilities() models.ProviderCapabilities {
	return models.ProviderCapabilities{
		SupportsRadiusSearch:    true,
		SupportsCantonFilter:    true,
		SupportsProfessionCodes: true,
		SupportsLanguageSkills:  true,
		SupportsCompanyFilter:   true,
		SupportsWorkForms:       true,
		MaxPageSize:             100,
		SupportedLanguages:      []string{"en", "de", "fr", "it"},
		SupportedSortOrders:     []models.SortOrder{models.SortDateDesc, models.SortDateAsc, models.SortRelevance},
	}
}

func (p *Provider) Search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error) {
	started := time.Now()

	result, err := p.search(ctx, criteria)
	if err != nil {
		log.Errorf("search failed: %v", err)
		return models.SearchResult{}, errs.NewProviderError(Name, "Search failed", err)
	}

	elapsed := time.Since(started)
	metrics.SearchDuration.WithLabelValues(Name).Observe(elapsed.Seconds())
	result.SearchTimeMs = elapsed.Milliseconds()
	return result, nil
}

func (p *Provider) search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error) {
	if err := criteria.Validate(); err != nil {
		return models.SearchResult{}, fmt.Errorf("invalid criteria: %w", err)
	}

	session, err := p.activeSession(ctx)
	if err != nil {
		return models.SearchResult{}, err
	}

	payload := BuildSearchPayload(criteria, p.resolver)
	resp, err := session.WithCSRFRetry(ctx, http.MethodPost, buildSearchURL(p.cfg.BaseURL, criteria), p.cfg.BaseURL, payload)
	if err != nil {
		p.afterFailure(session, err)
		return models.SearchResult{}, err
	}

	records, total, err := decodeSearchResponse(resp.Body)
	if err != nil {
		return models.SearchResult{}, err
	}

	return models.SearchResult{
		Items:      p.transformer.TransformAll(records),
		TotalCount: total,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
		TotalPages: (total + criteria.PageSize - 1) / criteria.PageSize,
		Source:     Name,
		Request:    criteria,
	}, nil
}

// decodeSearchResponse accepts a bare list of advertisements or a page
// envelope with content (or jobAdvertisements) and totalElements.
func decodeSearchResponse(body []byte) ([]json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, 0, &errs.ResponseParseError{Provider: Name, Message: "empty response body"}
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, 0, &errs.ResponseParseError{Provider: Name, Message: err.Error()}
		}
		return records, len(records), nil

	case '{':
		var page struct {
			Content           optional[[]json.RawMessage] `json:"content"`
			JobAdvertisements optional[[]json.RawMessage] `json:"jobAdvertisements"`
			TotalElements     json.RawMessage             `json:"totalElements"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, 0, &errs.ResponseParseError{Provider: Name, Message: err.Error()}
		}

		records := page.Content.Value
		if !page.Content.Valid {
			records = page.JobAdvertisements.Value
		}

		total := len(records)
		if len(page.TotalElements) > 0 {
			var raw any
			if err := json.Unmarshal(page.TotalElements, &raw); err == nil && raw != nil {
				total = cast.ToInt(raw)
			}
		}
		return records, total, nil
	}

	return nil, 0, &errs.ResponseParseError{Provider: Name, Message: fmt.Sprintf("unexpected response format: %.40s", trimmed)}
}

func (p *Provider) GetDetails(ctx context.Context, id, language string) (models.JobListing, error) {
	listing, err := p.getDetails(ctx, id, language)
	if err != nil {
		log.Errorf("failed to get job details: %v", err)
		return models.JobListing{}, errs.NewProviderError(Name, "Failed to get job details", err)
	}
	return listing, nil
}

func (p *Provider) getDetails(ctx context.Context, id, language string) (models.JobListing, error) {
	if strings.TrimSpace(id) == "" {
		return models.JobListing{}, fmt.Errorf("job id is empty")
	}

	session, err := p.activeSession(ctx)
	if err != nil {
		return models.JobListing{}, err
	}

	resp, err := session.WithCSRFRetry(ctx, http.MethodGet, buildDetailsURL(p.cfg.BaseURL, id, language), p.cfg.BaseURL, nil)
	if err != nil {
		p.afterFailure(session, err)
		return models.JobListing{}, err
	}

	return p.transformer.Transform(resp.Body)
}

// HealthCheck never fails; problems are reported in the returned status.
func (p *Provider) HealthCheck(ctx context.Context) models.ProviderHealth {
	started := time.Now()
	health := models.ProviderHealth{Provider: Name}

	resp, err := p.probe(ctx)
	health.LatencyMs = time.Since(started).Milliseconds()

	switch {
	case err != nil:
		health.Status = models.Unavailable
		health.Message = err.Error()
	case resp.StatusCode == http.StatusOK:
		health.Status = models.Healthy
		health.Message = "API accessible"
	case resp.StatusCode >= http.StatusInternalServerError:
		health.Status = models.Unavailable
		health.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	default:
		health.Status = models.Degraded
		health.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return health
}

func (p *Provider) probe(ctx context.Context) (*stealth.Response, error) {
	session, err := p.activeSession(ctx)
	if err != nil {
		return nil, err
	}
	return session.Probe(ctx, p.cfg.BaseURL)
}

// Close releases the session. The provider cannot be used afterwards.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	return p.dropSessionLocked()
}

func (p *Provider) activeSession(ctx context.Context) (*stealth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errs.ErrSessionClosed
	}

	if p.session == nil {
		session := stealth.NewSession(stealth.Config{
			Mode:                 p.cfg.Mode,
			BaseURL:              p.cfg.BaseURL,
			Timeout:              p.cfg.Timeout,
			ProxyPool:            p.cfg.ProxyPool,
			ProxyCooldown:        p.cfg.ProxyCooldown,
			MaxRequestsPerSecond: p.cfg.MaxRequestsPerSecond,
			Retry:                p.cfg.Retry,
		})
		if p.httpClient != nil {
			session.SetHTTPClient(p.httpClient)
		}
		if err := session.Start(ctx); err != nil {
			return nil, err
		}
		p.session = session
		p.csrfReady = false
	}

	if !p.csrfReady {
		if _, err := p.session.RefreshCSRFToken(ctx, p.cfg.BaseURL, stealth.CSRFCookieName); err != nil {
			return nil, err
		}
		p.csrfReady = true
	}
	return p.session, nil
}

func (p *Provider) afterFailure(session *stealth.Session, err error) {
	if !p.cfg.RotateProxyOnRateLimit || p.cfg.Mode != stealth.ModeAggressive || !errs.IsRateLimit(err) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != session {
		return
	}
	log.Info("rate limited, dropping session to rotate proxy")
	_ = p.dropSessionLocked()
}

func (p *Provider) dropSessionLocked() error {
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	p.csrfReady = false
	return err
}
