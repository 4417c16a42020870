package main

import (
	"context"

	"github.com/maxaizer/swiss-jobs/internal/clients/gemini"
	"github.com/maxaizer/swiss-jobs/internal/clients/jobroom"
	"github.com/maxaizer/swiss-jobs/internal/clients/stealth"
	"github.com/maxaizer/swiss-jobs/internal/config"
	"github.com/maxaizer/swiss-jobs/internal/domain/models"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/maxaizer/swiss-jobs/internal/providers"
	"github.com/maxaizer/swiss-jobs/internal/repositories"
	"github.com/maxaizer/swiss-jobs/internal/services"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

func newRegistry(cfg config.ProviderConfig, modeOverride string) (*providers.Registry, error) {
	mode, err := stealth.ParseMode(lo.Ternary(modeOverride != "", modeOverride, cfg.Mode))
	if err != nil {
		return nil, err
	}

	retry := stealth.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.MaxRetries

	locations := repositories.NewCachedLocations(jobroom.NewLocations())

	registry := providers.NewRegistry()
	err = registry.Register(jobroom.Name, func() (providers.Provider, error) {
		return jobroom.NewProvider(jobroom.Config{
			Mode:                   mode,
			BaseURL:                cfg.BaseURL,
			Timeout:                cfg.Timeout,
			ProxyPool:              stealth.NewProxyPool(cfg.Proxies),
			ProxyCooldown:          cfg.ProxyCooldown,
			MaxRequestsPerSecond:   cfg.MaxRequestsPerSecond,
			IncludeRawData:         cfg.IncludeRawData,
			RotateProxyOnRateLimit: cfg.RotateProxyOnRateLimit,
			Retry:                  retry,
		}, locations), nil
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

func newProvider(cfg *config.Config, modeOverride string) (providers.Provider, error) {
	registry, err := newRegistry(cfg.Provider, modeOverride)
	if err != nil {
		return nil, err
	}
	return registry.Get(cfg.Provider.Name)
}

// newEnrichmentService returns nil when AI enrichment is disabled.
func newEnrichmentService(ctx context.Context, cfg config.AIConfig) (*services.EnrichmentService, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	aiClient, err := gemini.NewClient(ctx, cfg.Key, gemini.Model(cfg.Model), services.EnrichmentSystemPrompt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "can't create AI client")
	}
	aiClient.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.MaxRequestsPerDay)

	features := lo.Map(cfg.Features, func(f string, _ int) models.AIFeature { return models.AIFeature(f) })
	return services.NewEnrichmentService(aiClient, features), func() { _ = aiClient.Close() }, nil
}

func openDb(cfg config.DBConfig) (*repositories.DbContext, error) {
	dbContext, err := repositories.NewDbContext(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "can't create db context")
	}

	if err = dbContext.Migrate(); err != nil {
		_ = dbContext.Close()
		return nil, errors.Wrap(err, "can't migrate db context")
	}
	return dbContext, nil
}

// exitCode maps failures to distinct statuses for scripts.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errs.IsRateLimit(err):
		return 3
	case errs.IsAuthentication(err):
		return 4
	case errs.IsNetwork(err):
		return 5
	default:
		return 1
	}
}
