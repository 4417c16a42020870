package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ProviderConfig struct {
	Name                   string        `mapstructure:"name"`
	Mode                   string        `mapstructure:"mode"`
	BaseURL                string        `mapstructure:"base_url"`
	Timeout                time.Duration `mapstructure:"timeout"`
	MaxRequestsPerSecond   float64       `mapstructure:"max_requests_per_second"`
	MaxRetries             int           `mapstructure:"max_retries"`
	Proxies                []string      `mapstructure:"proxies"`
	ProxyCooldown          time.Duration `mapstructure:"proxy_cooldown"`
	RotateProxyOnRateLimit bool          `mapstructure:"rotate_proxy_on_rate_limit"`
	IncludeRawData         bool          `mapstructure:"include_raw_data"`
}

func (config ProviderConfig) validate() error {
	var errs []error

	switch config.Mode {
	case "fast", "stealth", "aggressive":
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", config.Mode))
	}
	if config.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if config.MaxRequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must not be negative"))
	}
	if config.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max_retries must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config ProviderConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", "job_room")
	v.SetDefault("provider.mode", "stealth")
	v.SetDefault("provider.base_url", "https://www.job-room.ch")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.max_requests_per_second", 2.0)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.proxy_cooldown", 60*time.Second)
}

func (config ProviderConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"provider.name":                       "PROVIDER",
		"provider.mode":                       "SCRAPER_MODE",
		"provider.base_url":                   "PROVIDER_BASE_URL",
		"provider.timeout":                    "PROVIDER_TIMEOUT",
		"provider.max_requests_per_second":    "PROVIDER_MAX_REQUESTS_PER_SECOND",
		"provider.max_retries":                "PROVIDER_MAX_RETRIES",
		"provider.proxies":                    "PROXIES",
		"provider.proxy_cooldown":             "PROXY_COOLDOWN",
		"provider.rotate_proxy_on_rate_limit": "ROTATE_PROXY_ON_RATE_LIMIT",
		"provider.include_raw_data":           "INCLUDE_RAW_DATA",
	})
}
