package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type AIConfig struct {
	Enabled              bool     `mapstructure:"enabled"`
	Key                  string   `mapstructure:"key"`
	Model                string   `mapstructure:"model"`
	Features             []string `mapstructure:"features"`
	BatchSize            int      `mapstructure:"batch_size"`
	MaxRequestsPerMinute float32  `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32  `mapstructure:"max_requests_per_day"`
}

func (config AIConfig) validate() error {
	if !config.Enabled {
		return nil
	}
	if config.Key == "" {
		return fmt.Errorf("missing variable: ai key")
	}
	if config.Model == "" {
		return fmt.Errorf("missing variable: ai model")
	}
	for _, feature := range config.Features {
		switch feature {
		case "translation", "experience", "languages", "education", "keywords":
		default:
			return fmt.Errorf("unknown ai feature %q", feature)
		}
	}
	return nil
}

func (config AIConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.batch_size", 10)
	v.SetDefault("ai.max_requests_per_minute", 15)
	v.SetDefault("ai.max_requests_per_day", 1500)
}

func (config AIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"ai.enabled":                 "AI_ENABLED",
		"ai.key":                     "AI_KEY",
		"ai.model":                   "AI_MODEL",
		"ai.features":                "AI_FEATURES",
		"ai.max_requests_per_minute": "AI_MAX_REQUESTS_PER_MINUTE",
		"ai.max_requests_per_day":    "AI_MAX_REQUESTS_PER_DAY",
	})
}
