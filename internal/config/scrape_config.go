package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type ScrapeConfig struct {
	Schedule         string `mapstructure:"schedule"`
	Query            string `mapstructure:"query"`
	Location         string `mapstructure:"location"`
	PostedWithinDays int    `mapstructure:"posted_within_days"`
	MaxPages         int    `mapstructure:"max_pages"`
	PageSize         int    `mapstructure:"page_size"`
	FetchDetails     bool   `mapstructure:"fetch_details"`
}

func (config ScrapeConfig) validate() error {
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
	}
	if config.PageSize < 1 || config.PageSize > 100 {
		return fmt.Errorf("page_size must be within 1..100, got %d", config.PageSize)
	}
	if config.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive, got %d", config.MaxPages)
	}
	if config.PostedWithinDays < 1 || config.PostedWithinDays > 365 {
		return fmt.Errorf("posted_within_days must be within 1..365, got %d", config.PostedWithinDays)
	}
	return nil
}

func (config ScrapeConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.schedule", "0 */3 * * *")
	v.SetDefault("scrape.posted_within_days", 60)
	v.SetDefault("scrape.max_pages", 5)
	v.SetDefault("scrape.page_size", 50)
}

func (config ScrapeConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"scrape.schedule":           "SCRAPE_SCHEDULE",
		"scrape.query":              "SCRAPE_QUERY",
		"scrape.location":           "SCRAPE_LOCATION",
		"scrape.posted_within_days": "SCRAPE_POSTED_WITHIN_DAYS",
		"scrape.max_pages":          "SCRAPE_MAX_PAGES",
		"scrape.page_size":          "SCRAPE_PAGE_SIZE",
		"scrape.fetch_details":      "SCRAPE_FETCH_DETAILS",
	})
}
