package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	RetentionDays    int    `mapstructure:"retention_days"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be positive, got %d", config.RetentionDays)
	}
	return nil
}

func (config DBConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("db.connection_string", "swiss_jobs.db")
	v.SetDefault("db.retention_days", 30)
}

func (config DBConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"db.connection_string": "DB_CONNECTION_STRING",
		"db.retention_days":    "DB_RETENTION_DAYS",
	})
}
