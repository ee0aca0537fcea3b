// file: internal/config/config.go
// version: 1.0.0
// guid: 3f1a2b4c-5d6e-4f7a-8b9c-0d1e2f3a4b5c

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Host         string
	Port         string
	DatabasePath string

	// Track enrichment via the iTunes Search API. Disabled unless
	// explicitly turned on.
	EnrichmentEnabled bool
	ITunesBaseURL     string
	ITunesTimeout     time.Duration

	SessionTTL time.Duration

	RateLimitPerMinute int
	RateLimitBurst     int
}

var AppConfig Config

// InitConfig initializes the application configuration from viper
func InitConfig() {
	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", "3000")
	viper.SetDefault("database_path", "soundcircle.db")
	viper.SetDefault("enrichment_enabled", false)
	viper.SetDefault("itunes_base_url", "https://itunes.apple.com")
	viper.SetDefault("itunes_timeout_ms", 3500)
	viper.SetDefault("session_ttl_hours", 24)
	viper.SetDefault("rate_limit_per_minute", 300)
	viper.SetDefault("rate_limit_burst", 50)

	AppConfig = Config{
		Host:               viper.GetString("host"),
		Port:               viper.GetString("port"),
		DatabasePath:       viper.GetString("database_path"),
		EnrichmentEnabled:  viper.GetBool("enrichment_enabled"),
		ITunesBaseURL:      viper.GetString("itunes_base_url"),
		ITunesTimeout:      time.Duration(viper.GetInt("itunes_timeout_ms")) * time.Millisecond,
		SessionTTL:         time.Duration(viper.GetInt("session_ttl_hours")) * time.Hour,
		RateLimitPerMinute: viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("rate_limit_burst"),
	}

	if AppConfig.ITunesTimeout <= 0 {
		AppConfig.ITunesTimeout = 3500 * time.Millisecond
	}
	if AppConfig.SessionTTL <= 0 {
		AppConfig.SessionTTL = 24 * time.Hour
	}
}
