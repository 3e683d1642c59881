// Package config holds podio's viper-backed settings.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/podio/internal/datastore"
	"github.com/lepinkainen/podio/internal/site"
)

// EnvPrefix is prepended to every environment override, e.g. PODIO_FETCH_ATTEMPTS
const EnvPrefix = "PODIO"

// Global configuration variables
var (
	// OverwriteFiles controls whether existing output files should be overwritten
	OverwriteFiles bool
)

// Config is the typed view of the viper settings.
type Config struct {
	ListingURL      string
	FeedURLTemplate string

	FetchAttempts   int
	FetchRetryDelay time.Duration
	FetchTimeout    time.Duration
	FetchDeadline   time.Duration
	UserAgent       string

	Concurrency int
	RateLimit   float64

	StoreType         string
	StoreDBFile       string
	DatasetteURL      string
	DatasetteToken    string
	DatasetteDatabase string

	CacheEnabled bool
	CacheDBFile  string
	CacheTTL     time.Duration

	ServerAddr string
	LogLevel   string
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("listing.url", site.DefaultListingURL)
	viper.SetDefault("listing.feedurltemplate", site.DefaultFeedURLTemplate)

	viper.SetDefault("fetch.attempts", 5)
	viper.SetDefault("fetch.retrydelay", "0s")
	viper.SetDefault("fetch.timeout", "30s")
	viper.SetDefault("fetch.deadline", "2m")
	viper.SetDefault("fetch.useragent", "podio/1.0")

	viper.SetDefault("catalog.concurrency", 1)
	viper.SetDefault("catalog.ratelimit", 0)

	viper.SetDefault("store.type", datastore.KindLog)
	viper.SetDefault("store.dbfile", "./podio.db")
	viper.SetDefault("store.datasette.url", "")
	viper.SetDefault("store.datasette.token", "")
	viper.SetDefault("store.datasette.database", "podio")

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.dbfile", "./podio-cache.db")
	viper.SetDefault("cache.ttl", "1h")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("log.level", "info")
}

// BindEnv enables PODIO_-prefixed environment overrides for every key.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads the current viper settings into a Config and validates it.
func Load() (Config, error) {
	cfg := Config{
		ListingURL:      viper.GetString("listing.url"),
		FeedURLTemplate: viper.GetString("listing.feedurltemplate"),

		FetchAttempts:   viper.GetInt("fetch.attempts"),
		FetchRetryDelay: viper.GetDuration("fetch.retrydelay"),
		FetchTimeout:    viper.GetDuration("fetch.timeout"),
		FetchDeadline:   viper.GetDuration("fetch.deadline"),
		UserAgent:       viper.GetString("fetch.useragent"),

		Concurrency: viper.GetInt("catalog.concurrency"),
		RateLimit:   viper.GetFloat64("catalog.ratelimit"),

		StoreType:         strings.ToLower(viper.GetString("store.type")),
		StoreDBFile:       viper.GetString("store.dbfile"),
		DatasetteURL:      viper.GetString("store.datasette.url"),
		DatasetteToken:    viper.GetString("store.datasette.token"),
		DatasetteDatabase: viper.GetString("store.datasette.database"),

		CacheEnabled: viper.GetBool("cache.enabled"),
		CacheDBFile:  viper.GetString("cache.dbfile"),
		CacheTTL:     viper.GetDuration("cache.ttl"),

		ServerAddr: viper.GetString("server.addr"),
		LogLevel:   viper.GetString("log.level"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the scraper cannot run with.
func (c Config) Validate() error {
	if c.ListingURL == "" {
		return fmt.Errorf("listing.url must not be empty")
	}
	if !strings.Contains(c.FeedURLTemplate, site.TitlePlaceholder) {
		return fmt.Errorf("listing.feedurltemplate must contain %s", site.TitlePlaceholder)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1, got %d", c.FetchAttempts)
	}
	if c.FetchRetryDelay < 0 || c.FetchTimeout < 0 || c.FetchDeadline < 0 {
		return fmt.Errorf("fetch durations must not be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("catalog.concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("catalog.ratelimit must not be negative")
	}

	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled")
	}

	switch c.StoreType {
	case datastore.KindLog, datastore.KindSQLite:
	case datastore.KindDatasette:
		if c.DatasetteURL == "" {
			return fmt.Errorf("store.datasette.url is required for the datasette store")
		}
	default:
		return fmt.Errorf("unknown store.type %q", c.StoreType)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a log.level value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}
