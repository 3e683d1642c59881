package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/podio/internal/cache"
	"github.com/lepinkainen/podio/internal/catalog"
	"github.com/lepinkainen/podio/internal/config"
	"github.com/lepinkainen/podio/internal/datastore"
	"github.com/lepinkainen/podio/internal/fetcher"
	"github.com/lepinkainen/podio/internal/ratelimit"
)

var (
	openStore           = datastore.Open
	stdout    io.Writer = os.Stdout
	logOutput io.Writer = os.Stderr
)

// CLI represents the complete command structure for the podio application
type CLI struct {
	// Global flags
	Config   string `help:"Path to a YAML config file (default: ./config.yaml if present)" type:"path"`
	LogLevel string `help:"Log level: debug, info, warn or error (overrides log.level)"`
	NoColor  bool   `help:"Disable colored log output"`

	Catalog CatalogCmd `cmd:"" help:"Fetch the catalog of recently updated audiobooks"`
	Serve   ServeCmd   `cmd:"" help:"Serve the catalog over HTTP"`
	Cache   CacheCmd   `cmd:"" help:"Manage the feed cache"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo, false)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("podio"),
		kong.Description("Builds a catalog of recently updated podiobooks.com audiobooks."),
		kong.UsageOnError(),
	)

	cfg, err := setup(&cli)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := ctx.Run(cfg); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration for the parsed command line and configures
// logging from it.
func setup(cli *CLI) (config.Config, error) {
	if err := initConfig(cli.Config); err != nil {
		return config.Config{}, err
	}
	updateGlobalConfig(cli)

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	initLogging(level, cli.NoColor)
	return cfg, nil
}

// initConfig registers defaults and environment overrides and reads the
// config file. An explicit path must exist; the default ./config.yaml is
// optional.
func initConfig(path string) error {
	config.SetDefaults()
	config.BindEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	slog.Debug("Loaded config file", "file", viper.ConfigFileUsed())
	return nil
}

func updateGlobalConfig(cli *CLI) {
	if cli.LogLevel != "" {
		viper.Set("log.level", cli.LogLevel)
	}

	config.SetOverwriteFiles(cli.Catalog.Overwrite)
	if cli.Catalog.Concurrency > 0 {
		viper.Set("catalog.concurrency", cli.Catalog.Concurrency)
	}

	if cli.Serve.Addr != "" {
		viper.Set("server.addr", cli.Serve.Addr)
	}
}

func initLogging(level slog.Level, noColor bool) {
	// Create a human-readable handler for logging; stdout carries catalog output
	handler := humanlog.NewHandler(logOutput, &humanlog.Options{
		Level:        level,
		DisableColor: noColor,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

// newService wires a catalog service from configuration. The returned
// close function releases the feed cache, if one was opened.
func newService(cfg config.Config, store datastore.BookStore) (*catalog.Service, func(), error) {
	f := fetcher.New(fetcher.Options{
		MaxAttempts: cfg.FetchAttempts,
		RetryDelay:  cfg.FetchRetryDelay,
		Timeout:     cfg.FetchTimeout,
		Deadline:    cfg.FetchDeadline,
		UserAgent:   cfg.UserAgent,
	})

	var feedCache *cache.DB
	closeCache := func() {}
	if cfg.CacheEnabled {
		db, err := cache.Open(cfg.CacheDBFile, cfg.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		feedCache = db
		closeCache = func() { _ = db.Close() }
	}

	svc := catalog.NewService(f, catalog.Options{
		ListingURL:      cfg.ListingURL,
		FeedURLTemplate: cfg.FeedURLTemplate,
		Concurrency:     cfg.Concurrency,
		Limiter:         ratelimit.New("feeds", cfg.RateLimit),
		Cache:           feedCache,
		Store:           store,
	})
	return svc, closeCache, nil
}

func storeOptions(cfg config.Config) datastore.Options {
	return datastore.Options{
		Kind:              cfg.StoreType,
		DBPath:            cfg.StoreDBFile,
		DatasetteURL:      cfg.DatasetteURL,
		DatasetteToken:    cfg.DatasetteToken,
		DatasetteDatabase: cfg.DatasetteDatabase,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
