package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/podio/internal/cache"
	"github.com/lepinkainen/podio/internal/config"
)

// CacheCmd represents the cache command
type CacheCmd struct {
	Clear ClearCacheCmd `cmd:"" help:"Remove cached feed records"`
}

// ClearCacheCmd represents the cache clear subcommand
type ClearCacheCmd struct {
	Expired bool `help:"Only remove entries older than cache.ttl"`
}

func (c *ClearCacheCmd) Run(cfg config.Config) error {
	slog.Info("Clearing feed cache", "database", cfg.CacheDBFile, "expired_only", c.Expired)

	db, err := cache.Open(cfg.CacheDBFile, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var removed int64
	if c.Expired {
		removed, err = db.ClearExpired()
	} else {
		removed, err = db.ClearAll()
	}
	if err != nil {
		return err
	}

	slog.Info("Feed cache cleared", "rows_deleted", removed)
	return nil
}
