package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/podio/internal/book"
	"github.com/lepinkainen/podio/internal/config"
	"github.com/lepinkainen/podio/internal/datastore"
	"github.com/lepinkainen/podio/internal/fileutil"
)

// errListingFailed makes the process exit non-zero when no catalog could be built.
var errListingFailed = errors.New("listing could not be loaded")

// CatalogCmd represents the catalog command
type CatalogCmd struct {
	Format      string `help:"Output format" enum:"json,yaml" default:"json"`
	Output      string `short:"o" help:"Write the catalog to this file instead of stdout" type:"path"`
	Overwrite   bool   `help:"Overwrite an existing output file"`
	Store       bool   `help:"Persist fetched books through the configured store"`
	Concurrency int    `help:"Number of feeds fetched in parallel (overrides catalog.concurrency)"`
}

func (c *CatalogCmd) Run(cfg config.Config) error {
	var store datastore.BookStore
	if c.Store {
		s, err := openStore(storeOptions(cfg))
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	ctx, stop := signalContext()
	defer stop()

	svc, closeCache, err := newService(cfg, store)
	if err != nil {
		return err
	}
	defer closeCache()

	list := svc.GetCatalog(ctx)

	if err := c.write(list); err != nil {
		return err
	}

	if list.Failed() {
		return errListingFailed
	}

	if c.Store {
		complete := book.BookList{Books: list.Complete()}
		if err := svc.StoreBooks(ctx, complete); err != nil {
			return err
		}
		slog.Info("Stored catalog", "store", cfg.StoreType, "books", len(complete.Books))
	}

	return nil
}

func (c *CatalogCmd) write(list book.BookList) error {
	if c.Output == "" {
		return fileutil.Encode(stdout, c.Format, list)
	}

	written, err := fileutil.WriteFile(list, c.Format, c.Output, config.OverwriteFiles)
	if err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	if written {
		slog.Info("Wrote catalog", "file", c.Output, "books", len(list.Books))
	}
	return nil
}
