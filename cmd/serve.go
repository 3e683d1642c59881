package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/lepinkainen/podio/internal/api"
	"github.com/lepinkainen/podio/internal/config"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (s *ServeCmd) Run(cfg config.Config) error {
	store, err := openStore(storeOptions(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc, closeCache, err := newService(cfg, store)
	if err != nil {
		return err
	}
	defer closeCache()

	ln, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.ServerAddr, err)
	}

	ctx, stop := signalContext()
	defer stop()

	return serve(ctx, ln, api.New(svc))
}

// serve runs an HTTP server on ln until ctx is done, then drains
// in-flight requests for up to shutdownTimeout.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
