// Package app wires the campaign service together and runs its HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/impulso-music/impulso/internal/services/campaign/api/rest"
	"github.com/impulso-music/impulso/internal/services/campaign/gateway/httpapi"
	"github.com/impulso-music/impulso/internal/services/campaign/service"
	"github.com/impulso-music/impulso/internal/services/campaign/storage/memory"
	"github.com/impulso-music/impulso/internal/services/campaign/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds everything the campaign server needs to run.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// DBPath is the SQLite database file; ":memory:" works for development.
	DBPath string
	// BackendURL is the marketplace API base URL.
	BackendURL string
	// BackendToken authenticates this service to the marketplace.
	BackendToken string
	// JWTSecret verifies user bearer tokens.
	JWTSecret []byte
}

// Run starts the campaign server and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.BackendURL == "" {
		return fmt.Errorf("marketplace backend url is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return fmt.Errorf("jwt secret is required")
	}

	campaigns, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open campaign store: %w", err)
	}
	defer campaigns.Close()

	// Outbound marketplace calls carry trace context.
	backend := httpapi.NewClient(cfg.BackendURL, &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, httpapi.StaticToken(cfg.BackendToken))

	sessions := memory.NewStore()
	svc := service.NewService(service.Options{
		Wizards:   sessions,
		Checkouts: sessions,
		Campaigns: campaigns,
		Coupons:   backend,
		Payments:  backend,
	})
	defer svc.Shutdown()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           rest.NewRouter(svc, cfg.JWTSecret),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("campaign server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})
	return group.Wait()
}
