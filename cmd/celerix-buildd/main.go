package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/celerix-dev/celerix-build/internal/api"
	"github.com/celerix-dev/celerix-build/internal/config"
	"github.com/celerix-dev/celerix-build/internal/engine"
	"github.com/celerix-dev/celerix-build/internal/server"
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/celerix-dev/celerix-build/internal/vault"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "celerix-buildd",
		Short:         "Construction project management API daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	store, err := engine.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", "error", err)
			return
		}
		logger.Info("persistence flushed")
	}()
	logger.Info("store opened", "backend", cfg.Store.Backend, "path", cfg.Store.Path)

	key, err := cfg.Key()
	if err != nil {
		return err
	}
	if key == nil {
		logger.Warn("no secret configured; supplier links will not survive a restart")
		if key, err = vault.GenerateKey(); err != nil {
			return err
		}
	}
	sealer, err := vault.NewSealer(key)
	if err != nil {
		return err
	}

	svc := service.New(store, service.Options{
		Sealer:           sealer,
		PublicBaseURL:    cfg.PublicBaseURL,
		SupplierTokenTTL: cfg.SupplierTokenTTL,
		Logger:           logger,
	})
	if err := svc.Init(ctx, cfg.SeedTemplates); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(api.NewRouter(svc, logger), server.Options{
		MaxConnections: cfg.HTTP.MaxConnections,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
	})

	if cfg.HTTP.TLS {
		cert, err := vault.GenerateSelfSignedCert(cfg.HTTP.TLSHosts...)
		if err != nil {
			return fmt.Errorf("generating TLS certificate: %w", err)
		}
		srv.SetCertificate(cert)
	}

	if err := srv.Listen(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.HTTP.Addr, err)
	}
	logger.Info("listening", "addr", srv.Addr().String(), "tls", srv.TLS(), "max_connections", cfg.HTTP.MaxConnections)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}
