package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/auth"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/auth/allowlist"
	httpapi "github.com/anahernandes-vtex/rbaciam-novo/internal/http"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/handler"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/metrics"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/mirror"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/service"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store/bolt"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/platform/config"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/platform/httpserver"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/platform/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE:  runServe,
}

func runServe(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()
	cfg := config.FromEnv()
	log := logger.New()

	primary, closePrimary, err := store.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init %s store: %w", cfg.StoreBackend, err)
	}
	defer func() {
		if err := closePrimary(); err != nil {
			log.Error("closing primary store", "error", err)
		}
	}()

	var sinks []mirror.Sink
	if cfg.MirrorBoltPath != "" {
		mirrorStore, err := bolt.Open(cfg.MirrorBoltPath)
		if err != nil {
			return fmt.Errorf("open bolt mirror: %w", err)
		}
		defer mirrorStore.Close()
		sinks = append(sinks, mirror.NewStoreSink("bolt-mirror", mirrorStore))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := mirror.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}

	svc, err := service.New(primary, cfg.StoreBackend, log,
		service.WithMirrors(mirror.New(log, sinks)),
		service.WithMetrics(metrics.New()),
	)
	if err != nil {
		return fmt.Errorf("init matrix service: %w", err)
	}

	admins, err := buildAllowList(cfg, log)
	if err != nil {
		return fmt.Errorf("load admin allow-list: %w", err)
	}
	defer admins.Close()

	tokens := auth.NewTokenService(cfg.JWTSigningKey)
	router := httpapi.NewRouter(handler.New(svc, log), tokens, admins, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting rbaciam",
		"addr", cfg.Addr,
		"store", cfg.StoreBackend,
		"mirrors", len(sinks),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		log.Info("shutting down", "reason", "context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func buildAllowList(cfg config.Config, log *slog.Logger) (*allowlist.Set, error) {
	if cfg.AdminEmailsFile != "" {
		return allowlist.NewFromFile(cfg.AdminEmailsFile, log)
	}
	return allowlist.NewStatic(cfg.AdminEmails), nil
}
