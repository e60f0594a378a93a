package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/juanjparedez/mundobl/internal/api"
	"github.com/juanjparedez/mundobl/internal/auth"
	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/config"
	"github.com/juanjparedez/mundobl/internal/db"
	"github.com/juanjparedez/mundobl/internal/images"
	"github.com/juanjparedez/mundobl/internal/jobs"
	"github.com/juanjparedez/mundobl/internal/repository"
	"github.com/juanjparedez/mundobl/internal/scheduler"
	"github.com/juanjparedez/mundobl/internal/settings"
	"github.com/juanjparedez/mundobl/internal/telemetry"
	"github.com/juanjparedez/mundobl/internal/version"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, job worker and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, ctx.cfg, ctx.logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ver := version.Load()
	logger.Info("mundobl starting", "version", ver.Version, "port", cfg.Port)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "mundobl", ver.Version)
	if err != nil {
		return err
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}
	cfg.MergeFromDB(database.DB)

	store := repository.NewStore(database.DB)
	ingester := images.NewIngester(
		images.NewLocalStore(cfg.MediaDir(), cfg.MediaPublicURL),
		cfg.ImageFetchTimeout, cfg.ImageMaxBytes, logger,
	)
	hub := api.NewWSHub(logger)
	svc := catalog.NewService(store, ingester, hub, logger)

	var (
		queue    *jobs.Queue
		enqueuer jobs.Enqueuer
		sched    *scheduler.Scheduler
	)
	if cfg.JobsEnabled() {
		queue = jobs.NewQueue(cfg.RedisAddr, logger)
		jobs.RegisterHandlers(queue, svc)
		if err := queue.Start(); err != nil {
			return fmt.Errorf("start job worker: %w", err)
		}
		enqueuer = queue

		if cfg.ImageMigrationCron != "" {
			sched = scheduler.New(logger)
			err := sched.Add(jobs.TaskMigrateImages, cfg.ImageMigrationCron, func(ctx context.Context) error {
				_, err := jobs.EnqueueImageMigration(ctx, queue)
				return err
			})
			if err != nil {
				queue.Stop()
				return err
			}
			sched.Start()
		}
	} else {
		logger.Info("REDIS_ADDR not set, background jobs disabled")
	}

	srv := api.NewServer(cfg, api.Deps{
		Catalog:  svc,
		Verifier: auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Hub:      hub,
		Queue:    enqueuer,
		Settings: settings.NewRepository(database.DB),
	}, logger)

	mux := http.NewServeMux()
	mux.Handle("/", srv.Handler())
	if prefix := cfg.MediaPublicURL; strings.HasPrefix(prefix, "/") {
		mux.Handle(prefix+"/", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.MediaDir()))))
	}

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           otelhttp.NewHandler(mux, "mundobl"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if queue != nil {
		queue.Stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", "error", err)
	}
	return serveErr
}
