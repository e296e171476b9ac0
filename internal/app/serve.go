package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/templatehub/backend/internal/config"
	"github.com/templatehub/backend/internal/db"
	"github.com/templatehub/backend/internal/handlers"
	"github.com/templatehub/backend/internal/httpserver"
	"github.com/templatehub/backend/internal/logging"
	"github.com/templatehub/backend/internal/middleware"
)

// newHandler builds the routed, instrumented HTTP handler for svc.
func newHandler(logger *slog.Logger, cfg config.Config, svc services, database handlers.Pinger) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, svc.handlerDependencies(database))

	return middleware.Chain(mux,
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSOrigin),
		middleware.Instrument(svc.metrics),
	)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx = logging.WithLogger(ctx, logger)

	s := memoryStores()
	var database handlers.Pinger
	if cfg.UsesDatabase() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		s = postgresStores(pool, cfg)
		database = pool
		logger.Info("using postgres storage")
	} else {
		logger.Info("using in-memory storage")
	}

	svc, err := buildServices(ctx, s, cfg)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Port, newHandler(logger, cfg, svc, database))

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSweeper(sweepCtx, svc.registry, cfg.SessionSweepInterval)
	}()
	defer func() {
		stopSweeper()
		wg.Wait()
	}()

	logger.Info("starting http server", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server", "reason", context.Cause(ctx))
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-srvErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
