// cmd/matcher-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"registry-matcher/internal/api"
	"registry-matcher/internal/common/config"
	"registry-matcher/internal/common/database"
	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/common/observability"
	"registry-matcher/internal/presenter"
	"registry-matcher/internal/scanner"
	"registry-matcher/internal/service"
	"registry-matcher/internal/store/address"
	"registry-matcher/internal/store/citizens"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting matcher service...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("matcher-service")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis (optional: the address cache degrades without it) ---
	var addressSource address.Source
	addressStore := address.NewStore(pg.GetDB(), cfg.Matching.AddressPageSize, log)
	addressSource = addressStore

	if cfg.Database.Redis.Address != "" {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err == nil && rdb.Ping(ctx) == nil {
			defer rdb.Close()
			addressSource = address.NewCache(
				addressStore,
				rdb.GetClient(),
				time.Duration(cfg.Matching.AddressCacheTTL)*time.Second,
				log,
			)
			zapLog.Info("Redis connected, address cache enabled")
		} else {
			zapLog.Warn("Redis unavailable, address names will be queried directly")
		}
	}

	// --- Wire the match pipeline ---
	citizenStore := citizens.NewStore(pg.GetDB(), log)
	dupScanner := scanner.New(&scanner.Config{
		Parallelism:  cfg.Matching.Parallelism,
		FetchTimeout: config.GetDuration(cfg.Matching.FetchTimeout),
	}, citizenStore, log)
	resultPresenter := presenter.New(addressSource, cfg.Matching.PageSize, log)
	matchService := service.New(dupScanner, resultPresenter, obs, log)

	handler, err := api.NewHandler(matchService, cfg.Matching.DefaultMinConfidence, log)
	if err != nil {
		zapLog.Fatal("api handler init failed", zap.Error(err))
	}

	mux := http.NewServeMux()
	handler.Routes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}
