// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"appointment-workers/internal/api"
	"appointment-workers/internal/appointment"
	"appointment-workers/internal/common/camunda"
	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/database"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/observability"
	"appointment-workers/internal/common/validation"
	"appointment-workers/internal/sheet"
	"appointment-workers/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backends holds every optional connection. A nil field means the backend
// is not configured or not needed.
type backends struct {
	postgres *database.PostgresClient
	redis    *database.RedisClient
	es       *database.ElasticsearchClient
	zeebe    *camunda.Client
}

func (b *backends) close(log logger.Logger) {
	if b.zeebe != nil {
		if err := b.zeebe.Close(); err != nil {
			log.Error("Error closing Zeebe client", map[string]interface{}{"error": err})
		}
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.postgres != nil {
		_ = b.postgres.Close()
	}
}

func (b *backends) readinessChecks() map[string]api.ReadinessCheck {
	checks := map[string]api.ReadinessCheck{}
	if b.postgres != nil {
		checks["postgres"] = b.postgres.Ping
	}
	if b.redis != nil {
		checks["redis"] = b.redis.Ping
	}
	if b.es != nil {
		checks["elasticsearch"] = b.es.Ping
	}
	if b.zeebe != nil {
		checks["zeebe"] = b.zeebe.HealthCheck
	}
	return checks
}

func connectBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Sheets.Source == "postgres" {
		err := retryWithBackoff(ctx, func() error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				_ = pg.Close()
				return err
			}
			b.postgres = pg
			return nil
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			return b, err
		}
		log.Info("PostgreSQL connected successfully", nil)
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address != "" {
		err := retryWithBackoff(ctx, func() error {
			rc, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := rc.Ping(ctx); err != nil {
				_ = rc.Close()
				return err
			}
			b.redis = rc
			return nil
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			return b, err
		}
		log.Info("Redis connected successfully", nil)
	}

	if config.IsWorkerEnabled(cfg, "index-calendar-events") && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		err := retryWithBackoff(ctx, func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			b.es = es
			return nil
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			return b, err
		}
		log.Info("Elasticsearch connected successfully", nil)
	}

	if cfg.Camunda.Enabled {
		zc, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			return b, err
		}
		b.zeebe = zc
		log.Info("Zeebe client connected successfully", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})
	}
	return b, nil
}

func newSnapshotCache(cfg *config.Config, b *backends) sheet.SnapshotCache {
	if b.redis == nil {
		return sheet.NopCache{}
	}
	return sheet.NewRedisSnapshotCache(b.redis.GetClient(), cfg.Cache.Key, time.Duration(cfg.Cache.TTL)*time.Second)
}

func loadValidator(cfg *config.Config, log logger.Logger) *validation.Validator {
	v := validation.NewValidator()
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Warn("activity registry unavailable, input schemas disabled", map[string]interface{}{
			"path":  cfg.Registry.Path,
			"error": err,
		})
		return v
	}
	for _, p := range reg.Validate() {
		log.Warn("activity registry problem", map[string]interface{}{"error": p})
	}
	ids, err := reg.RegisterSchemas(v)
	if err != nil {
		log.Error("failed to register input schemas", map[string]interface{}{"error": err})
	}
	log.Info("input schemas registered", map[string]interface{}{"activities": ids})
	return v
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})
	log.Info("Starting worker manager...", map[string]interface{}{"environment": cfg.App.Environment})

	obs := observability.New(cfg.App.Name, log)
	tracing := observability.NewTracing(cfg.Tracing, cfg.App.Name, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := connectBackends(ctx, cfg, log)
	if err != nil {
		b.close(log)
		zapLog.Fatal("backend connection failed", zap.Error(err))
	}
	defer b.close(log)

	source, err := sheet.NewSource(ctx, cfg.Sheets, b.postgresDB())
	if err != nil {
		zapLog.Fatal("sheet source misconfigured", zap.Error(err))
	}
	loader := sheet.NewLoader(source, newSnapshotCache(cfg, b), sheet.TabsFromConfig(cfg.Sheets.Tabs), log)
	service := appointment.NewService(loader, appointment.SettingsFromConfig(cfg), log,
		appointment.WithObservability(obs),
		appointment.WithTracing(tracing),
	)
	validator := loadValidator(cfg, log)

	var workers []*camunda.Worker
	if b.zeebe != nil {
		workers, err = registerWorkers(ctx, cfg, b, service, validator, log)
		if err != nil {
			zapLog.Fatal("worker registration failed", zap.Error(err))
		}
		log.Info("workers registered", map[string]interface{}{"count": len(workers)})
	} else {
		log.Warn("camunda disabled, serving HTTP API only", nil)
	}

	router := api.NewRouter(api.RouterConfig{
		Mode:               cfg.HTTP.Mode,
		ServiceName:        cfg.App.Name,
		AllowOrigins:       cfg.HTTP.AllowOrigins,
		AppointmentHandler: api.NewAppointmentHandler(service, validator, log),
		ReadinessChecks:    b.readinessChecks(),
		Logger:             log,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.HTTP.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn("observability shutdown failed", map[string]interface{}{"error": err})
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracing shutdown failed", map[string]interface{}{"error": err})
	}

	log.Info("Worker manager stopped gracefully", nil)
}
