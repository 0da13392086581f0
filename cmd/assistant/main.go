// cmd/assistant/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vehicle-finance-bot/internal/ai"
	"vehicle-finance-bot/internal/common/config"
	"vehicle-finance-bot/internal/common/database"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/intake/engine"
	"vehicle-finance-bot/internal/models"
	"vehicle-finance-bot/internal/rules"
	"vehicle-finance-bot/internal/session"
	"vehicle-finance-bot/internal/store"
)

const offScriptFallback = "Bu konu uzmanlık alanım dışında. Araç finansmanı başvurusu için 'merhaba' yazabilirsiniz. 🚗"

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

	zapLog.Info("Starting assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("storageBackend", cfg.Storage.Backend),
		zap.String("sessionBackend", cfg.Session.Backend),
	)

	ctx := context.Background()

	rulesFile, err := rules.Load(cfg.Rules.Path, log)
	if err != nil {
		zapLog.Fatal("finance rules load failed", zap.Error(err))
	}

	appStore, cleanup, err := buildApplicationStore(ctx, cfg, log, zapLog)
	if err != nil {
		zapLog.Fatal("application store init failed", zap.Error(err))
	}
	defer cleanup()

	sessions, sessCleanup, err := buildSessionStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("session store init failed", zap.Error(err))
	}
	defer sessCleanup()

	responder := buildResponder(cfg, rulesFile, log)

	eng := engine.New(rulesFile.FinanceRules, appStore, responder, log)

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			zapLog.Info("metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		zapLog.Info("Shutdown signal received")
		os.Exit(0)
	}()

	runConversation(ctx, eng, sessions, log, zapLog)
}

func buildApplicationStore(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (store.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, func() {}, err
		}
		zapLog.Info("PostgreSQL connected successfully")
		return store.NewPostgresStore(pg.DB, log), func() { pg.Close() }, nil
	default:
		return store.NewFileStore(cfg.Storage.Path, log), func() {}, nil
	}
}

func buildSessionStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case "redis":
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, func() {}, err
		}
		zapLog.Info("Redis connected successfully")
		ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
		return session.NewRedisStore(rc.Client, ttl), func() { rc.Close() }, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}

func buildResponder(cfg *config.Config, rulesFile rules.File, log logger.Logger) ai.Responder {
	faq := ai.FAQ{
		SupportedBrands: rulesFile.FAQ.SupportedBrands,
		InterestRates:   rulesFile.FAQ.InterestRates,
		LoanTerms:       rulesFile.FAQ.LoanTerms,
	}
	if !cfg.AI.Enabled {
		return &ai.ScriptedResponder{FAQ: faq, Fallback: offScriptFallback}
	}
	return ai.NewGenAIResponder(&ai.Config{
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     time.Duration(cfg.AI.Timeout) * time.Millisecond,
		MaxRetries:  cfg.AI.MaxRetries,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	}, faq, log)
}

// runConversation drives a single conversation over stdin/stdout. The
// session is persisted through the session store after every turn so a
// shared backend keeps state across restarts.
func runConversation(ctx context.Context, eng *engine.Engine, sessions session.Store, log logger.Logger, zapLog *zap.Logger) {
	sessID := uuid.NewString()
	sess := models.NewSession(sessID)
	if err := sessions.Put(ctx, sess); err != nil {
		zapLog.Fatal("session init failed", zap.Error(err))
	}

	fmt.Println("🚗 Araç Finansmanı Asistanı")
	fmt.Println("Başlamak için 'merhaba' yazın. Çıkmak için 'çık' yazabilirsiniz.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		current, err := sessions.Get(ctx, sessID)
		if err != nil {
			current = models.NewSession(sessID)
		}

		result, next := eng.ProcessMessage(ctx, current, line)
		fmt.Println(result.Response)

		if result.ShouldExit {
			if err := sessions.Delete(ctx, sessID); err != nil {
				log.Warn("session delete failed", map[string]interface{}{"sessionId": sessID, "error": err.Error()})
			}
			break
		}

		if err := sessions.Put(ctx, next); err != nil {
			log.Warn("session persist failed", map[string]interface{}{"sessionId": sessID, "error": err.Error()})
		}
	}

	zapLog.Info("Assistant stopped gracefully")
}
