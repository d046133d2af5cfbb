package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/acutecare/triage-assistant/internal/api/router"
	appconfig "github.com/acutecare/triage-assistant/internal/config"
	"github.com/acutecare/triage-assistant/internal/http/handlers"
	"github.com/acutecare/triage-assistant/internal/observability/metrics"
	"github.com/acutecare/triage-assistant/internal/session"
	"github.com/acutecare/triage-assistant/internal/triage"
	"github.com/acutecare/triage-assistant/internal/webchat"
	"github.com/acutecare/triage-assistant/pkg/logging"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting triage-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to reach redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	store := session.New(redisClient, cfg.SessionTTL)
	triageMetrics := metrics.NewTriageMetrics(prometheus.DefaultRegisterer)

	primary, err := triage.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer primary.Close()

	var llm triage.LLMClient = primary
	if cfg.GeminiFallbackModelID != "" {
		secondary, err := triage.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiFallbackModelID)
		if err != nil {
			logger.Error("failed to create secondary gemini client", "error", err)
			os.Exit(1)
		}
		defer secondary.Close()
		llm = triage.NewFallbackLLMClient(primary, secondary, logger)
	}

	classifier := triage.NewClassifier(llm, cfg.LLMTimeout, triageMetrics, logger)
	engine := triage.NewEngine(nil)
	service := triage.NewService(store, engine, classifier, triageMetrics, logger)

	sessionHandler := handlers.NewSessionHandler(service, logger)
	webchatHandler := webchat.NewHandler(service, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		SessionHandler:     sessionHandler,
		WebChatHandler:     webchatHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SessionRateLimit:   2,
		SessionRateBurst:   10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
