// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-granny/internal/config"
	"github.com/iyunix/go-granny/internal/handlers"
	"github.com/iyunix/go-granny/internal/repository/exchange"
	"github.com/iyunix/go-granny/internal/services"
	"github.com/iyunix/go-granny/internal/services/ai"
	"github.com/iyunix/go-granny/internal/services/chat"
	"github.com/iyunix/go-granny/internal/services/conversation"
)

const (
	healthCheckTimeout = 5 * time.Second
	shutdownTimeout    = 15 * time.Second
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("granny", cfg.Environment, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Upstream ---
	aiConfig := ai.DefaultConfig()
	aiConfig.BaseURL = cfg.APIBaseURL
	aiConfig.Model = cfg.ModelName
	aiConfig.Protocol = cfg.UpstreamProtocol
	aiConfig.APIKey = cfg.OpenAIAPIKey
	aiConfig.Timeout = cfg.UpstreamTimeout

	provider, err := ai.NewProvider(aiConfig, logger)
	if err != nil {
		logger.Error("FATAL: Failed to initialize upstream provider", "error", err)
		os.Exit(1)
	}

	// --- Exchange log ---
	var recorder chat.ExchangeRecorder
	var exchangeHandler *handlers.ExchangeHandler
	if cfg.ExchangeLogEnabled {
		db, err := exchange.OpenInMemory()
		if err != nil {
			logger.Error("FATAL: Failed to open exchange log", "error", err)
			os.Exit(1)
		}
		exchangeRepo := exchange.NewExchangeRepository(db, logger)
		recorder = exchangeRepo
		exchangeHandler = handlers.NewExchangeHandler(exchangeRepo, logger)
	}

	// --- Services ---
	chatConfig := chat.DefaultConfig()
	chatConfig.Model = cfg.ModelName
	chatConfig.Timeout = cfg.UpstreamTimeout

	proxy, err := chat.NewProxyService(chatConfig, provider, recorder, logger)
	if err != nil {
		logger.Error("FATAL: Failed to initialize chat proxy", "error", err)
		os.Exit(1)
	}

	storeConfig := conversation.DefaultConfig()
	storeConfig.ConversationLimit = cfg.ConversationLimit
	if cfg.PersonaPrompt != "" {
		storeConfig.PersonaPrompt = cfg.PersonaPrompt
	}
	registryConfig := conversation.DefaultRegistryConfig()
	registryConfig.IdleTimeout = cfg.SessionIdleTimeout
	registry := conversation.NewRegistry(registryConfig, storeConfig)
	defer registry.Close()

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Handlers{
		Chat:     handlers.NewChatHandler(proxy, logger),
		Session:  handlers.NewSessionHandler(registry, proxy, logger),
		Exchange: exchangeHandler,
		Log:      handlers.NewLogHandler(logger),
		Health:   handlers.NewHealthHandler(provider, healthCheckTimeout),
	}, logger, cfg.IsProduction())

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"port", cfg.ServerPort,
		"upstream", aiConfig.BaseURL,
		"protocol", provider.Name(),
		"model", cfg.ModelName,
		"exchange_log", cfg.ExchangeLogEnabled,
	)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}
