package main

import (
	"context"
	stderrs "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/freya-ai/freya/pkg/ai"
	"github.com/freya-ai/freya/pkg/chat"
	"github.com/freya-ai/freya/pkg/config"
	"github.com/freya-ai/freya/pkg/db"
	"github.com/freya-ai/freya/pkg/facts"
	"github.com/freya-ai/freya/pkg/memory"
	"github.com/freya-ai/freya/pkg/server"
	"github.com/freya-ai/freya/pkg/tagging"
)

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		TimeFormat:      time.Kitchen,
	})

	envs, err := config.LoadConfig(true)
	if err != nil {
		panic(errors.Wrap(err, "Unable to load config"))
	}
	logger.Info("Using database path", "path", envs.DBPath)

	cachePolicy := db.CachePolicy{Enabled: envs.CacheEnabled, TTL: envs.CacheTTL}
	store, err := db.NewStore(envs.DBPath, logger, cachePolicy)
	if err != nil {
		logger.Error("Unable to create or initialize database", "error", err)
		panic(errors.Wrap(err, "Unable to create or initialize database"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing store", "error", err)
		}
	}()

	completions := ai.NewOpenAIService(logger, envs.CompletionsAPIKey, envs.CompletionsAPIURL)

	memoryService := memory.NewService(logger, store).WithParallelFetch()
	factsService := facts.NewService(logger, store)
	taggingService := tagging.NewService(logger, store, memoryService.Extractor())
	chatService := chat.NewService(
		logger,
		store,
		memoryService,
		factsService,
		taggingService,
		completions,
		envs.CompletionsModel,
	)

	srv := server.New(logger, store, chatService)
	httpServer := &http.Server{
		Addr:    ":" + envs.Port,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("Starting server", "port", envs.Port)
		if err := httpServer.ListenAndServe(); err != nil && !stderrs.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}
