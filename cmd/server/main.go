// The SkyLark BI server answers natural language business questions over
// monday.com board data: fetch, clean, compute metrics, narrate.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhimh33/Skylark-BI/pkg/api/ask"
	"github.com/abhimh33/Skylark-BI/pkg/core/ai"
	"github.com/abhimh33/Skylark-BI/pkg/core/cache"
	"github.com/abhimh33/Skylark-BI/pkg/core/config"
	"github.com/abhimh33/Skylark-BI/pkg/core/llm"
	"github.com/abhimh33/Skylark-BI/pkg/core/monday"
	"github.com/abhimh33/Skylark-BI/pkg/core/store"
	"github.com/abhimh33/Skylark-BI/pkg/models"
)

func newLogger(settings *config.Settings) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if settings.Debug {
		cfg = zap.NewDevelopmentConfig()
	}
	switch settings.LogLevel {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

func main() {
	godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/app.yaml"
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting SkyLark BI server",
		zap.String("listen_addr", settings.ListenAddr),
		zap.String("deals_board_id", settings.DealsBoardID),
		zap.String("work_orders_board_id", settings.WorkOrdersBoardID),
		zap.Bool("debug", settings.Debug))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	archive, err := store.NewArchive(ctx, settings.DatabaseURL, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to initialize archive", zap.Error(err))
	}
	defer archive.Close()

	mondayClient := monday.NewClient(settings.MondayAPIKey, settings.MondayAPIURL, settings.MondayPageSize, logger)
	provider := &llm.GeminiProvider{Model: settings.GeminiModel}
	aiService := ai.NewService(provider, logger)

	snapshotCache := cache.New[*models.Snapshot](settings.BoardCacheTTL())
	responseCache := cache.New[models.AskResponse](settings.ResponseCacheTTL())

	handler := ask.NewHandler(mondayClient, aiService, archive, snapshotCache, responseCache,
		ask.Options{
			DealsBoardID:      settings.DealsBoardID,
			WorkOrdersBoardID: settings.WorkOrdersBoardID,
		}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ask", handler.HandleAsk)
	mux.HandleFunc("/health", handler.HandleHealth)
	mux.HandleFunc("/boards/summary", handler.HandleBoardsSummary)
	mux.HandleFunc("/cache/stats", handler.HandleCacheStats)
	mux.HandleFunc("/cache/clear", handler.HandleCacheClear)

	server := &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	logger.Info("listening", zap.String("addr", settings.ListenAddr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
