package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/source"
	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/watcher"
	"github.com/arturoeanton/go-license-rag-ollama/internal/handler"
	"github.com/arturoeanton/go-license-rag-ollama/internal/index"
	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
	"github.com/arturoeanton/go-license-rag-ollama/internal/service"
	"github.com/arturoeanton/go-license-rag-ollama/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting LicenseLens AI",
		"port", cfg.Port,
		"data_source", cfg.DataSourceType,
		"ollama_embed", cfg.OllamaEmbedURL,
		"ollama_generate", cfg.OllamaGenerateURL,
	)

	// ── Data source ──────────────────────────────────────────────────────
	recordSource, closeSource, err := buildSource(cfg)
	if err != nil {
		slog.Error("failed to open data source", "error", err)
		os.Exit(1)
	}
	if closeSource != nil {
		defer closeSource()
	}
	recordStore := store.NewRecordStore(recordSource)

	// ── Ollama provider ──────────────────────────────────────────────────
	ollamaAI := ai.NewOllamaProvider(
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		},
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaGenerateURL,
			Model:   cfg.OllamaGenerateModel,
			Token:   cfg.OllamaGenerateToken,
		},
	)

	if cfg.KeepAliveEnabled {
		keepAlive := ai.NewKeepAlive(ollamaAI, cfg.KeepAliveInterval)
		keepAlive.Start()
		defer keepAlive.Stop()
	}

	// ── Index plumbing ───────────────────────────────────────────────────
	indexCache, err := store.NewIndexCache(cfg.IndexCachePath)
	if err != nil {
		slog.Error("failed to open index cache", "error", err)
		os.Exit(1)
	}
	defer indexCache.Close()

	builder := index.NewBuilder(ollamaAI, 0)
	stateHolder := service.NewStateHolder()
	responseCache := service.NewResponseCache(cfg.CacheSize)
	conversations := service.NewConversationStore(cfg.MaxHistoryTurns, cfg.SessionTimeout)

	refreshService := service.NewRefreshService(recordStore, builder, indexCache, stateHolder, responseCache)

	// Dataset errors at startup are fatal; at refresh they leave the good
	// snapshot in place.
	if err := refreshService.Bootstrap(context.Background(), cfg.LazyLoad); err != nil {
		slog.Error("startup data load failed", "error", err)
		os.Exit(1)
	}

	// ── Services ─────────────────────────────────────────────────────────
	ragService := service.NewRAGService(
		ollamaAI,
		stateHolder,
		service.NewClassifier(),
		conversations,
		responseCache,
		service.RAGOptions{
			TopK:            cfg.TopK,
			HistoryContext:  cfg.HistoryContext,
			GenerateTimeout: cfg.GenerateTimeout,
			Generate: port.GenerateOptions{
				MaxTokens:   cfg.MaxTokens,
				Temperature: cfg.Temperature,
				NumCtx:      cfg.NumCtx,
				TopK:        cfg.SampleTopK,
				TopP:        cfg.SampleTopP,
			},
		},
	)

	// ── Refresh loop ─────────────────────────────────────────────────────
	refreshCtx, cancelRefresh := context.WithCancel(context.Background())
	defer cancelRefresh()

	var changes <-chan struct{}
	if cfg.WatchDataFile && cfg.DataSourceType == "json" {
		fileWatcher, err := watcher.NewDataFileWatcher(cfg.DataPath)
		if err != nil {
			slog.Warn("file watcher unavailable", "error", err)
		} else {
			defer fileWatcher.Stop()
			changes, err = fileWatcher.Watch(refreshCtx)
			if err != nil {
				slog.Warn("file watch failed", "error", err)
				changes = nil
			}
		}
	}
	go refreshService.Run(refreshCtx, cfg.RefreshInterval, changes)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.GenerateTimeout + 30*time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	api := app.Group("/api/v1")

	systemHandler := handler.NewSystemHandler(refreshService, stateHolder, handler.SystemInfo{
		AppName:        cfg.AppName,
		EmbeddingModel: cfg.OllamaEmbedModel,
		OllamaEndpoint: cfg.OllamaGenerateURL,
		DataSource:     recordSource.Name(),
	})
	systemHandler.Register(app, api)

	queryHandler := handler.NewQueryHandler(ragService, conversations)
	queryHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// buildSource selects the record source from configuration.
func buildSource(cfg *config.Config) (port.RecordSource, func() error, error) {
	switch cfg.DataSourceType {
	case "api":
		return source.NewAPISource(cfg.DataAPIURL), nil, nil
	case "postgres":
		pg, err := source.NewPostgresSource(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return source.NewFileSource(cfg.DataPath), nil, nil
	}
}
