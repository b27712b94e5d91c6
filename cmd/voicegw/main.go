package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/barcelona-partners/voicegw/internal/agent"
	voiceconfig "github.com/barcelona-partners/voicegw/internal/config"
	"github.com/barcelona-partners/voicegw/internal/knowledge"
	"github.com/barcelona-partners/voicegw/internal/leads"
	"github.com/barcelona-partners/voicegw/internal/tools"
	"github.com/barcelona-partners/voicegw/internal/webhook"
	"github.com/barcelona-partners/voicegw/pkg/config"
	"github.com/barcelona-partners/voicegw/pkg/database"
	"github.com/barcelona-partners/voicegw/pkg/llm"
	"github.com/barcelona-partners/voicegw/pkg/logging"
	"github.com/barcelona-partners/voicegw/pkg/middleware"
	"github.com/barcelona-partners/voicegw/pkg/monitoring"
	"github.com/barcelona-partners/voicegw/pkg/server"
	"github.com/barcelona-partners/voicegw/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("voicegw")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting voicegw (outbound voice sales gateway)")

	cfg := voiceconfig.LoadConfig()

	// Connect to database. The database is optional: without it the gateway
	// still answers calls, with retrieval and lead capture degraded.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		dbConfig := database.DefaultConfig()
		dbConfig.URL = cfg.DatabaseURL
		conn, err := database.Connect(dbConfig, logger)
		if err != nil {
			logger.WithError(err).Warn("Database unavailable, running without retrieval and lead capture")
		} else {
			db = conn
			defer func() { _ = db.Close() }()
		}
	} else {
		logger.Warn("DATABASE_URL not set, running without retrieval and lead capture")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("voicegw", version.Version)
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	if cfg.LLMProvider == "openai" {
		healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
			"LLM_API_KEY": cfg.LLMAPIKey,
		}))
	}

	// LLM provider
	provider, err := llm.NewProvider(llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMAPIKey,
		APIURL:   cfg.LLMAPIURL,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create LLM provider")
	}

	// Tools: the calculator is always available, the manual retriever only
	// when the knowledge store is reachable.
	agentTools := []agent.Tool{tools.NewCalculator()}
	var leadStore *leads.Store
	if db != nil {
		embeddingClient, err := llm.NewEmbeddingClient(llm.Config{
			Provider: cfg.EmbeddingProvider,
			Model:    cfg.EmbeddingModel,
			APIKey:   cfg.EmbeddingAPIKey,
			APIURL:   cfg.EmbeddingAPIURL,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to create embedding client, manual retrieval disabled")
		} else {
			embedder, err := knowledge.NewEmbedder(embeddingClient)
			if err != nil {
				logger.WithError(err).Fatal("Failed to create embedder")
			}
			knowledgeStore := knowledge.NewStore(db)
			agentTools = append(agentTools, tools.NewRetriever(embedder, knowledgeStore, logger, cfg.RetrievalLimit))

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := knowledgeStore.EnsureSchema(ctx, cfg.EmbeddingDimensions); err != nil {
				logger.WithError(err).Warn("Failed to ensure knowledge schema")
			}
			cancel()
		}

		leadStore = leads.NewStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := leadStore.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Warn("Failed to ensure leads schema")
		}
		cancel()
	}

	// Reasoning loop and orchestrator, shared across all calls.
	engine := agent.NewEngine(agent.EngineConfig{
		Provider:  provider,
		Logger:    logger,
		Tools:     agentTools,
		MaxRounds: cfg.MaxToolRounds,
	})
	orchestrator := agent.NewOrchestrator(engine, logger)

	// Lead sink: workers start now, drain on shutdown.
	var sinkWriter leads.LeadWriter
	if leadStore != nil {
		sinkWriter = leadStore
	}
	sink := leads.NewSink(leads.SinkConfig{
		Writer:    sinkWriter,
		Logger:    logger,
		QueueSize: cfg.SinkQueueSize,
		Workers:   cfg.SinkWorkers,
	})
	defer sink.Close()

	// HTTP surface
	router := server.SetupRouter(logger)
	router.GET("/health", healthChecker.Handler())

	webhook.RegisterRoutes(router, webhook.NewHandler(webhook.HandlerConfig{
		Responder:  orchestrator,
		Sink:       sink,
		Logger:     logger,
		ModelLabel: cfg.ModelLabel,
	}))

	admin := router.Group("/", middleware.APIKeyMiddleware(cfg.AdminAPIKey))
	leads.RegisterRoutes(admin, &leads.Handler{Store: leadStore, Logger: logger})

	serverConfig := server.DefaultConfig("voicegw", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
