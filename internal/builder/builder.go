package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/mindtrace-ai/internal/api"
	analyzeapi "github.com/futig/mindtrace-ai/internal/api/analyze"
	"github.com/futig/mindtrace-ai/internal/chunker"
	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/extractor"
	"github.com/futig/mindtrace-ai/internal/integration/openai"
	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/futig/mindtrace-ai/internal/pkg/metrics"
	"github.com/futig/mindtrace-ai/internal/pkg/validator"
	"github.com/futig/mindtrace-ai/internal/repository"
	"github.com/futig/mindtrace-ai/internal/telegram"
	"github.com/futig/mindtrace-ai/internal/usecase/changes"
	"github.com/futig/mindtrace-ai/internal/usecase/document"
	"github.com/futig/mindtrace-ai/internal/usecase/retrieval"
	"github.com/futig/mindtrace-ai/internal/vectorstore"
	pkghttp "github.com/futig/mindtrace-ai/pkg/http"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unidoc/unioffice/common/license"
	"go.uber.org/zap"
)

// modelConnector is what both the real and the mock OpenAI connectors provide
type modelConnector interface {
	EmbeddingModel() string
	Embed(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}

// Components is the wired service graph shared by the HTTP server,
// the Telegram bot and the CLI.
type Components struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Store   vectorstore.Store

	Documents *document.DocumentUsecase
	Retrieval *retrieval.RetrievalUsecase
	Changes   *changes.ChangesUsecase

	db *pgxpool.Pool
}

// Close releases the database pool if the postgres store is in use
func (c *Components) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

// BuildComponents loads the configuration for environment and wires every
// use case with its dependencies.
func BuildComponents(ctx context.Context, environment string) (*Components, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building components",
		zap.String("environment", cfg.Environment),
		zap.String("vector_store", cfg.VectorStoreDriver),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			return nil, fmt.Errorf("set unioffice license: %w", err)
		}
		log.Info("DOCX support enabled")
	} else {
		log.Warn("UNIDOC_LICENSE_API_KEY is not set, DOCX extraction and export will fail")
	}

	m := metrics.New()

	model := setupModelConnector(cfg, m, log)
	embedder := openai.NewCachedEmbedder(model, model.EmbeddingModel(), cfg.EmbeddingCacheTTL)

	store, db, err := setupVectorStore(ctx, cfg, m, log)
	if err != nil {
		return nil, fmt.Errorf("setup vector store: %w", err)
	}

	tokenizer, err := chunker.NewTokenizer(cfg.ChunkerCfg)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("setup tokenizer: %w", err)
	}
	log.Info("Chunker initialized",
		zap.String("tokenizer", tokenizer.Name()),
		zap.Int("max_tokens", cfg.ChunkerCfg.MaxTokens),
	)

	ext := extractor.NewExtractor(cfg.ExtractorCfg, log,
		pkghttp.WithRoundTripObserver(m.UpstreamObserver("documents")),
	)

	documentUC := document.NewUsecase(
		ext,
		chunker.New(chunker.WithTokenizer(tokenizer)),
		embedder,
		store,
		m,
		cfg.ChunkerCfg,
		cfg.IngestCfg,
		log,
	)
	retrievalUC := retrieval.NewUsecase(embedder, model, store, log)
	changesUC := changes.NewUsecase(model, log)
	log.Info("Use cases initialized")

	return &Components{
		Config:    cfg,
		Logger:    log,
		Metrics:   m,
		Store:     store,
		Documents: documentUC,
		Retrieval: retrievalUC,
		Changes:   changesUC,
		db:        db,
	}, nil
}

func setupModelConnector(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) modelConnector {
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the model provider")
		return openai.NewMockConnector(logger)
	}

	logger.Info("Using OpenAI connector",
		zap.String("base_url", cfg.OpenAICfg.BaseURL),
		zap.String("embedding_model", cfg.OpenAICfg.EmbeddingModel),
		zap.String("chat_model", cfg.OpenAICfg.ChatModel),
	)
	return openai.NewConnector(cfg.OpenAICfg, logger,
		pkghttp.WithRoundTripObserver(m.UpstreamObserver("openai")),
	)
}

func setupVectorStore(
	ctx context.Context,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) (vectorstore.Store, *pgxpool.Pool, error) {
	switch cfg.VectorStoreDriver {
	case config.VectorStoreMemory:
		logger.Info("Using in-memory vector store")
		return vectorstore.NewMemory(), nil, nil

	case config.VectorStorePostgres:
		db, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using pgvector store")
		return repository.NewVectorPostgres(db), db, nil

	default:
		if cfg.QdrantCfg.URL == "" && cfg.EnableMocks {
			logger.Info("QDRANT_URL is empty in mock mode, using in-memory vector store")
			return vectorstore.NewMemory(), nil, nil
		}

		store, err := vectorstore.NewQdrant(cfg.QdrantCfg, logger,
			pkghttp.WithRoundTripObserver(m.UpstreamObserver("qdrant")),
		)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Qdrant vector store", zap.String("url", cfg.QdrantCfg.URL))
		return store, nil, nil
	}
}

// Build wires the HTTP service
func Build(environment string) (*App, error) {
	components, err := BuildComponents(context.Background(), environment)
	if err != nil {
		return nil, err
	}
	cfg, log := components.Config, components.Logger

	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)

	analyzeHandler := analyzeapi.NewHandler(
		components.Documents,
		components.Retrieval,
		components.Changes,
		fileValidator,
	)
	log.Info("API handlers initialized")

	router := api.SetupRouter(analyzeHandler, components.Store, components.Metrics, cfg.RequestTimeout, log)
	log.Info("HTTP router configured")

	// Model calls can take most of RequestTimeout, so the write deadline
	// leaves room for the timeout response itself.
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	return &App{
		server:     server,
		components: components,
		logger:     log,
	}, nil
}

// BuildTelegramBot wires the Telegram front end on top of the same components
func BuildTelegramBot(environment string) (telegram.Bot, *Components, error) {
	components, err := BuildComponents(context.Background(), environment)
	if err != nil {
		return nil, nil, err
	}

	if err := components.Config.ValidateTelegram(); err != nil {
		components.Close()
		return nil, nil, err
	}

	bot, err := telegram.NewBot(&components.Config.TelegramCfg, components.Retrieval, components.Logger)
	if err != nil {
		components.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	components.Logger.Info("Telegram bot built successfully",
		zap.String("environment", components.Config.Environment),
	)

	return bot, components, nil
}
