package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/avolkov/examgen/internal/adapters/http"
	"github.com/avolkov/examgen/internal/config"
	"github.com/avolkov/examgen/internal/core/ports"
	"github.com/avolkov/examgen/internal/core/usecase"
	"github.com/avolkov/examgen/internal/infrastructure/chunking"
	"github.com/avolkov/examgen/internal/infrastructure/llm/ollama"
	"github.com/avolkov/examgen/internal/infrastructure/llm/openai"
	"github.com/avolkov/examgen/internal/infrastructure/repository/postgres"
	"github.com/avolkov/examgen/internal/infrastructure/resilience"
	"github.com/avolkov/examgen/internal/infrastructure/vector/qdrant"
	"github.com/avolkov/examgen/internal/observability/logging"
	"github.com/avolkov/examgen/internal/observability/metrics"
)

const serviceName = "examgen-api"

// App holds the wired application graph.
type App struct {
	Handler http.Handler
	Logger  *slog.Logger

	closers []func() error
}

// Close releases infrastructure resources in reverse wiring order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func New(cfg config.Config) (*App, error) {
	logger := logging.Setup(serviceName, cfg.LogLevel)

	app := &App{Logger: logger}

	policy := resilience.DefaultPolicy()
	if cfg.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialBackoffMS > 0 {
		policy.InitialBackoff = time.Duration(cfg.RetryInitialBackoffMS) * time.Millisecond
	}
	executor := resilience.NewExecutor(policy)

	embedder, generator, err := buildProvider(cfg, executor)
	if err != nil {
		return nil, err
	}

	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	var confidence ports.TopicConfidenceSource
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		confidence = postgres.NewConfidenceRepository(db)
	} else {
		logger.Info("confidence_source_disabled", "reason", "no postgres dsn")
	}

	genMetrics := metrics.NewGenerationMetrics(serviceName)
	httpMetrics := metrics.NewHTTPServerMetrics(serviceName, genMetrics)

	retriever := usecase.NewRetrieveUseCase(embedder, index, cfg.RetrievalOverfetch)
	questions := usecase.NewGenerateUseCase(retriever, generator, confidence, genMetrics, usecase.GenerateConfig{
		DefaultTopK:          cfg.RetrievalTopK,
		DefaultCoverageCount: cfg.CoverageQuestionCount,
		CoveragePoolCeiling:  cfg.CoveragePoolCeiling,
		DiversityCapSlack:    cfg.DiversityCapSlack,
		MaxConcurrent:        cfg.GenerateMaxConcurrent,
		GenerateTimeout:      time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		MaxTokens:            cfg.GenerateMaxTokens,
		Temperature:          cfg.GenerateTemperature,
	})
	ingestor := usecase.NewIngestUseCase(
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		index,
	)

	router := httpadapter.NewRouter(questions, ingestor, genMetrics, httpMetrics)
	app.Handler = router.Handler()

	logger.Info("app_wired",
		"llm_provider", cfg.LLMProvider,
		"qdrant_collection", cfg.QdrantCollection,
		"confidence_source", confidence != nil,
	)
	return app, nil
}

func buildProvider(cfg config.Config, executor *resilience.Executor) (ports.Embedder, ports.TextGenerator, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	switch cfg.LLMProvider {
	case "ollama":
		client := ollama.New(ollama.Config{
			BaseURL:           cfg.OllamaURL,
			GenModel:          cfg.OllamaGenModel,
			EmbedModel:        cfg.OllamaEmbedModel,
			Timeout:           timeout,
			RequestsPerSecond: cfg.LLMRequestsPerSecond,
			Executor:          executor,
		})
		return ollama.NewEmbedder(client), ollama.NewGenerator(client), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, fmt.Errorf("llm provider %q requires OPENAI_API_KEY", cfg.LLMProvider)
		}
		client := openai.New(openai.Config{
			APIKey:            cfg.OpenAIAPIKey,
			BaseURL:           cfg.OpenAIBaseURL,
			GenModel:          cfg.OpenAIGenModel,
			EmbedModel:        cfg.OpenAIEmbedModel,
			Timeout:           timeout,
			RequestsPerSecond: cfg.LLMRequestsPerSecond,
			Executor:          executor,
		})
		return openai.NewEmbedder(client), openai.NewGenerator(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
