package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avolkov/examgen/internal/core/domain"
	"github.com/avolkov/examgen/internal/core/ports"
	"github.com/avolkov/examgen/internal/observability/metrics"
)

// GenerateConfig carries the orchestration policy knobs. Zero values fall
// back to sane defaults in NewGenerateUseCase.
type GenerateConfig struct {
	DefaultTopK          int
	DefaultCoverageCount int
	CoveragePoolCeiling  int
	DiversityCapSlack    int
	MaxConcurrent        int
	GenerateTimeout      time.Duration
	MaxTokens            int
	Temperature          float64
}

// GenerateUseCase orchestrates retrieval, prompt construction and the
// external generation call for all three modes. Stateless between calls.
type GenerateUseCase struct {
	retriever  ports.Retriever
	generator  ports.TextGenerator
	confidence ports.TopicConfidenceSource
	metrics    *metrics.GenerationMetrics
	cfg        GenerateConfig
}

func NewGenerateUseCase(
	retriever ports.Retriever,
	generator ports.TextGenerator,
	confidence ports.TopicConfidenceSource,
	m *metrics.GenerationMetrics,
	cfg GenerateConfig,
) *GenerateUseCase {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.DefaultCoverageCount <= 0 {
		cfg.DefaultCoverageCount = 10
	}
	if cfg.CoveragePoolCeiling <= 0 || cfg.CoveragePoolCeiling > MaxTopK {
		cfg.CoveragePoolCeiling = 80
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &GenerateUseCase{
		retriever:  retriever,
		generator:  generator,
		confidence: confidence,
		metrics:    m,
		cfg:        cfg,
	}
}

// Generate is single-question mode: one retrieval, one generation call.
// Zero retrieved candidates is not an error; generation proceeds ungrounded
// and the result carries RetrievedCount=0 so callers can detect degraded
// grounding.
func (uc *GenerateUseCase) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedQuestion, error) {
	started := time.Now()

	input := strings.TrimSpace(req.InputText)
	if input == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate question", fmt.Errorf("input text is required"))
	}

	rules := InferWeightingRules(req.ExamFormat, req.ExamType, req.WeightingRules)
	topK := req.TopK
	if topK <= 0 {
		topK = uc.cfg.DefaultTopK
	}

	candidates, err := uc.retrieveOrDegrade(ctx, input, topK, &rules)
	if err != nil {
		uc.metrics.ObserveGeneration(string(domain.ModeNormal), "error", time.Since(started), 0)
		return nil, err
	}

	question, err := uc.generateOne(ctx, questionSlot{
		Type:       domain.QuestionGeneral,
		Input:      input,
		Candidates: candidates,
	})
	if err != nil {
		uc.metrics.ObserveGeneration(string(domain.ModeNormal), "error", time.Since(started), 0)
		return nil, err
	}

	uc.metrics.ObserveGeneration(string(domain.ModeNormal), "ok", time.Since(started), 1)
	return question, nil
}

type questionSlot struct {
	Type       domain.QuestionType
	Input      string
	Candidates []domain.RetrievedCandidate
	Topic      string
}

func (uc *GenerateUseCase) generateOne(ctx context.Context, slot questionSlot) (*domain.GeneratedQuestion, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.GenerateTimeout)
	defer cancel()

	raw, err := uc.generator.GenerateText(callCtx, domain.GenerationCall{
		Prompt:             buildQuestionPrompt(slot.Input, slot.Type, slot.Candidates),
		SystemInstructions: questionSystemInstructions,
		MaxTokens:          uc.cfg.MaxTokens,
		Temperature:        uc.cfg.Temperature,
		JSONOnly:           true,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "generate question", err)
	}

	payload := parseQuestionResponse(raw)
	topic := payload.Topic
	if slot.Topic != "" {
		topic = slot.Topic
	}

	return &domain.GeneratedQuestion{
		QuestionText:   payload.Question,
		Solution:       payload.Solution,
		Type:           slot.Type,
		Topic:          topic,
		Citations:      citationsFor(slot.Candidates),
		RetrievedCount: len(slot.Candidates),
	}, nil
}

// retrieveOrDegrade treats infrastructure retrieval failure as degraded
// grounding, never as a fatal error. Invalid retrieval input is the caller's
// mistake and is surfaced immediately instead.
func (uc *GenerateUseCase) retrieveOrDegrade(
	ctx context.Context,
	query string,
	topK int,
	rules *domain.WeightingRules,
) ([]domain.RetrievedCandidate, error) {
	candidates, err := uc.retriever.Retrieve(ctx, query, topK, rules)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidQuery) {
			return nil, err
		}
		slog.Warn("retrieval_degraded", "error", err, "top_k", topK)
		uc.metrics.ObserveRetrieval("error", 0)
		return nil, nil
	}
	uc.metrics.ObserveRetrieval("ok", len(candidates))
	return candidates, nil
}
