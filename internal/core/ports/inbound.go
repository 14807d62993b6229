package ports

import (
	"context"

	"github.com/avolkov/examgen/internal/core/domain"
)

// Retriever is the inbound contract for weighted similarity search.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, rules *domain.WeightingRules) ([]domain.RetrievedCandidate, error)
}

// QuestionService is the inbound contract for question generation.
type QuestionService interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedQuestion, error)
	GenerateCoverage(ctx context.Context, req domain.GenerationRequest) (*domain.ExamSet, error)
	GenerateMockExam(ctx context.Context, req domain.GenerationRequest) (*domain.ExamSet, error)
}

// ReferenceIngestor is the inbound contract for reference-content lifecycle.
type ReferenceIngestor interface {
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
	TagChunk(ctx context.Context, chunkID string, overrides domain.Metadata) error
	DeleteChunk(ctx context.Context, chunkID string) error
	DeleteClassChunks(ctx context.Context, classID string) error
}
