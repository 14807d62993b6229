package ports

import (
	"context"

	"github.com/avolkov/examgen/internal/core/domain"
)

// Embedder builds vectors for chunk batches and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex persists (vector, text, metadata) triples and answers
// approximate nearest-neighbor queries ranked by distance ascending.
type VectorIndex interface {
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error
	Query(ctx context.Context, vector []float32, limit int) ([]domain.IndexHit, error)
	SetUserOverrides(ctx context.Context, chunkID string, overrides domain.Metadata) error
	DeleteChunk(ctx context.Context, chunkID string) error
	DeleteClassChunks(ctx context.Context, classID string) error
}

// TextGenerator is the external text-generation capability.
type TextGenerator interface {
	GenerateText(ctx context.Context, call domain.GenerationCall) (string, error)
}

// TopicConfidenceSource reports per-topic confidence fractions for a class.
// Used only by focus_on_uncertain coverage generation.
type TopicConfidenceSource interface {
	GetTopicConfidence(ctx context.Context, classID string) (map[string]float64, error)
}

// Chunker splits reference text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}
