package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avolkov/examgen/internal/core/domain"
	"github.com/avolkov/examgen/internal/core/ports"
)

// IngestUseCase turns extracted reference text into indexed chunks:
// split, embed batch, upsert with auto tags. Tagging afterwards writes only
// user_overrides; auto tags are never rewritten.
type IngestUseCase struct {
	chunker  ports.Chunker
	embedder ports.Embedder
	index    ports.VectorIndex
}

func NewIngestUseCase(chunker ports.Chunker, embedder ports.Embedder, index ports.VectorIndex) *IngestUseCase {
	return &IngestUseCase{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest reference", errors.New("text is empty"))
	}

	pieces := uc.chunker.Split(req.Text)
	if len(pieces) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest reference", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(pieces)),
		)
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	ids := make([]string, 0, len(pieces))
	for i, text := range pieces {
		id := uuid.NewString()
		ids = append(ids, id)
		chunks = append(chunks, domain.Chunk{
			ID:        id,
			Text:      text,
			Embedding: vectors[i],
			AutoTags:  uc.autoTags(req, i),
		})
	}

	if err := uc.index.UpsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}

	return &domain.IngestResult{ChunkIDs: ids, ChunkCount: len(ids)}, nil
}

func (uc *IngestUseCase) autoTags(req domain.IngestRequest, chunkIndex int) domain.Metadata {
	tags := domain.Metadata{
		domain.MetaClassID: req.ClassID,
		"chunk_index":      chunkIndex,
	}
	if req.Source != "" {
		tags[domain.MetaSource] = req.Source
	}
	if req.SourceFile != "" {
		tags[domain.MetaSourceFile] = req.SourceFile
	}
	return domain.MergeMetadata(tags, req.AutoTags)
}

func (uc *IngestUseCase) TagChunk(ctx context.Context, chunkID string, overrides domain.Metadata) error {
	if strings.TrimSpace(chunkID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "tag chunk", errors.New("chunk id is required"))
	}
	if len(overrides) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "tag chunk", errors.New("overrides are empty"))
	}
	if err := uc.index.SetUserOverrides(ctx, chunkID, overrides); err != nil {
		return fmt.Errorf("set user overrides: %w", err)
	}
	return nil
}

func (uc *IngestUseCase) DeleteChunk(ctx context.Context, chunkID string) error {
	if strings.TrimSpace(chunkID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete chunk", errors.New("chunk id is required"))
	}
	if err := uc.index.DeleteChunk(ctx, chunkID); err != nil {
		return fmt.Errorf("delete chunk: %w", err)
	}
	return nil
}

func (uc *IngestUseCase) DeleteClassChunks(ctx context.Context, classID string) error {
	if strings.TrimSpace(classID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete class chunks", errors.New("class id is required"))
	}
	if err := uc.index.DeleteClassChunks(ctx, classID); err != nil {
		return fmt.Errorf("delete class chunks: %w", err)
	}
	return nil
}
