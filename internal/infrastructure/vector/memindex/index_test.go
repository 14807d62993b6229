package memindex

import (
	"context"
	"testing"

	"github.com/avolkov/examgen/internal/core/domain"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx := New()
	err := idx.UpsertChunks(context.Background(), []domain.Chunk{
		{ID: "a", Text: "alpha", Embedding: []float32{1, 0, 0}, AutoTags: domain.Metadata{domain.MetaClassID: "cs101"}},
		{ID: "b", Text: "beta", Embedding: []float32{0.9, 0.1, 0}, AutoTags: domain.Metadata{domain.MetaClassID: "cs101"}},
		{ID: "c", Text: "gamma", Embedding: []float32{0, 1, 0}, AutoTags: domain.Metadata{domain.MetaClassID: "math200"}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return idx
}

func TestQueryRanksByDistance(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Query(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ChunkID != "a" || hits[1].ChunkID != "b" || hits[2].ChunkID != "c" {
		t.Fatalf("unexpected ranking: %s %s %s", hits[0].ChunkID, hits[1].ChunkID, hits[2].ChunkID)
	}
	if hits[0].Distance >= hits[1].Distance || hits[1].Distance >= hits[2].Distance {
		t.Fatalf("distances not ascending: %v %v %v", hits[0].Distance, hits[1].Distance, hits[2].Distance)
	}
}

func TestQueryLimit(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Query(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkID != "a" {
		t.Fatalf("expected single nearest hit, got %+v", hits)
	}
}

func TestUpsertReplacesExistingChunk(t *testing.T) {
	idx := seedIndex(t)

	err := idx.UpsertChunks(context.Background(), []domain.Chunk{
		{ID: "a", Text: "alpha v2", Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("upsert must replace, not duplicate: len=%d", idx.Len())
	}

	hits, _ := idx.Query(context.Background(), []float32{1, 0, 0}, 1)
	if hits[0].Text != "alpha v2" {
		t.Fatalf("expected replaced text, got %q", hits[0].Text)
	}
}

func TestSetUserOverrides(t *testing.T) {
	idx := seedIndex(t)

	overrides := domain.Metadata{domain.MetaExamRegion: "post"}
	if err := idx.SetUserOverrides(context.Background(), "a", overrides); err != nil {
		t.Fatalf("set overrides: %v", err)
	}

	hits, _ := idx.Query(context.Background(), []float32{1, 0, 0}, 1)
	if hits[0].UserOverrides.Str(domain.MetaExamRegion) != "post" {
		t.Fatalf("expected overrides on hit, got %v", hits[0].UserOverrides)
	}
	if hits[0].AutoTags.Str(domain.MetaClassID) != "cs101" {
		t.Fatalf("auto tags must survive override writes, got %v", hits[0].AutoTags)
	}

	// Unknown chunk is a no-op, not an error.
	if err := idx.SetUserOverrides(context.Background(), "missing", overrides); err != nil {
		t.Fatalf("unexpected error for unknown chunk: %v", err)
	}
}

func TestDeleteChunk(t *testing.T) {
	idx := seedIndex(t)

	if err := idx.DeleteChunk(context.Background(), "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 chunks after delete, got %d", idx.Len())
	}
}

func TestDeleteClassChunks(t *testing.T) {
	idx := seedIndex(t)

	if err := idx.DeleteClassChunks(context.Background(), "cs101"); err != nil {
		t.Fatalf("delete class: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected only the other class left, got %d", idx.Len())
	}

	hits, _ := idx.Query(context.Background(), []float32{0, 1, 0}, 5)
	if len(hits) != 1 || hits[0].ChunkID != "c" {
		t.Fatalf("expected chunk c to survive, got %+v", hits)
	}
}

func TestQueryZeroVector(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Query(context.Background(), []float32{0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, h := range hits {
		if h.Distance != 1 {
			t.Fatalf("expected max distance for zero vector, got %v", h.Distance)
		}
	}
}
