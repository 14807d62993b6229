// Package memindex is an exact-scan in-memory vector index with cosine
// distance. It backs tests and single-process development setups; the
// production index is the qdrant adapter.
package memindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/avolkov/examgen/internal/core/domain"
)

type entry struct {
	chunk domain.Chunk
}

type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func New() *Index {
	return &Index{entries: make(map[string]entry)}
}

func (idx *Index) UpsertChunks(_ context.Context, chunks []domain.Chunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, c := range chunks {
		idx.entries[c.ID] = entry{chunk: c}
	}
	return nil
}

func (idx *Index) Query(_ context.Context, vector []float32, limit int) ([]domain.IndexHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	hits := make([]domain.IndexHit, 0, len(idx.entries))
	for id, e := range idx.entries {
		hits = append(hits, domain.IndexHit{
			ChunkID:       id,
			Text:          e.chunk.Text,
			AutoTags:      e.chunk.AutoTags,
			UserOverrides: e.chunk.UserOverrides,
			Distance:      cosineDistance(vector, e.chunk.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (idx *Index) SetUserOverrides(_ context.Context, chunkID string, overrides domain.Metadata) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.entries[chunkID]
	if !ok {
		return nil
	}
	e.chunk.UserOverrides = overrides
	idx.entries[chunkID] = e
	return nil
}

func (idx *Index) DeleteChunk(_ context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, chunkID)
	return nil
}

func (idx *Index) DeleteClassChunks(_ context.Context, classID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for id, e := range idx.entries {
		if e.chunk.AutoTags.Str(domain.MetaClassID) == classID {
			delete(idx.entries, id)
		}
	}
	return nil
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
