package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/avolkov/examgen/internal/core/domain"
	"github.com/avolkov/examgen/internal/core/ports"
)

const (
	MaxTopK          = 100
	defaultOverfetch = 3
)

// RetrieveUseCase converts a query to a vector, fetches nearest neighbors,
// applies weighting rules and returns the re-ranked top-K. Read-only: each
// call issues one embedding computation and one index query.
type RetrieveUseCase struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	overfetch int
}

func NewRetrieveUseCase(embedder ports.Embedder, index ports.VectorIndex, overfetch int) *RetrieveUseCase {
	if overfetch < 1 {
		overfetch = defaultOverfetch
	}
	return &RetrieveUseCase{
		embedder:  embedder,
		index:     index,
		overfetch: overfetch,
	}
}

func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	query string,
	topK int,
	rules *domain.WeightingRules,
) ([]domain.RetrievedCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "retrieve", fmt.Errorf("query is empty"))
	}
	if topK < 1 || topK > MaxTopK {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "retrieve", fmt.Errorf("top_k must be in [1, %d], got %d", MaxTopK, topK))
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch so weighting can reorder without starving the final list.
	hits, err := uc.index.Query(ctx, queryVector, topK*uc.overfetch)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}
	if len(hits) == 0 {
		return []domain.RetrievedCandidate{}, nil
	}

	weightFor := resolveStrategy(rules)
	candidates := make([]domain.RetrievedCandidate, 0, len(hits))
	for _, hit := range hits {
		meta := domain.MergeMetadata(hit.AutoTags, hit.UserOverrides)
		weight := weightFor(meta)
		if weight == 0 {
			// Weight 0 is the explicit hard-exclusion rule; any other
			// weight only re-ranks.
			continue
		}
		raw := clamp01(1.0 - hit.Distance)
		candidates = append(candidates, domain.RetrievedCandidate{
			ChunkID:       hit.ChunkID,
			Text:          hit.Text,
			Metadata:      meta,
			RawScore:      raw,
			Weight:        weight,
			WeightedScore: raw * weight,
		})
	}

	SortCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// SortCandidates orders by weighted score descending, raw score descending,
// chunk ID ascending. The full tie-break chain keeps result order
// deterministic for a fixed index state.
func SortCandidates(candidates []domain.RetrievedCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].WeightedScore != candidates[j].WeightedScore {
			return candidates[i].WeightedScore > candidates[j].WeightedScore
		}
		if candidates[i].RawScore != candidates[j].RawScore {
			return candidates[i].RawScore > candidates[j].RawScore
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
}

func resolveStrategy(rules *domain.WeightingRules) domain.WeightStrategy {
	if rules == nil || rules.IsZero() {
		return domain.NeutralWeighting().Strategy()
	}
	return rules.Strategy()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
