package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/examgen/internal/core/domain"
)

// broadCoverageQuery stands in when a coverage request carries no input
// text; the pool should span the whole reference corpus, not one problem.
const broadCoverageQuery = "key concepts, definitions, methods and examples covered in the course material"

// GenerateCoverage produces a batch of questions spanning the breadth of
// the reference corpus. Candidates are retrieved neutrally, optionally
// boosted toward low-confidence topics, then greedily selected under a
// per-topic diversity cap.
func (uc *GenerateUseCase) GenerateCoverage(ctx context.Context, req domain.GenerationRequest) (*domain.ExamSet, error) {
	started := time.Now()

	count := req.QuestionCount
	if count <= 0 {
		count = uc.cfg.DefaultCoverageCount
	}

	query := req.InputText
	if query == "" {
		query = broadCoverageQuery
	}

	poolSize := count * 4
	if poolSize > uc.cfg.CoveragePoolCeiling {
		poolSize = uc.cfg.CoveragePoolCeiling
	}

	neutral := domain.NeutralWeighting()
	pool, err := uc.retrieveOrDegrade(ctx, query, poolSize, &neutral)
	if err != nil {
		uc.metrics.ObserveGeneration(string(domain.ModeCoverage), "error", time.Since(started), 0)
		return nil, err
	}

	if req.FocusOnUncertain {
		uc.boostUncertainTopics(ctx, req.ClassID, pool)
	}

	selected := selectDiverse(pool, count, uc.cfg.DiversityCapSlack)

	slots := make([]questionSlot, 0, len(selected))
	for _, c := range selected {
		slots = append(slots, questionSlot{
			Type:       domain.QuestionGeneral,
			Input:      req.InputText,
			Candidates: []domain.RetrievedCandidate{c},
			Topic:      c.Metadata.Topic(),
		})
	}
	if len(slots) == 0 {
		// Empty index: still produce ungrounded questions rather than fail.
		for i := 0; i < count; i++ {
			slots = append(slots, questionSlot{Type: domain.QuestionGeneral, Input: query})
		}
	}

	results := uc.generateSlots(ctx, slots)
	set, err := assembleSet(uuid.NewString(), slots, results, count)
	if err != nil {
		uc.metrics.ObserveGeneration(string(domain.ModeCoverage), "error", time.Since(started), 0)
		return nil, err
	}

	set.WeightingUsed = neutral
	set.CoverageMetric = coverageMetric(selected, pool)
	for i := range set.Questions {
		set.Questions[i].CoverageMetric = set.CoverageMetric
	}

	status := "ok"
	if len(set.Failures) > 0 {
		status = "partial"
	}
	uc.metrics.ObserveGeneration(string(domain.ModeCoverage), status, time.Since(started), set.GeneratedCount)
	return set, nil
}

// boostUncertainTopics multiplies weighted scores for chunks whose topic
// the student is least confident about, then restores deterministic order.
// Confidence fractions are in [0,1]; a topic at 0 confidence doubles.
func (uc *GenerateUseCase) boostUncertainTopics(ctx context.Context, classID string, pool []domain.RetrievedCandidate) {
	if uc.confidence == nil || classID == "" || len(pool) == 0 {
		return
	}
	confidence, err := uc.confidence.GetTopicConfidence(ctx, classID)
	if err != nil {
		slog.Warn("topic_confidence_unavailable", "class_id", classID, "error", err)
		return
	}

	for i := range pool {
		topic := pool[i].Metadata.Topic()
		conf, ok := confidence[topic]
		if !ok {
			continue
		}
		boost := 1.0 + (1.0 - clamp01(conf))
		pool[i].Weight *= boost
		pool[i].WeightedScore = pool[i].RawScore * pool[i].Weight
	}
	SortCandidates(pool)
}

// selectDiverse greedily picks candidates in weighted-score order, skipping
// a candidate once its topic (or source file when the topic is absent) has
// been selected cap times. A backfill pass accepts skipped candidates so
// the target count is never missed solely because of the cap.
func selectDiverse(pool []domain.RetrievedCandidate, count, capSlack int) []domain.RetrievedCandidate {
	if count <= 0 || len(pool) == 0 {
		return nil
	}
	if count > len(pool) {
		count = len(pool)
	}

	distinct := distinctTopicKeys(pool)
	perTopicCap := len(pool)
	if distinct > 0 {
		perTopicCap = int(math.Ceil(float64(count)/float64(distinct))) + capSlack
	}

	selected := make([]domain.RetrievedCandidate, 0, count)
	taken := make([]bool, len(pool))
	topicCounts := make(map[string]int, distinct)

	for i, c := range pool {
		if len(selected) == count {
			break
		}
		key := topicKey(c)
		if topicCounts[key] >= perTopicCap {
			continue
		}
		topicCounts[key]++
		taken[i] = true
		selected = append(selected, c)
	}

	for i, c := range pool {
		if len(selected) == count {
			break
		}
		if taken[i] {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

// coverageMetric is distinct topics represented over distinct topics
// available; 0 when the corpus carries no topic tags.
func coverageMetric(selected, pool []domain.RetrievedCandidate) float64 {
	available := distinctTopics(pool)
	if available == 0 {
		return 0
	}
	return float64(distinctTopics(selected)) / float64(available)
}

func distinctTopics(candidates []domain.RetrievedCandidate) int {
	seen := make(map[string]struct{})
	for _, c := range candidates {
		if topic := c.Metadata.Topic(); topic != "" {
			seen[topic] = struct{}{}
		}
	}
	return len(seen)
}

func distinctTopicKeys(candidates []domain.RetrievedCandidate) int {
	seen := make(map[string]struct{})
	for _, c := range candidates {
		seen[topicKey(c)] = struct{}{}
	}
	return len(seen)
}

func topicKey(c domain.RetrievedCandidate) string {
	if topic := c.Metadata.Topic(); topic != "" {
		return "topic:" + topic
	}
	if file := c.Metadata.SourceFile(); file != "" {
		return "file:" + file
	}
	return "chunk:" + c.ChunkID
}
