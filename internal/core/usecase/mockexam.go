package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/examgen/internal/core/domain"
	"github.com/avolkov/examgen/internal/core/examformat"
)

// GenerateMockExam produces a structured question set matching a declared
// exam template, plus an assembled exam document. Both representations are
// built from the same final list and so stay consistent.
func (uc *GenerateUseCase) GenerateMockExam(ctx context.Context, req domain.GenerationRequest) (*domain.ExamSet, error) {
	started := time.Now()

	spec := examformat.Parse(req.ExamFormat)
	if req.QuestionCount > 0 {
		// An explicit count override is never silently ignored.
		spec = spec.ScaleTo(req.QuestionCount)
	}

	rules := InferWeightingRules(req.ExamFormat, req.ExamType, req.WeightingRules)

	slots := make([]questionSlot, 0, spec.Total())
	for _, entry := range spec.Entries {
		candidates, err := uc.retrieveForEntry(ctx, req, entry, &rules)
		if err != nil {
			uc.metrics.ObserveGeneration(string(domain.ModeMockExam), "error", time.Since(started), 0)
			return nil, err
		}
		for i := 0; i < entry.Count; i++ {
			slots = append(slots, questionSlot{
				Type:       entry.Type,
				Input:      req.InputText,
				Candidates: slotCandidates(candidates, i, entry.Count),
			})
		}
	}

	results := uc.generateSlots(ctx, slots)
	set, err := assembleSet(uuid.NewString(), slots, results, spec.Total())
	if err != nil {
		uc.metrics.ObserveGeneration(string(domain.ModeMockExam), "error", time.Since(started), 0)
		return nil, err
	}

	set.WeightingUsed = rules
	set.Document = renderExamDocument(req.ExamType, spec, set.Questions)

	status := "ok"
	if len(set.Failures) > 0 {
		status = "partial"
	}
	uc.metrics.ObserveGeneration(string(domain.ModeMockExam), status, time.Since(started), set.GeneratedCount)
	return set, nil
}

func (uc *GenerateUseCase) retrieveForEntry(
	ctx context.Context,
	req domain.GenerationRequest,
	entry examformat.Entry,
	rules *domain.WeightingRules,
) ([]domain.RetrievedCandidate, error) {
	query := strings.TrimSpace(req.InputText)
	if query == "" {
		query = broadCoverageQuery
	}

	topK := entry.Count * 2
	if topK < uc.cfg.DefaultTopK {
		topK = uc.cfg.DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	return uc.retrieveOrDegrade(ctx, query, topK, rules)
}

// totalPoints sums points over the questions that actually survived, using
// the per-type points declared in the template, so a partial set never
// advertises points for missing questions.
func totalPoints(spec examformat.Spec, questions []domain.GeneratedQuestion) int {
	perType := make(map[domain.QuestionType]int, len(spec.Entries))
	for _, e := range spec.Entries {
		if _, ok := perType[e.Type]; !ok {
			perType[e.Type] = e.PointsPerQuestion
		}
	}
	total := 0
	for _, q := range questions {
		total += perType[q.Type]
	}
	return total
}

// slotCandidates deals retrieved chunks round-robin across an entry's
// question slots so sibling questions of one type cite different sources.
func slotCandidates(candidates []domain.RetrievedCandidate, slot, slotCount int) []domain.RetrievedCandidate {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) <= slotCount {
		return []domain.RetrievedCandidate{candidates[slot%len(candidates)]}
	}

	out := make([]domain.RetrievedCandidate, 0, 2)
	for i := slot; i < len(candidates); i += slotCount {
		out = append(out, candidates[i])
		if len(out) == 2 {
			break
		}
	}
	return out
}

func renderExamDocument(examType string, spec examformat.Spec, questions []domain.GeneratedQuestion) string {
	var b strings.Builder

	title := "Practice Exam"
	switch examType {
	case "midterm":
		title = "Practice Midterm Exam"
	case "final":
		title = "Practice Final Exam"
	}
	b.WriteString(title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d questions.", len(questions))
	if points := totalPoints(spec, questions); points > 0 {
		fmt.Fprintf(&b, " %d points total.", points)
	}
	b.WriteString(" Answer every question.\n\n")

	for _, q := range questions {
		fmt.Fprintf(&b, "%d. [%s] %s\n\n", q.ExamIndex+1, questionTypeLabel(q.Type), strings.TrimSpace(q.QuestionText))
	}
	return b.String()
}

func questionTypeLabel(t domain.QuestionType) string {
	switch t {
	case domain.QuestionMultipleChoice:
		return "Multiple Choice"
	case domain.QuestionShortAnswer:
		return "Short Answer"
	case domain.QuestionTrueFalse:
		return "True/False"
	case domain.QuestionEssay:
		return "Essay"
	case domain.QuestionFillInBlank:
		return "Fill in the Blank"
	default:
		return "Question"
	}
}
