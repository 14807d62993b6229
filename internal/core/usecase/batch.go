package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/avolkov/examgen/internal/core/domain"
)

type slotResult struct {
	question *domain.GeneratedQuestion
	err      error
}

// generateSlots runs per-question generation with bounded parallelism and
// collects results indexed by slot, so the assembled list order never
// depends on completion order. A failed slot never aborts its siblings.
func (uc *GenerateUseCase) generateSlots(ctx context.Context, slots []questionSlot) []slotResult {
	results := make([]slotResult, len(slots))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.cfg.MaxConcurrent)
	for i, slot := range slots {
		group.Go(func() error {
			question, err := uc.generateOne(groupCtx, slot)
			results[i] = slotResult{question: question, err: err}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// assembleSet builds an ExamSet from slot results: successful questions keep
// slot order and get contiguous 0-based exam indexes; failed slots become
// error-annotated failures and reduce GeneratedCount instead of raising.
func assembleSet(setID string, slots []questionSlot, results []slotResult, requested int) (*domain.ExamSet, error) {
	set := &domain.ExamSet{
		ExamSetID:      setID,
		RequestedCount: requested,
	}

	for i, res := range results {
		if res.err != nil {
			set.Failures = append(set.Failures, domain.QuestionFailure{
				Slot:  i,
				Type:  slots[i].Type,
				Error: res.err.Error(),
			})
			continue
		}
		q := *res.question
		q.ExamSetID = setID
		q.ExamIndex = len(set.Questions)
		set.Questions = append(set.Questions, q)
	}

	set.GeneratedCount = len(set.Questions)
	for i := range set.Questions {
		set.Questions[i].TotalInSet = set.GeneratedCount
	}

	if set.GeneratedCount == 0 && requested > 0 {
		cause := fmt.Errorf("all %d question slots failed", requested)
		if len(set.Failures) > 0 {
			cause = fmt.Errorf("all %d question slots failed: %s", requested, set.Failures[0].Error)
		}
		return nil, domain.WrapError(domain.ErrGeneration, "generate batch", cause)
	}
	return set, nil
}
