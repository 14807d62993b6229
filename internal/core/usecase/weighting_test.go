package usecase

import (
	"testing"

	"github.com/avolkov/examgen/internal/core/domain"
)

func TestInferWeightingRulesExamTypeDefaults(t *testing.T) {
	midterm := InferWeightingRules("whatever format", "midterm", nil)
	if midterm.PreMidtermWeight != 1.0 || midterm.PostMidtermWeight != 0.5 {
		t.Fatalf("unexpected midterm rules: %+v", midterm)
	}

	final := InferWeightingRules("whatever format", "final", nil)
	if final.PreMidtermWeight != 1.0 || final.PostMidtermWeight != 2.0 {
		t.Fatalf("unexpected final rules: %+v", final)
	}

	other := InferWeightingRules("whatever format", "quiz", nil)
	if other.PreMidtermWeight != 1.0 || other.PostMidtermWeight != 1.0 || len(other.SlideRanges) != 0 {
		t.Fatalf("expected neutral rules for unknown type, got %+v", other)
	}
}

func TestInferWeightingRulesRegionSplitBeatsExamType(t *testing.T) {
	rules := InferWeightingRules("2 pre-midterm, 8 post-midterm", "midterm", nil)
	if rules.PreMidtermWeight != 0.25 || rules.PostMidtermWeight != 1.0 {
		t.Fatalf("expected proportional 0.25/1.0, got %+v", rules)
	}
}

func TestInferWeightingRulesOverrideWins(t *testing.T) {
	override := &domain.WeightingRules{PreMidtermWeight: 3.0, PostMidtermWeight: 0.1}
	rules := InferWeightingRules("2 pre-midterm, 8 post-midterm", "final", override)
	if rules.PreMidtermWeight != 3.0 || rules.PostMidtermWeight != 0.1 {
		t.Fatalf("expected explicit override to win, got %+v", rules)
	}
}

func TestInferWeightingRulesOverrideFillsOmittedRegion(t *testing.T) {
	override := &domain.WeightingRules{PostMidtermWeight: 0.1}
	rules := InferWeightingRules("", "final", override)
	if rules.PostMidtermWeight != 0.1 {
		t.Fatalf("expected explicit post weight kept, got %+v", rules)
	}
	if rules.PreMidtermWeight != 1.0 {
		t.Fatalf("expected omitted pre weight filled from inferred, got %+v", rules)
	}
}

func TestInferWeightingRulesSlideRangesSkipRegionFill(t *testing.T) {
	override := &domain.WeightingRules{
		SlideRanges: []domain.SlideRange{{Start: 1, End: 10, Weight: 2.0}},
	}
	rules := InferWeightingRules("", "final", override)
	if len(rules.SlideRanges) != 1 {
		t.Fatalf("expected slide ranges kept, got %+v", rules)
	}
	if rules.PreMidtermWeight != 0 || rules.PostMidtermWeight != 0 {
		t.Fatalf("slide-range override should not inherit region weights, got %+v", rules)
	}
}

func TestInferWeightingRulesIsPure(t *testing.T) {
	first := InferWeightingRules("3 pre-midterm and 7 post-midterm", "midterm", nil)
	for i := 0; i < 5; i++ {
		again := InferWeightingRules("3 pre-midterm and 7 post-midterm", "midterm", nil)
		if again.PreMidtermWeight != first.PreMidtermWeight || again.PostMidtermWeight != first.PostMidtermWeight {
			t.Fatalf("inference not deterministic: %+v vs %+v", again, first)
		}
	}
}
