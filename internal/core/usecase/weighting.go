package usecase

import (
	"github.com/avolkov/examgen/internal/core/domain"
	"github.com/avolkov/examgen/internal/core/examformat"
)

// InferWeightingRules derives a weighting configuration from exam-structure
// metadata. Pure: same inputs always produce the same output.
//
// Precedence: a well-formed explicit override wins outright; inferred
// defaults only fill the region keys the override omits. Without an
// override: a recognized "N pre-midterm, M post-midterm" split yields
// proportional region weights, then exam type defaults, then neutral.
func InferWeightingRules(examFormat, examType string, override *domain.WeightingRules) domain.WeightingRules {
	inferred := inferDefaultRules(examFormat, examType)
	if override == nil || override.IsZero() {
		return inferred
	}

	out := *override
	if len(out.SlideRanges) == 0 {
		if out.PreMidtermWeight == 0 {
			out.PreMidtermWeight = inferred.PreMidtermWeight
		}
		if out.PostMidtermWeight == 0 {
			out.PostMidtermWeight = inferred.PostMidtermWeight
		}
	}
	return out
}

func inferDefaultRules(examFormat, examType string) domain.WeightingRules {
	if pre, post, ok := examformat.RegionSplit(examFormat); ok {
		return proportionalRegionWeights(pre, post)
	}

	switch examType {
	case "midterm":
		return domain.WeightingRules{PreMidtermWeight: 1.0, PostMidtermWeight: 0.5}
	case "final":
		return domain.WeightingRules{PreMidtermWeight: 1.0, PostMidtermWeight: 2.0}
	default:
		return domain.NeutralWeighting()
	}
}

// proportionalRegionWeights normalizes so the heavier region weighs 1.0 and
// the regions get sampled roughly in the declared ratio.
func proportionalRegionWeights(pre, post int) domain.WeightingRules {
	max := pre
	if post > max {
		max = post
	}
	if max <= 0 {
		return domain.NeutralWeighting()
	}
	return domain.WeightingRules{
		PreMidtermWeight:  float64(pre) / float64(max),
		PostMidtermWeight: float64(post) / float64(max),
	}
}
