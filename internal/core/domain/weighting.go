package domain

import "encoding/json"

type Region string

const (
	RegionPre  Region = "pre"
	RegionPost Region = "post"
)

// SlideRange rescales chunks whose slide_number falls inside [Start, End].
type SlideRange struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Weight float64 `json:"weight"`
}

// WeightingRules rescales similarity scores before ranking. Exactly one mode
// is authoritative per request: slide ranges (evaluated in list order, first
// match wins) take precedence over region weights for chunks carrying a
// numeric slide_number; region weights apply otherwise; neither matching
// means neutral 1.0.
type WeightingRules struct {
	PreMidtermWeight  float64      `json:"pre_midterm_weight,omitempty"`
	PostMidtermWeight float64      `json:"post_midterm_weight,omitempty"`
	SlideRanges       []SlideRange `json:"slide_ranges,omitempty"`
}

// NeutralWeighting leaves every candidate's score unchanged.
func NeutralWeighting() WeightingRules {
	return WeightingRules{PreMidtermWeight: 1.0, PostMidtermWeight: 1.0}
}

func (r WeightingRules) IsZero() bool {
	return r.PreMidtermWeight == 0 && r.PostMidtermWeight == 0 && len(r.SlideRanges) == 0
}

// UnmarshalJSON accepts both the flat shape and the explicit
// {"region_weights": {"pre": ..., "post": ...}} shape.
func (r *WeightingRules) UnmarshalJSON(data []byte) error {
	var raw struct {
		PreMidtermWeight  float64      `json:"pre_midterm_weight"`
		PostMidtermWeight float64      `json:"post_midterm_weight"`
		RegionWeights     *struct {
			Pre  float64 `json:"pre"`
			Post float64 `json:"post"`
		} `json:"region_weights"`
		SlideRanges []SlideRange `json:"slide_ranges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.PreMidtermWeight = raw.PreMidtermWeight
	r.PostMidtermWeight = raw.PostMidtermWeight
	r.SlideRanges = raw.SlideRanges
	if raw.RegionWeights != nil {
		r.PreMidtermWeight = raw.RegionWeights.Pre
		r.PostMidtermWeight = raw.RegionWeights.Post
	}
	return nil
}

// WeightStrategy computes the multiplier for one candidate's effective
// metadata.
type WeightStrategy func(meta Metadata) float64

// Strategy resolves the rule shape once so scoring never branches on shape.
func (r WeightingRules) Strategy() WeightStrategy {
	regionWeight := func(meta Metadata) float64 {
		switch meta.Region() {
		case RegionPre:
			if r.PreMidtermWeight != 0 || r.PostMidtermWeight != 0 {
				return r.PreMidtermWeight
			}
		case RegionPost:
			if r.PreMidtermWeight != 0 || r.PostMidtermWeight != 0 {
				return r.PostMidtermWeight
			}
		}
		return 1.0
	}

	if len(r.SlideRanges) == 0 {
		return regionWeight
	}

	ranges := make([]SlideRange, len(r.SlideRanges))
	copy(ranges, r.SlideRanges)
	return func(meta Metadata) float64 {
		if slide, ok := meta.SlideNumber(); ok {
			for _, sr := range ranges {
				if slide >= sr.Start && slide <= sr.End {
					return sr.Weight
				}
			}
		}
		return regionWeight(meta)
	}
}
