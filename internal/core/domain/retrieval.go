package domain

// IndexHit is one approximate-nearest-neighbor result as returned by the
// vector index, ranked by distance ascending.
type IndexHit struct {
	ChunkID       string
	Text          string
	AutoTags      Metadata
	UserOverrides Metadata
	Distance      float64
}

// RetrievedCandidate is an index hit after score conversion and weighting.
type RetrievedCandidate struct {
	ChunkID       string   `json:"chunk_id"`
	Text          string   `json:"text"`
	Metadata      Metadata `json:"metadata"`
	RawScore      float64  `json:"raw_score"`
	Weight        float64  `json:"weight"`
	WeightedScore float64  `json:"weighted_score"`
}
