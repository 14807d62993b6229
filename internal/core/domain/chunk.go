package domain

import "strconv"

// Recognized metadata keys. Unknown keys are carried through untouched.
const (
	MetaSource        = "source"
	MetaSourceFile    = "source_file"
	MetaPage          = "page"
	MetaExamRegion    = "exam_region"
	MetaSlideset      = "slideset"
	MetaSlideNumber   = "slide_number"
	MetaTopic         = "topic"
	MetaReferenceType = "reference_type"
	MetaClassID       = "class_id"
)

type ReferenceType string

const (
	ReferenceAssessment ReferenceType = "assessment"
	ReferenceLecture    ReferenceType = "lecture"
	ReferenceHomework   ReferenceType = "homework"
	ReferenceNotes      ReferenceType = "notes"
	ReferenceTextbook   ReferenceType = "textbook"
)

type Metadata map[string]any

// Chunk is a stored unit of reference text. AutoTags are written once at
// ingestion; UserOverrides are the only mutable part and are kept separate
// so the original tagging stays auditable.
type Chunk struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Embedding     []float32 `json:"-"`
	AutoTags      Metadata  `json:"auto_tags,omitempty"`
	UserOverrides Metadata  `json:"user_overrides,omitempty"`
}

// EffectiveMetadata is what every query-time read sees: user overrides win
// key-by-key over auto tags.
func (c Chunk) EffectiveMetadata() Metadata {
	return MergeMetadata(c.AutoTags, c.UserOverrides)
}

// MergeMetadata is a shallow right-biased merge. Neither input is mutated.
func MergeMetadata(auto, overrides Metadata) Metadata {
	out := make(Metadata, len(auto)+len(overrides))
	for k, v := range auto {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func (m Metadata) Str(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Int tolerates the numeric types JSON decoding and callers actually
// produce: int, int64, float64 and numeric strings.
func (m Metadata) Int(key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func (m Metadata) Region() Region {
	switch m.Str(MetaExamRegion) {
	case string(RegionPre):
		return RegionPre
	case string(RegionPost):
		return RegionPost
	default:
		return ""
	}
}

func (m Metadata) SlideNumber() (int, bool) {
	return m.Int(MetaSlideNumber)
}

func (m Metadata) Topic() string {
	return m.Str(MetaTopic)
}

func (m Metadata) SourceFile() string {
	return m.Str(MetaSourceFile)
}
