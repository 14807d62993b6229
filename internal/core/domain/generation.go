package domain

type GenerationMode string

const (
	ModeNormal   GenerationMode = "normal"
	ModeCoverage GenerationMode = "coverage"
	ModeMockExam GenerationMode = "mock_exam"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionEssay          QuestionType = "essay"
	QuestionFillInBlank    QuestionType = "fill_in_blank"
	QuestionGeneral        QuestionType = "general"
)

// GenerationRequest carries everything one generation invocation needs.
// Each invocation is a complete, independent transaction.
type GenerationRequest struct {
	Mode             GenerationMode  `json:"mode"`
	InputText        string          `json:"input_text"`
	ClassID          string          `json:"class_id,omitempty"`
	QuestionCount    int             `json:"question_count,omitempty"`
	ExamFormat       string          `json:"exam_format,omitempty"`
	ExamType         string          `json:"exam_type,omitempty"`
	WeightingRules   *WeightingRules `json:"weighting_rules,omitempty"`
	FocusOnUncertain bool            `json:"focus_on_uncertain,omitempty"`
	TopK             int             `json:"top_k,omitempty"`
}

// Citation records which stored chunk grounded a generated question.
type Citation struct {
	ChunkID    string `json:"chunk_id"`
	SourceFile string `json:"source_file,omitempty"`
}

type GeneratedQuestion struct {
	QuestionText   string       `json:"question_text"`
	Solution       string       `json:"solution,omitempty"`
	Type           QuestionType `json:"type"`
	Topic          string       `json:"topic,omitempty"`
	Citations      []Citation   `json:"citations"`
	RetrievedCount int          `json:"retrieved_count"`

	// Batch bookkeeping; zero-valued for single-question mode except
	// ExamSetID which is always empty there.
	ExamSetID      string  `json:"exam_set_id,omitempty"`
	ExamIndex      int     `json:"exam_index"`
	TotalInSet     int     `json:"total_exams_in_set,omitempty"`
	CoverageMetric float64 `json:"coverage_metric,omitempty"`
}

// QuestionFailure is an error-annotated slot in a partial batch.
type QuestionFailure struct {
	Slot  int          `json:"slot"`
	Type  QuestionType `json:"type"`
	Error string       `json:"error"`
}

// ExamSet is the result of one coverage-batch or mock-exam invocation.
// GeneratedCount < RequestedCount signals a partial batch; the caller must
// inspect Failures rather than rely on an error.
type ExamSet struct {
	ExamSetID      string              `json:"exam_set_id"`
	Questions      []GeneratedQuestion `json:"questions"`
	Failures       []QuestionFailure   `json:"failures,omitempty"`
	RequestedCount int                 `json:"requested_count"`
	GeneratedCount int                 `json:"generated_count"`
	CoverageMetric float64             `json:"coverage_metric"`
	WeightingUsed  WeightingRules      `json:"weighting_rules"`
	Document       string              `json:"document,omitempty"`
}

// GenerationCall is one request to the external text-generation capability.
type GenerationCall struct {
	Prompt             string
	SystemInstructions string
	MaxTokens          int
	Temperature        float64
	JSONOnly           bool
}

// IngestRequest adds one piece of reference content to the index.
type IngestRequest struct {
	ClassID    string   `json:"class_id"`
	Source     string   `json:"source,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`
	Text       string   `json:"text"`
	AutoTags   Metadata `json:"auto_tags,omitempty"`
}

type IngestResult struct {
	ChunkIDs   []string `json:"chunk_ids"`
	ChunkCount int      `json:"chunk_count"`
}
