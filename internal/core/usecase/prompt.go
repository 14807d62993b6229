package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avolkov/examgen/internal/core/domain"
)

const questionSystemInstructions = `You are an exam author. Write original exam-style questions grounded in the provided reference excerpts.
Return a strict JSON object with keys:
question (string), solution (string), topic (string).
No markdown, no extra keys.`

const maxInputSnippet = 4000

func buildQuestionPrompt(input string, qType domain.QuestionType, candidates []domain.RetrievedCandidate) string {
	var b strings.Builder

	b.WriteString("Write one new ")
	b.WriteString(typeInstruction(qType))
	b.WriteString("\n\n")

	if snippet := strings.TrimSpace(input); snippet != "" {
		if len(snippet) > maxInputSnippet {
			snippet = snippet[:maxInputSnippet]
		}
		b.WriteString("Source problem:\n")
		b.WriteString(snippet)
		b.WriteString("\n\n")
	}

	if len(candidates) == 0 {
		b.WriteString("No reference excerpts are available. Write the question from the source problem alone.\n")
		return b.String()
	}

	b.WriteString("Reference excerpts:\n")
	for idx, c := range candidates {
		fmt.Fprintf(&b, "[%d] source=%s topic=%s score=%.3f\n%s\n\n",
			idx+1,
			c.Metadata.SourceFile(),
			c.Metadata.Topic(),
			c.WeightedScore,
			c.Text,
		)
	}
	b.WriteString("Ground the question in the excerpts above. Do not copy any excerpt verbatim.\n")
	return b.String()
}

func typeInstruction(qType domain.QuestionType) string {
	switch qType {
	case domain.QuestionMultipleChoice:
		return "multiple choice question with four answer options labeled A-D and exactly one correct option. State the correct option in the solution."
	case domain.QuestionShortAnswer:
		return "short answer question answerable in a few sentences."
	case domain.QuestionTrueFalse:
		return "true/false statement. State whether it is true or false in the solution."
	case domain.QuestionEssay:
		return "essay question requiring an extended structured answer. Outline the expected answer in the solution."
	case domain.QuestionFillInBlank:
		return "fill-in-the-blank question with a single blank. Give the missing term in the solution."
	default:
		return "exam-style question."
	}
}

type questionPayload struct {
	Question string `json:"question"`
	Solution string `json:"solution"`
	Topic    string `json:"topic"`
}

// parseQuestionResponse tolerates models that wrap the JSON object in prose.
// When no JSON object can be recovered the raw text is used as the question.
func parseQuestionResponse(raw string) questionPayload {
	var payload questionPayload
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil || strings.TrimSpace(payload.Question) == "" {
		return questionPayload{Question: strings.TrimSpace(raw)}
	}
	return payload
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func citationsFor(candidates []domain.RetrievedCandidate) []domain.Citation {
	out := make([]domain.Citation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.Citation{
			ChunkID:    c.ChunkID,
			SourceFile: c.Metadata.SourceFile(),
		})
	}
	return out
}
