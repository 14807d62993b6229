// Package examformat parses free-text exam templates ("5 multiple choice,
// 3 short answer (2 points each)") into a structured count/type spec.
// Parsing is deterministic and best-effort: a structural hint, not a grammar.
package examformat

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/avolkov/examgen/internal/core/domain"
)

const DefaultQuestionCount = 5

// Entry is one "<count> <type>" segment of a template.
type Entry struct {
	Type              domain.QuestionType `json:"question_type"`
	Count             int                 `json:"count"`
	PointsPerQuestion int                 `json:"points_per_question,omitempty"`
}

// Spec is the ordered parsed structure of an exam template.
type Spec struct {
	Entries []Entry `json:"entries"`
}

func (s Spec) Total() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Count
	}
	return total
}

var (
	totalPrefixRe = regexp.MustCompile(`(?i)^\s*(\d+)\s+questions?\s*(?:total)?\s*:\s*`)
	entryRe       = regexp.MustCompile(`(?i)^\s*(\d+)\s+(.+?)\s*$`)
	pointsRe      = regexp.MustCompile(`(?i)\(\s*(\d+)\s*(?:points?|pts?)(?:\s+each)?\s*\)`)
	separatorRe   = regexp.MustCompile(`(?i)\s*(?:,|;|\n|\band\b)\s*`)
	preRegionRe   = regexp.MustCompile(`(?i)(\d+)\s+pre[\s-]?midterm`)
	postRegionRe  = regexp.MustCompile(`(?i)(\d+)\s+post[\s-]?midterm`)
	anyNumberRe   = regexp.MustCompile(`\d+`)
)

// Parse never fails on free-text input. Unparseable text collapses to a
// single "general" entry holding the best-effort count found in the text,
// or DefaultQuestionCount.
func Parse(text string) Spec {
	declaredTotal := 0
	if m := totalPrefixRe.FindStringSubmatch(text); m != nil {
		declaredTotal, _ = strconv.Atoi(m[1])
		text = text[len(m[0]):]
	}

	var entries []Entry
	for _, part := range separatorRe.Split(text, -1) {
		entry, ok := parseEntry(part)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		count := declaredTotal
		if count <= 0 {
			count = bestEffortCount(text)
		}
		return Spec{Entries: []Entry{{Type: domain.QuestionGeneral, Count: count}}}
	}

	spec := Spec{Entries: entries}
	if declaredTotal > 0 && declaredTotal != spec.Total() {
		slog.Warn("exam_format_total_mismatch",
			"declared_total", declaredTotal,
			"parsed_total", spec.Total(),
		)
	}
	return spec
}

// RegionSplit recognizes the region-aware grammar "N pre-midterm,
// M post-midterm". Both counts must be present.
func RegionSplit(text string) (pre, post int, ok bool) {
	preMatch := preRegionRe.FindStringSubmatch(text)
	postMatch := postRegionRe.FindStringSubmatch(text)
	if preMatch == nil || postMatch == nil {
		return 0, 0, false
	}
	pre, _ = strconv.Atoi(preMatch[1])
	post, _ = strconv.Atoi(postMatch[1])
	if pre <= 0 && post <= 0 {
		return 0, 0, false
	}
	return pre, post, true
}

// ScaleTo rescales type counts proportionally to a new total, rounding
// half-up, with any remainder assigned to the first entry. Entries scaled
// to zero are dropped.
func (s Spec) ScaleTo(total int) Spec {
	current := s.Total()
	if total <= 0 || current <= 0 || total == current {
		return s
	}

	scaled := make([]Entry, len(s.Entries))
	sum := 0
	for i, e := range s.Entries {
		e.Count = int(math.Round(float64(e.Count) * float64(total) / float64(current)))
		scaled[i] = e
		sum += e.Count
	}
	scaled[0].Count += total - sum
	if scaled[0].Count < 0 {
		scaled[0].Count = 0
	}

	out := make([]Entry, 0, len(scaled))
	for _, e := range scaled {
		if e.Count > 0 {
			out = append(out, e)
		}
	}
	return Spec{Entries: out}
}

func parseEntry(part string) (Entry, bool) {
	part = strings.TrimSpace(part)
	if part == "" {
		return Entry{}, false
	}

	points := 0
	if m := pointsRe.FindStringSubmatch(part); m != nil {
		points, _ = strconv.Atoi(m[1])
		part = strings.TrimSpace(pointsRe.ReplaceAllString(part, ""))
	}

	m := entryRe.FindStringSubmatch(part)
	if m == nil {
		return Entry{}, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count <= 0 {
		return Entry{}, false
	}

	return Entry{
		Type:              normalizeType(m[2]),
		Count:             count,
		PointsPerQuestion: points,
	}, true
}

func normalizeType(phrase string) domain.QuestionType {
	p := strings.ToLower(strings.TrimSpace(phrase))
	p = strings.TrimSuffix(p, "questions")
	p = strings.TrimSuffix(p, "question")
	p = strings.TrimSpace(p)

	switch {
	case strings.Contains(p, "multiple choice"), strings.Contains(p, "multiple-choice"), p == "mc", p == "mcq", p == "mcqs":
		return domain.QuestionMultipleChoice
	case strings.Contains(p, "short answer"), strings.Contains(p, "short-answer"), p == "sa":
		return domain.QuestionShortAnswer
	case strings.Contains(p, "true/false"), strings.Contains(p, "true false"), strings.Contains(p, "true-false"), p == "tf", p == "t/f":
		return domain.QuestionTrueFalse
	case strings.Contains(p, "essay"), strings.Contains(p, "long answer"):
		return domain.QuestionEssay
	case strings.Contains(p, "fill in the blank"), strings.Contains(p, "fill-in-the-blank"), strings.Contains(p, "fill in blank"):
		return domain.QuestionFillInBlank
	default:
		return domain.QuestionGeneral
	}
}

func bestEffortCount(text string) int {
	if m := anyNumberRe.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return n
		}
	}
	return DefaultQuestionCount
}
