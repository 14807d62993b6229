package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/avolkov/examgen/internal/core/domain"
)

func TestGenerateMockExamMatchesTemplate(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(12, func(i int) string {
		return fmt.Sprintf("topic-%d", i%3)
	})}
	uc := newTestUseCase(retriever, &generatorFake{}, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat: "5 multiple choice, 3 short answer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.RequestedCount != 8 || set.GeneratedCount != 8 {
		t.Fatalf("expected 8/8 questions, got requested=%d generated=%d", set.RequestedCount, set.GeneratedCount)
	}

	for i := 0; i < 5; i++ {
		if set.Questions[i].Type != domain.QuestionMultipleChoice {
			t.Fatalf("slot %d: expected multiple_choice, got %s", i, set.Questions[i].Type)
		}
	}
	for i := 5; i < 8; i++ {
		if set.Questions[i].Type != domain.QuestionShortAnswer {
			t.Fatalf("slot %d: expected short_answer, got %s", i, set.Questions[i].Type)
		}
	}
	for i, q := range set.Questions {
		if q.ExamIndex != i {
			t.Fatalf("expected exam index %d, got %d", i, q.ExamIndex)
		}
		if q.TotalInSet != 8 {
			t.Fatalf("expected total-in-set 8, got %d", q.TotalInSet)
		}
		if q.ExamSetID != set.ExamSetID {
			t.Fatalf("expected shared exam set id")
		}
	}
}

func TestGenerateMockExamCountOverrideScales(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(10, func(i int) string { return "t" })}
	uc := newTestUseCase(retriever, &generatorFake{}, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat:    "5 multiple choice, 5 short answer",
		QuestionCount: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.RequestedCount != 4 || set.GeneratedCount != 4 {
		t.Fatalf("expected scaled 4 questions, got requested=%d generated=%d", set.RequestedCount, set.GeneratedCount)
	}

	byType := map[domain.QuestionType]int{}
	for _, q := range set.Questions {
		byType[q.Type]++
	}
	if byType[domain.QuestionMultipleChoice] != 2 || byType[domain.QuestionShortAnswer] != 2 {
		t.Fatalf("expected 2/2 type split after scaling, got %v", byType)
	}
}

func TestGenerateMockExamDocumentMatchesQuestionList(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(10, func(i int) string { return "t" })}
	uc := newTestUseCase(retriever, &generatorFake{}, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat: "2 multiple choice, 1 essay",
		ExamType:   "final",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Document == "" {
		t.Fatal("expected assembled exam document")
	}
	if !strings.Contains(set.Document, "Practice Final Exam") {
		t.Fatalf("expected final exam title, got:\n%s", set.Document)
	}
	if !strings.Contains(set.Document, fmt.Sprintf("%d questions.", set.GeneratedCount)) {
		t.Fatalf("document header disagrees with question list:\n%s", set.Document)
	}
	for _, q := range set.Questions {
		numbered := fmt.Sprintf("%d. [", q.ExamIndex+1)
		if !strings.Contains(set.Document, numbered) {
			t.Fatalf("document missing question %d:\n%s", q.ExamIndex, set.Document)
		}
		if !strings.Contains(set.Document, strings.TrimSpace(q.QuestionText)) {
			t.Fatalf("document missing question text %q", q.QuestionText)
		}
	}
}

func TestGenerateMockExamPointsInDocument(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(10, func(i int) string { return "t" })}
	uc := newTestUseCase(retriever, &generatorFake{}, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat: "2 essay (10 points each), 5 true/false (2 points each)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(set.Document, "30 points total.") {
		t.Fatalf("expected points total in document:\n%s", set.Document)
	}
}

func TestGenerateMockExamPointsCountSurvivorsOnly(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(10, func(i int) string { return "t" })}
	generator := &generatorFake{failCalls: map[int]error{1: errors.New("model timeout")}}
	uc := newTestUseCase(retriever, generator, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat: "4 essay (10 points each)",
	})
	if err != nil {
		t.Fatalf("partial failure must not fail the set: %v", err)
	}
	if set.GeneratedCount != 3 {
		t.Fatalf("expected 3 survivors, got %d", set.GeneratedCount)
	}
	if !strings.Contains(set.Document, "30 points total.") {
		t.Fatalf("points total should count survivors only:\n%s", set.Document)
	}
	if strings.Contains(set.Document, "40 points total.") {
		t.Fatalf("points total should not count the missing question:\n%s", set.Document)
	}
}

func TestGenerateMockExamPartialFailuresKeepStructure(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(10, func(i int) string { return "t" })}
	generator := &generatorFake{failCalls: map[int]error{2: errors.New("model timeout")}}
	uc := newTestUseCase(retriever, generator, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat: "4 multiple choice",
	})
	if err != nil {
		t.Fatalf("partial failure must not fail the set: %v", err)
	}
	if set.GeneratedCount != 3 || len(set.Failures) != 1 {
		t.Fatalf("expected 3 generated and 1 failure, got %d/%d", set.GeneratedCount, len(set.Failures))
	}
	if set.Failures[0].Type != domain.QuestionMultipleChoice {
		t.Fatalf("failure should keep its slot type, got %s", set.Failures[0].Type)
	}
	// Document numbering still matches the surviving list.
	if !strings.Contains(set.Document, "3 questions.") {
		t.Fatalf("document header should count survivors:\n%s", set.Document)
	}
	if strings.Contains(set.Document, "4. [") {
		t.Fatalf("document should not number a missing question:\n%s", set.Document)
	}
}

func TestGenerateMockExamWeightingRecorded(t *testing.T) {
	retriever := &retrieverFake{candidates: coveragePool(10, func(i int) string { return "t" })}
	uc := newTestUseCase(retriever, &generatorFake{}, nil)

	set, err := uc.GenerateMockExam(context.Background(), domain.GenerationRequest{
		ExamFormat: "3 multiple choice",
		ExamType:   "midterm",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.WeightingUsed.PreMidtermWeight != 1.0 || set.WeightingUsed.PostMidtermWeight != 0.5 {
		t.Fatalf("expected midterm weighting recorded, got %+v", set.WeightingUsed)
	}
	for _, rules := range retriever.rules {
		if rules == nil || rules.PostMidtermWeight != 0.5 {
			t.Fatalf("expected inferred rules in retrieval, got %+v", rules)
		}
	}
}

func TestSlotCandidatesRoundRobin(t *testing.T) {
	candidates := coveragePool(6, func(i int) string { return "t" })

	first := slotCandidates(candidates, 0, 3)
	second := slotCandidates(candidates, 1, 3)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 chunks per slot, got %d and %d", len(first), len(second))
	}
	if first[0].ChunkID == second[0].ChunkID {
		t.Fatalf("sibling slots should lead with different chunks, both got %s", first[0].ChunkID)
	}

	// Fewer candidates than slots: wrap around instead of starving slots.
	short := coveragePool(2, func(i int) string { return "t" })
	third := slotCandidates(short, 2, 3)
	if len(third) != 1 || third[0].ChunkID != short[0].ChunkID {
		t.Fatalf("expected wrap-around assignment, got %+v", third)
	}

	if got := slotCandidates(nil, 0, 3); got != nil {
		t.Fatalf("expected nil for no candidates, got %v", got)
	}
}
