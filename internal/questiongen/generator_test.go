package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/mathquiz/internal/llm"
)

func validQuestionJSON() json.RawMessage {
	return json.RawMessage(`{
		"question": "Factor the quadratic expression: x^2 - 7x + 12",
		"answer": "(x - 3)(x - 4)",
		"explanation": "Find two numbers that multiply to 12 and add to -7: -3 and -4.",
		"skill": "Factoring Quadratics",
		"difficulty": 3
	}`)
}

func testInput() Input {
	return Input{
		Topic:   "Algebra",
		Level:   3,
		Concept: "Factoring Quadratics",
	}
}

func TestGenerate_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected error record: %q", res.Err)
	}
	if res.Question != "Factor the quadratic expression: x^2 - 7x + 12" {
		t.Errorf("unexpected question: %q", res.Question)
	}
	if res.CorrectAnswer != "(x - 3)(x - 4)" {
		t.Errorf("unexpected answer: %q", res.CorrectAnswer)
	}
	if res.Skill != "Factoring Quadratics" {
		t.Errorf("unexpected skill: %q", res.Skill)
	}
}

func TestGenerate_SkillMismatchOverridden(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	in := testInput()
	in.Concept = "Quadratic Equations"
	res, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skill != "Quadratic Equations" {
		t.Errorf("expected skill forced to requested concept, got %q", res.Skill)
	}
}

func TestGenerate_DuplicateRejected(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	in := testInput()
	in.Asked = []string{"Factor the quadratic expression: x^2 - 7x + 12"}
	_, err := gen.Generate(context.Background(), in)
	if !errors.Is(err, ErrDuplicateQuestion) {
		t.Fatalf("expected ErrDuplicateQuestion, got %v", err)
	}
}

func TestGenerate_ProviderFailureReturnsErrorRecord(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	gen := New(mock, DefaultConfig())

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("provider failures must fold into the result, got error: %v", err)
	}
	if !res.Failed() {
		t.Fatal("expected an error record")
	}
	if !strings.Contains(res.Question, "Concept: Factoring Quadratics") {
		t.Errorf("error record should carry context, got %q", res.Question)
	}
	if res.Skill != "Factoring Quadratics" {
		t.Errorf("error record skill should be the requested concept, got %q", res.Skill)
	}
}

func TestGenerate_ThrottledReturnsQuotaRecord(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	gen := New(mock, DefaultConfig())

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Failed() {
		t.Fatal("expected an error record")
	}
	if !strings.Contains(res.Question, "API limit reached") {
		t.Errorf("expected quota message, got %q", res.Question)
	}
}

func TestBuildAskedList_KeepsMostRecent(t *testing.T) {
	asked := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}
	got := buildAskedList(asked, 5)
	if strings.Contains(got, "q1") || strings.Contains(got, "q2") {
		t.Errorf("expected oldest questions dropped, got:\n%s", got)
	}
	if !strings.Contains(got, "q7") {
		t.Errorf("expected newest question kept, got:\n%s", got)
	}
}

func TestBuildAskedList_Empty(t *testing.T) {
	if got := buildAskedList(nil, 5); got != "None" {
		t.Errorf("expected None, got %q", got)
	}
}

func TestFallbackResult(t *testing.T) {
	res := FallbackResult(4)
	if res.Failed() {
		t.Error("fallback must be servable, not an error record")
	}
	if res.Skill != "Fallback Question" {
		t.Errorf("unexpected skill: %q", res.Skill)
	}
	if res.Difficulty != 4 {
		t.Errorf("expected level carried through, got %d", res.Difficulty)
	}
}
