package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dlukin/scout-responder/internal/decision"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestEvaluatorParsesYes(t *testing.T) {
	stub := &stubGenerator{response: `{"decision": "YES", "rationale": "strong go background", "draft": "Hi Anna!", "extracted": {"name": "Anna", "tags": ["go", "grpc"]}}`}
	evaluator := NewEvaluator(stub, 0, zap.NewNop())

	result, err := evaluator.Evaluate(context.Background(), "Anna, staff go engineer", "go, grpc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Decision != decision.Yes {
		t.Fatalf("expected YES, got %s", result.Decision)
	}
	if result.Draft != "Hi Anna!" {
		t.Fatalf("unexpected draft: %q", result.Draft)
	}
	if result.Extracted.Name != "Anna" {
		t.Fatalf("unexpected extracted name: %q", result.Extracted.Name)
	}
	if len(result.Extracted.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", result.Extracted.Tags)
	}
	if result.PromptVersion != PromptVersion {
		t.Fatalf("expected prompt version stamp, got %q", result.PromptVersion)
	}

	if !strings.Contains(stub.lastPrompt, "Anna, staff go engineer") {
		t.Fatalf("profile text missing from prompt")
	}
	if !strings.Contains(stub.lastPrompt, "go, grpc") {
		t.Fatalf("criteria missing from prompt")
	}
}

func TestEvaluatorStripsCodeFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"decision\": \"NO\", \"rationale\": \"wrong stack\", \"draft\": \"ignored\"}\n```"}
	evaluator := NewEvaluator(stub, 0, zap.NewNop())

	result, err := evaluator.Evaluate(context.Background(), "profile", "criteria")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Decision != decision.No {
		t.Fatalf("expected NO, got %s", result.Decision)
	}
	if result.Draft != "" {
		t.Fatalf("NO must clear the draft, got %q", result.Draft)
	}
}

func TestEvaluatorRejectsInvalidDecision(t *testing.T) {
	stub := &stubGenerator{response: `{"decision": "MAYBE"}`}
	evaluator := NewEvaluator(stub, 0, zap.NewNop())

	if _, err := evaluator.Evaluate(context.Background(), "profile", "criteria"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestEvaluatorRejectsUnparseableResponse(t *testing.T) {
	stub := &stubGenerator{response: "I cannot answer that."}
	evaluator := NewEvaluator(stub, 0, zap.NewNop())

	if _, err := evaluator.Evaluate(context.Background(), "profile", "criteria"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEvaluatorPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("transport down")
	stub := &stubGenerator{err: wantErr}
	evaluator := NewEvaluator(stub, 0, zap.NewNop())

	if _, err := evaluator.Evaluate(context.Background(), "profile", "criteria"); !errors.Is(err, wantErr) {
		t.Fatalf("expected generator error to propagate, got %v", err)
	}
}

func TestEvaluatorRequiresProfile(t *testing.T) {
	evaluator := NewEvaluator(&stubGenerator{response: "{}"}, 0, zap.NewNop())
	if _, err := evaluator.Evaluate(context.Background(), "  ", "criteria"); err == nil {
		t.Fatalf("expected error for empty profile")
	}
}
