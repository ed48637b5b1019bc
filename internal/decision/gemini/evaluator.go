// Package gemini implements the decision oracle on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/dlukin/scout-responder/internal/decision"
	"github.com/dlukin/scout-responder/internal/logger"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// PromptVersion stamps every result and log event so that responses remain
// attributable to the prompt revision that produced them.
const PromptVersion = "v2"

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Evaluator turns free-form Gemini replies into validated decision results.
type Evaluator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewEvaluator(generator contentGenerator, maxLogLength int, log *zap.Logger) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Evaluator{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Evaluate builds the screening prompt, queries Gemini and parses the JSON
// reply into a validated result. Transport and parse failures surface as
// errors; this layer never retries.
func (e *Evaluator) Evaluate(ctx context.Context, profile, criteria string) (*decision.Result, error) {
	if strings.TrimSpace(profile) == "" {
		return nil, fmt.Errorf("profile text is required")
	}

	prompt := buildPrompt(profile, criteria)

	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	result, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	result.PromptVersion = PromptVersion
	return result, nil
}

func buildPrompt(profile, criteria string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE}}\n\nCriteria:\n{{CRITERIA}}\n\nJSON Response:"
	}
	if strings.TrimSpace(criteria) == "" {
		criteria = "none"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE}}", profile)
	prompt = strings.ReplaceAll(prompt, "{{CRITERIA}}", criteria)
	return prompt
}

func parseResponse(raw string) (*decision.Result, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	result := &decision.Result{
		Decision:  strings.ToUpper(coerceString(data["decision"])),
		Rationale: coerceString(data["rationale"]),
		Draft:     coerceString(data["draft"]),
		Extracted: coerceExtracted(data["extracted"]),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceExtracted(v any) decision.Extracted {
	extracted := decision.Extracted{}

	data, ok := v.(map[string]any)
	if !ok {
		return extracted
	}

	extracted.Name = coerceString(data["name"])

	switch tags := data["tags"].(type) {
	case []any:
		for _, tag := range tags {
			if s := coerceString(tag); s != "" {
				extracted.Tags = append(extracted.Tags, s)
			}
		}
	case string:
		if s := strings.TrimSpace(tags); s != "" {
			extracted.Tags = append(extracted.Tags, s)
		}
	}

	return extracted
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
