package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldPromptVersion is the structured log field key for the prompt revision.
	FieldPromptVersion = "prompt_ver"
	// FieldRubricVersion is the structured log field key for the scoring rubric revision.
	FieldRubricVersion = "rubric_ver"
	// FieldCriteriaPreset is the structured log field key for the active criteria preset name.
	FieldCriteriaPreset = "criteria_preset"
)

// Emitter is the append-only structured event sink the pipeline reports
// through. Implementations never fail on well-formed input.
type Emitter interface {
	Emit(event string, fields ...zap.Field)
}

// ZapEmitter writes events through a zap logger, stamping every event with
// the prompt version, rubric version and criteria preset of the run.
type ZapEmitter struct {
	logger *zap.Logger
}

// NewZapEmitter builds an emitter with the run-scoped stamp fields attached.
// Empty stamp values are omitted to keep events compact.
func NewZapEmitter(log *zap.Logger, promptVer, rubricVer, criteriaPreset string) *ZapEmitter {
	if log == nil {
		log = zap.NewNop()
	}

	stamps := make([]zap.Field, 0, 3)
	for _, stamp := range []struct {
		key   string
		value string
	}{
		{FieldPromptVersion, promptVer},
		{FieldRubricVersion, rubricVer},
		{FieldCriteriaPreset, criteriaPreset},
	} {
		if value := strings.TrimSpace(stamp.value); value != "" {
			stamps = append(stamps, zap.String(stamp.key, value))
		}
	}

	return &ZapEmitter{logger: log.With(stamps...)}
}

// Emit writes one event line. Events are append-only and never mutated.
func (e *ZapEmitter) Emit(event string, fields ...zap.Field) {
	e.logger.Info(event, fields...)
}
