package decision

import (
	"context"
	"fmt"

	"github.com/dlukin/scout-responder/internal/scoring"

	"go.uber.org/zap"
)

// GateConfig holds the deterministic pre-filter settings.
type GateConfig struct {
	// Threshold blocks candidates scoring strictly below it.
	Threshold float64
	// RedFlagFloor blocks candidates scoring at or below it, regardless of
	// threshold. A red-flag term with a large negative weight lands here.
	RedFlagFloor float64
}

// Gate wraps an Oracle behind a score-based pre-filter. A below-threshold or
// red-flagged candidate never reaches the oracle, so the oracle can never
// turn such a candidate into a YES.
type Gate struct {
	oracle Oracle
	scorer scoring.Scorer
	config GateConfig
	logger *zap.Logger
}

func NewGate(oracle Oracle, scorer scoring.Scorer, config GateConfig, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gate{
		oracle: oracle,
		scorer: scorer,
		config: config,
		logger: logger,
	}
}

// Evaluate runs the red-flag gate, then the threshold gate, then delegates
// to the oracle. The comparison directions are load-bearing: the floor is
// inclusive (score <= floor blocks) and the threshold is strict
// (score < threshold blocks).
func (g *Gate) Evaluate(ctx context.Context, profile, criteria string) (*Result, error) {
	score := g.scorer.Score(profile, criteria)

	if score.Value <= g.config.RedFlagFloor {
		g.logger.Info("candidate blocked by red flag",
			zap.Float64("score", score.Value),
			zap.Float64("floor", g.config.RedFlagFloor),
			zap.Strings("reasons", score.Reasons),
		)
		return &Result{Decision: No, Rationale: "red flag"}, nil
	}

	if score.Value < g.config.Threshold {
		g.logger.Info("candidate below score threshold",
			zap.Float64("score", score.Value),
			zap.Float64("threshold", g.config.Threshold),
			zap.Strings("reasons", score.Reasons),
		)
		return &Result{Decision: No, Rationale: "below threshold"}, nil
	}

	result, err := g.oracle.Evaluate(ctx, profile, criteria)
	if err != nil {
		return nil, err
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("oracle returned malformed result: %w", err)
	}

	return result, nil
}
