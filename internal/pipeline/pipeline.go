// Package pipeline orchestrates the per-candidate control flow: normalize
// and hash the profile, dedup, gate the AI decision, render the draft,
// enforce quotas and drive the browser, with cooperative cancellation
// checked between stages.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dlukin/scout-responder/internal/browser"
	"github.com/dlukin/scout-responder/internal/decision"
	"github.com/dlukin/scout-responder/internal/logger"
	"github.com/dlukin/scout-responder/internal/message"
	"github.com/dlukin/scout-responder/internal/retry"
	"github.com/dlukin/scout-responder/internal/store"
	"github.com/dlukin/scout-responder/internal/textnorm"

	"go.uber.org/zap"
)

// Outcome is the terminal state of processing one candidate.
type Outcome string

const (
	OutcomeSent         Outcome = "SENT"
	OutcomeDuplicate    Outcome = "SKIPPED_DUP"
	OutcomeQuotaBlocked Outcome = "SKIPPED_QUOTA"
	OutcomeDecisionNo   Outcome = "SKIPPED_DECISION_NO"
	OutcomeStopped      Outcome = "STOPPED"
	OutcomeError        Outcome = "ERROR"
	// OutcomeNoCandidate means the browser could not locate a profile to
	// view; the run loop treats it as exhaustion, not an error.
	OutcomeNoCandidate Outcome = "NO_CANDIDATE"
	// OutcomeDryRun means the draft was prepared but auto-send is off.
	OutcomeDryRun Outcome = "DRY_RUN"
)

// Config carries the per-run pipeline settings.
type Config struct {
	// Template is the outreach message template used when the oracle does
	// not supply a draft of its own.
	Template string
	// DailyLimit and WeeklyLimit bound sends per scope; 0 disables the
	// corresponding check.
	DailyLimit  int
	WeeklyLimit int
	// AutoSend actually sends messages; when false the pipeline stops
	// after preparing the draft.
	AutoSend bool
	// Retries bounds attempts for each flaky browser action.
	Retries int
}

// Deps aggregates the collaborators the pipeline drives.
type Deps struct {
	Browser  browser.Driver
	Oracle   decision.Oracle
	Store    *store.Store
	Quota    *store.Quota
	Stop     *store.StopMarker
	Renderer *message.Renderer
	Events   logger.Emitter
	Logger   *zap.Logger
	// Now stamps first-seen timestamps; defaults to time.Now.
	Now func() time.Time
}

// Pipeline processes candidates one at a time to completion. It is the sole
// writer of the seen-set and quota counters.
type Pipeline struct {
	deps   Deps
	config Config
}

func New(deps Deps, config Config) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if config.Retries < 0 {
		config.Retries = 0
	}

	return &Pipeline{deps: deps, config: config}
}

// ProcessCandidate runs one candidate through the full stage sequence and
// returns its terminal state. Every terminal transition emits exactly one
// event naming the state; hard failures also return the underlying error.
func (p *Pipeline) ProcessCandidate(ctx context.Context, url, criteria string) (Outcome, error) {
	if p.stopped() {
		p.emit("stopped")
		return OutcomeStopped, nil
	}

	if err := p.deps.Browser.Open(ctx, url); err != nil {
		p.emit("error", zap.String("stage", "open"), zap.Error(err))
		return OutcomeError, fmt.Errorf("open: %w", err)
	}

	viewed, err := p.deps.Browser.ClickViewProfile(ctx)
	if err != nil {
		p.emit("error", zap.String("stage", "view_profile"), zap.Error(err))
		return OutcomeError, fmt.Errorf("view profile: %w", err)
	}
	if !viewed {
		p.emit("no_candidate")
		return OutcomeNoCandidate, nil
	}

	profile, err := p.deps.Browser.ReadProfileText(ctx)
	if err != nil {
		p.emit("error", zap.String("stage", "read_profile"), zap.Error(err))
		return OutcomeError, fmt.Errorf("read profile: %w", err)
	}

	hash := textnorm.Hash(profile)

	seen, err := p.deps.Store.IsSeen(ctx, hash)
	if err != nil {
		p.emit("error", zap.String("stage", "dedup"), zap.Error(err))
		return OutcomeError, fmt.Errorf("dedup check: %w", err)
	}
	if seen {
		p.emit("duplicate", zap.String("profile_hash", hash))
		return OutcomeDuplicate, nil
	}

	// Second checkpoint, right before the costly oracle call.
	if p.stopped() {
		p.emit("stopped", zap.String("profile_hash", hash))
		return OutcomeStopped, nil
	}

	result, err := p.deps.Oracle.Evaluate(ctx, profile, criteria)
	if err != nil {
		p.emit("error", zap.String("stage", "decision"), zap.String("profile_hash", hash), zap.Error(err))
		return OutcomeError, fmt.Errorf("decision: %w", err)
	}

	if result.Decision == decision.No {
		p.emit("decision_no",
			zap.String("profile_hash", hash),
			zap.String("rationale", result.Rationale),
		)
		return OutcomeDecisionNo, nil
	}

	draft := result.Draft
	if draft == "" {
		draft = p.deps.Renderer.Render(p.config.Template, result)
	} else {
		draft = message.Clamp(draft)
	}

	if !p.config.AutoSend {
		p.emit("dry_run",
			zap.String("profile_hash", hash),
			zap.String("draft", draft),
		)
		return OutcomeDryRun, nil
	}

	return p.send(ctx, hash, draft)
}

// send enforces quotas and drives the browser actions, marking the
// candidate seen only after a verified send.
func (p *Pipeline) send(ctx context.Context, hash, draft string) (Outcome, error) {
	if p.config.DailyLimit > 0 {
		ok, err := p.deps.Quota.AllowDaily(ctx, p.config.DailyLimit)
		if err != nil {
			p.emit("error", zap.String("stage", "quota"), zap.Error(err))
			return OutcomeError, fmt.Errorf("daily quota: %w", err)
		}
		if !ok {
			p.emit("quota_block", zap.String("scope", "daily"), zap.String("profile_hash", hash))
			return OutcomeQuotaBlocked, nil
		}
	}

	if p.config.WeeklyLimit > 0 {
		ok, err := p.deps.Quota.AllowWeekly(ctx, p.config.WeeklyLimit)
		if err != nil {
			p.emit("error", zap.String("stage", "quota"), zap.Error(err))
			return OutcomeError, fmt.Errorf("weekly quota: %w", err)
		}
		if !ok {
			p.emit("quota_block", zap.String("scope", "weekly"), zap.String("profile_hash", hash))
			return OutcomeQuotaBlocked, nil
		}
	}

	actions := []struct {
		name string
		run  retry.Action
	}{
		{"focus_message_box", func() (bool, error) { return p.deps.Browser.FocusMessageBox(ctx) }},
		{"fill_message", func() (bool, error) { return p.deps.Browser.FillMessage(ctx, draft) }},
		{"send", func() (bool, error) { return p.deps.Browser.Send(ctx) }},
		{"verify_sent", func() (bool, error) { return p.deps.Browser.VerifySent(ctx) }},
	}

	for _, action := range actions {
		ok, err := retry.Do(ctx, p.config.Retries, action.run)
		if err != nil {
			p.emit("send_failed", zap.String("stage", action.name), zap.String("profile_hash", hash), zap.Error(err))
			return OutcomeError, fmt.Errorf("%s: %w", action.name, err)
		}
		if !ok {
			// An unverified send is deliberately not marked seen: the
			// candidate stays eligible for a future run at the cost of a
			// possible duplicate attempt.
			p.emit("send_failed", zap.String("stage", action.name), zap.String("profile_hash", hash))
			return OutcomeError, fmt.Errorf("%s failed after %d attempts", action.name, p.config.Retries+1)
		}
	}

	if err := p.deps.Store.MarkSeen(ctx, hash, p.deps.Now().Unix()); err != nil {
		// The message is out; a failed mark is logged but the send stands.
		p.deps.Logger.Warn("marking sent candidate as seen failed",
			zap.String("profile_hash", hash),
			zap.Error(err),
		)
	}

	p.emit("sent", zap.String("profile_hash", hash))
	return OutcomeSent, nil
}

// Run processes candidates sequentially until the stop marker is observed,
// no further profile can be located, or maxCandidates is reached. Hard
// errors terminate the run; quota denial stops it early since later
// candidates would be denied as well.
func (p *Pipeline) Run(ctx context.Context, url, criteria string, maxCandidates int) error {
	for i := 0; i < maxCandidates; i++ {
		if p.stopped() {
			p.emit("stopped")
			return nil
		}

		outcome, err := p.ProcessCandidate(ctx, url, criteria)
		if err != nil {
			return err
		}

		p.deps.Logger.Info("candidate processed",
			zap.Int("index", i),
			zap.String("outcome", string(outcome)),
		)

		switch outcome {
		case OutcomeStopped, OutcomeNoCandidate, OutcomeQuotaBlocked:
			return nil
		}

		if err := p.deps.Browser.Skip(ctx); err != nil {
			return fmt.Errorf("skip to next candidate: %w", err)
		}
	}

	return nil
}

// stopped polls the cooperative cancellation flag. The marker itself
// degrades to false on transient errors, so this never aborts the run.
func (p *Pipeline) stopped() bool {
	return p.deps.Stop.IsSet()
}

func (p *Pipeline) emit(event string, fields ...zap.Field) {
	if p.deps.Events == nil {
		return
	}
	p.deps.Events.Emit(event, fields...)
}
