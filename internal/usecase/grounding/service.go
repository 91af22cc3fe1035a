// Package grounding delegates prompts to the grounded completion service and
// drives each run to a terminal status within a fixed poll budget.
package grounding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
	"github.com/kailas-cloud/hybridchat/internal/logger"
	"github.com/kailas-cloud/hybridchat/internal/metrics"
	"github.com/kailas-cloud/hybridchat/internal/usecase/guard"
)

// Default poll timing.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollBudget   = 30 * time.Second
)

// maxConsecutivePollErrors is the number of back-to-back poll failures that ends polling.
const maxConsecutivePollErrors = 2

var errNotTerminal = errors.New("run not terminal")

// Config controls poll timing.
type Config struct {
	PollInterval time.Duration
	PollBudget   time.Duration
}

// maxPolls returns how many polls fit in the budget. The first poll is immediate.
func (c Config) maxPolls() uint64 {
	n := c.PollBudget / c.PollInterval
	if n < 1 {
		return 1
	}
	return uint64(n)
}

// deadline bounds a whole delegation: the poll budget plus one interval shared by
// submit and message fetch.
func (c Config) deadline() time.Duration {
	return c.PollBudget + c.PollInterval
}

// Delegator runs the submit, poll and extract state machine.
// A nil Service is treated as an unconfigured capability.
type Delegator struct {
	svc Service
	cfg Config
}

// New creates a delegator. Zero or invalid timings fall back to the defaults.
func New(svc Service, cfg Config) *Delegator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollBudget <= 0 {
		cfg.PollBudget = DefaultPollBudget
	}
	return &Delegator{svc: svc, cfg: cfg}
}

// Configured reports whether a grounded completion service is wired.
func (d *Delegator) Configured() bool { return d.svc != nil }

// Delegate submits prompt and polls the run until it is terminal or the budget is spent.
// Every service call shares one deadline, so a slow or hanging service cannot hold
// the caller past the budget. It never returns an error: every failure yields a run
// without extracted text.
func (d *Delegator) Delegate(ctx context.Context, prompt string) *run.Run {
	log := logger.FromContext(ctx)

	if d.svc == nil {
		log.Debug("Grounded completion not configured", zap.Error(domain.ErrConfigurationMissing))
		return d.finish(run.NewUnsubmitted(run.OutcomeUnconfigured), time.Now())
	}

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, d.cfg.deadline())
	defer cancel()

	sub, err := guard.Call(func() (Submission, error) { return d.svc.Submit(runCtx, prompt) })
	if err != nil {
		log.Warn("Submit run failed", zap.Error(fmt.Errorf("%w: %w", domain.ErrExternalUnavailable, err)))
		return d.finish(run.NewUnsubmitted(run.OutcomeSubmitFailed), start)
	}

	r := run.New(sub.RunID, sub.ThreadID, start)
	log = log.With(zap.String("run_id", sub.RunID), zap.String("thread_id", sub.ThreadID))
	log.Debug("Run submitted")

	if outcome, ok := d.poll(ctx, runCtx, r, log); !ok {
		r.Finish(outcome)
		return d.finish(r, start)
	}

	if r.Status() != run.Completed {
		log.Info("Run ended without completion", zap.String("status", string(r.Status())))
		r.Finish(run.OutcomeTerminal)
		return d.finish(r, start)
	}

	msgs, err := guard.Call(func() ([]Message, error) { return d.svc.FetchMessages(runCtx, sub.ThreadID) })
	if err != nil {
		log.Warn("Fetch messages failed", zap.Error(fmt.Errorf("%w: %w", domain.ErrExternalUnavailable, err)))
		r.Finish(run.OutcomeFetchFailed)
		return d.finish(r, start)
	}

	if text, ok := Extract(msgs); ok {
		r.SetText(text)
		r.Finish(run.OutcomeExtracted)
	} else {
		log.Info("Run completed without assistant content", zap.Int("messages", len(msgs)))
		r.Finish(run.OutcomeNoContent)
	}
	return d.finish(r, start)
}

// poll drives r forward until a terminal status. It returns false with the
// soft-failure outcome when polling stopped early. callerCtx is only consulted to
// tell a closed caller apart from a spent budget.
func (d *Delegator) poll(callerCtx, runCtx context.Context, r *run.Run, log *zap.Logger) (run.Outcome, bool) {
	pollCtx, cancel := context.WithTimeout(runCtx, d.cfg.PollBudget)
	defer cancel()

	backoff := retry.WithMaxDuration(d.cfg.PollBudget,
		retry.WithMaxRetries(d.cfg.maxPolls()-1, retry.NewConstant(d.cfg.PollInterval)))

	consecutiveErrs := 0
	err := retry.Do(pollCtx, backoff, func(ctx context.Context) error {
		status, err := guard.Call(func() (run.Status, error) {
			return d.svc.Poll(ctx, r.RunID(), r.ThreadID())
		})
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			metrics.ExternalPollsTotal.WithLabelValues("error").Inc()
			consecutiveErrs++
			if consecutiveErrs >= maxConsecutivePollErrors {
				return fmt.Errorf("%w: %w", domain.ErrPollAbandoned, err)
			}
			log.Warn("Poll failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		consecutiveErrs = 0
		metrics.ExternalPollsTotal.WithLabelValues(string(status)).Inc()

		if r.Advance(status) {
			log.Debug("Run status advanced", zap.String("status", string(r.Status())))
		}
		if r.Status().IsTerminal() {
			return nil
		}
		return retry.RetryableError(errNotTerminal)
	})

	switch {
	case err == nil:
		return "", true
	case callerCtx.Err() != nil:
		log.Warn("Polling interrupted", zap.Error(callerCtx.Err()))
		return run.OutcomeContextClosed, false
	case errors.Is(err, domain.ErrPollAbandoned):
		log.Warn("Polling abandoned", zap.String("status", string(r.Status())), zap.Error(err))
		return run.OutcomePollFailed, false
	default:
		log.Warn("Run did not finish within poll budget",
			zap.String("status", string(r.Status())),
			zap.Duration("budget", d.cfg.PollBudget),
			zap.Error(domain.ErrPollBudgetExhausted),
		)
		return run.OutcomeTimeout, false
	}
}

func (d *Delegator) finish(r *run.Run, start time.Time) *run.Run {
	metrics.ExternalRunsTotal.WithLabelValues(string(r.Outcome())).Inc()
	if r.RunID() != "" {
		metrics.ExternalRunDuration.WithLabelValues(string(r.Outcome())).Observe(time.Since(start).Seconds())
	}
	return r
}

// Extract returns the first non-empty assistant text, walking messages and their
// content items in order. An empty list yields no content.
func Extract(msgs []Message) (string, bool) {
	for _, m := range msgs {
		if m.Role != RoleAssistant {
			continue
		}
		for _, c := range m.Contents {
			if text := strings.TrimSpace(c); text != "" {
				return text, true
			}
		}
	}
	return "", false
}
