// Package run models a delegated external run and its status lifecycle.
package run

import "time"

// Status is the lifecycle state of an external run.
type Status string

// Run statuses.
const (
	Queued    Status = "queued"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
	Expired   Status = "expired"
	Cancelled Status = "cancelled"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	switch s {
	case Queued, Running, Completed, Failed, Expired, Cancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed || s == Expired || s == Cancelled
}

func (s Status) rank() int {
	switch s {
	case Queued:
		return 0
	case Running:
		return 1
	default:
		return 2
	}
}

// Outcome explains how a delegation ended, used for logs and metrics.
type Outcome string

// Delegation outcomes.
const (
	OutcomeExtracted     Outcome = "extracted"
	OutcomeNoContent     Outcome = "no_content"
	OutcomeTerminal      Outcome = "terminal_without_completion"
	OutcomeTimeout       Outcome = "timeout"
	OutcomePollFailed    Outcome = "poll_failed"
	OutcomeSubmitFailed  Outcome = "submit_failed"
	OutcomeFetchFailed   Outcome = "fetch_failed"
	OutcomeUnconfigured  Outcome = "unconfigured"
	OutcomeCached        Outcome = "cached"
	OutcomeContextClosed Outcome = "context_closed"
)

// Run is one delegation to the grounded completion service.
type Run struct {
	runID         string
	threadID      string
	status        Status
	submittedAt   time.Time
	extractedText string
	extracted     bool
	outcome       Outcome
}

// New creates a submitted run in the Queued state.
func New(runID, threadID string, submittedAt time.Time) *Run {
	return &Run{runID: runID, threadID: threadID, status: Queued, submittedAt: submittedAt}
}

// NewUnsubmitted creates a run that never reached the service.
func NewUnsubmitted(outcome Outcome) *Run {
	return &Run{status: Queued, outcome: outcome}
}

// NewCached creates a completed run whose text came from a cache.
func NewCached(text string) *Run {
	return &Run{status: Completed, extractedText: text, extracted: true, outcome: OutcomeCached}
}

// RunID returns the service-assigned run identifier.
func (r *Run) RunID() string { return r.runID }

// ThreadID returns the service-assigned thread identifier.
func (r *Run) ThreadID() string { return r.threadID }

// Status returns the last known status.
func (r *Run) Status() Status { return r.status }

// SubmittedAt returns the submission time (zero if never submitted).
func (r *Run) SubmittedAt() time.Time { return r.submittedAt }

// Outcome returns how the delegation ended.
func (r *Run) Outcome() Outcome { return r.outcome }

// Text returns the extracted text and whether any was extracted.
func (r *Run) Text() (string, bool) { return r.extractedText, r.extracted }

// Advance moves the run to next if that is a forward transition.
// Regressions, unknown statuses and changes after a terminal status are ignored.
// Returns true if the status changed.
func (r *Run) Advance(next Status) bool {
	if !next.IsValid() || r.status.IsTerminal() {
		return false
	}
	if next.rank() <= r.status.rank() {
		return false
	}
	r.status = next
	return true
}

// SetText records the extracted result. Only a Completed run can carry text.
func (r *Run) SetText(text string) bool {
	if r.status != Completed || text == "" {
		return false
	}
	r.extractedText = text
	r.extracted = true
	return true
}

// Finish records the delegation outcome.
func (r *Run) Finish(o Outcome) { r.outcome = o }
