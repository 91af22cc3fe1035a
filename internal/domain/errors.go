package domain

import "errors"

var (
	// ErrExternalUnavailable signals that the grounded completion service failed to
	// submit, poll or return messages for a run.
	ErrExternalUnavailable = errors.New("external source unavailable")
	// ErrConfigurationMissing signals that no grounded completion service is wired.
	ErrConfigurationMissing = errors.New("grounded completion service not configured")
	// ErrPollBudgetExhausted signals that a run did not reach a terminal status in time.
	ErrPollBudgetExhausted = errors.New("poll budget exhausted")
	// ErrPollAbandoned signals that polling stopped after consecutive poll failures.
	ErrPollAbandoned = errors.New("poll abandoned after consecutive failures")
	// ErrKnowledgeLoad signals a failure while loading knowledge records.
	ErrKnowledgeLoad = errors.New("knowledge load failed")
	// ErrInvalidVocabulary signals an unusable stopword/taxonomy configuration.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")
	// ErrPanic wraps a panic recovered at a collaborator boundary.
	ErrPanic = errors.New("collaborator panicked")
)

// KeyPrefix is the default prefix for all keys owned by the service.
const KeyPrefix = "hybridchat:"
