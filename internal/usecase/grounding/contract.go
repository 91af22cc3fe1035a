package grounding

import (
	"context"

	"github.com/kailas-cloud/hybridchat/internal/domain/run"
)

// RoleAssistant marks messages authored by the grounded assistant.
const RoleAssistant = "assistant"

// Submission identifies a submitted run.
type Submission struct {
	RunID    string
	ThreadID string
}

// Message is one thread message with its text content items in order.
type Message struct {
	Role     string
	Contents []string
}

// Service is the grounded completion capability. It is the only network-facing
// collaborator of the delegator.
type Service interface {
	Submit(ctx context.Context, prompt string) (Submission, error)
	Poll(ctx context.Context, runID, threadID string) (run.Status, error)
	// FetchMessages returns thread messages, most recent first.
	FetchMessages(ctx context.Context, threadID string) ([]Message, error)
}

// AgentInfo describes the assistant runs are delegated to.
type AgentInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Model string   `json:"model"`
	Tools []string `json:"tools"`
}
