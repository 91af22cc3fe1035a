// Package openai implements the grounded completion service over the
// OpenAI-compatible Assistants API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
	"github.com/kailas-cloud/hybridchat/internal/metrics"
	"github.com/kailas-cloud/hybridchat/internal/usecase/grounding"
)

// messagePageSize bounds how many recent thread messages are fetched.
const messagePageSize = 20

// API operations, used as metric labels.
const (
	opSubmit   = "submit"
	opPoll     = "poll"
	opMessages = "messages"
	opDescribe = "describe"
)

// GroundedService runs prompts on a preconfigured assistant with web search tools.
type GroundedService struct {
	client       *openai.Client
	assistantID  string
	model        string
	instructions string
	logger       *zap.Logger
}

// Config holds the grounded completion provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	AssistantID  string
	Model        string // optional override of the assistant's model
	Instructions string // optional override of the assistant's instructions
	Logger       *zap.Logger
}

// NewGroundedService creates an Assistants API client.
func NewGroundedService(cfg *Config) *GroundedService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GroundedService{
		client:       openai.NewClientWithConfig(clientCfg),
		assistantID:  cfg.AssistantID,
		model:        cfg.Model,
		instructions: cfg.Instructions,
		logger:       logger,
	}
}

// Submit implements grounding.Service: creates a thread holding the prompt and starts a run.
func (s *GroundedService) Submit(ctx context.Context, prompt string) (grounding.Submission, error) {
	req := openai.CreateThreadAndRunRequest{
		RunRequest: openai.RunRequest{
			AssistantID:  s.assistantID,
			Model:        s.model,
			Instructions: s.instructions,
		},
		Thread: openai.ThreadRequest{
			Messages: []openai.ThreadMessage{
				{Role: openai.ThreadMessageRoleUser, Content: prompt},
			},
		},
	}

	start := time.Now()
	resp, err := s.client.CreateThreadAndRun(ctx, req)
	observe(opSubmit, start, err)
	if err != nil {
		return grounding.Submission{}, parseAPIError(err)
	}
	if resp.ID == "" || resp.ThreadID == "" {
		return grounding.Submission{}, fmt.Errorf("run without identifiers: %w", domain.ErrExternalUnavailable)
	}

	s.logger.Debug("Run submitted", zap.String("run_id", resp.ID), zap.String("thread_id", resp.ThreadID))
	return grounding.Submission{RunID: resp.ID, ThreadID: resp.ThreadID}, nil
}

// Poll implements grounding.Service.
func (s *GroundedService) Poll(ctx context.Context, runID, threadID string) (run.Status, error) {
	start := time.Now()
	resp, err := s.client.RetrieveRun(ctx, threadID, runID)
	observe(opPoll, start, err)
	if err != nil {
		return "", parseAPIError(err)
	}

	status, ok := mapStatus(resp.Status)
	if !ok {
		return "", fmt.Errorf("unknown run status %q: %w", resp.Status, domain.ErrExternalUnavailable)
	}
	return status, nil
}

// FetchMessages implements grounding.Service. Messages come back most recent first.
func (s *GroundedService) FetchMessages(ctx context.Context, threadID string) ([]grounding.Message, error) {
	limit := messagePageSize
	order := "desc"

	start := time.Now()
	list, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	observe(opMessages, start, err)
	if err != nil {
		return nil, parseAPIError(err)
	}

	out := make([]grounding.Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg := grounding.Message{Role: m.Role}
		for _, c := range m.Content {
			if c.Text != nil {
				msg.Contents = append(msg.Contents, c.Text.Value)
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

// Describe returns the configured assistant's public details.
func (s *GroundedService) Describe(ctx context.Context) (grounding.AgentInfo, error) {
	start := time.Now()
	a, err := s.client.RetrieveAssistant(ctx, s.assistantID)
	observe(opDescribe, start, err)
	if err != nil {
		return grounding.AgentInfo{}, parseAPIError(err)
	}

	info := grounding.AgentInfo{ID: a.ID, Model: a.Model, Tools: make([]string, 0, len(a.Tools))}
	if a.Name != nil {
		info.Name = *a.Name
	}
	for _, t := range a.Tools {
		info.Tools = append(info.Tools, string(t.Type))
	}
	return info, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *GroundedService) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GroundedAPIRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.GroundedAPIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// mapStatus translates an Assistants API run status to the run lifecycle.
func mapStatus(s openai.RunStatus) (run.Status, bool) {
	switch s {
	case openai.RunStatusQueued:
		return run.Queued, true
	case openai.RunStatusInProgress, openai.RunStatusRequiresAction, openai.RunStatusCancelling:
		return run.Running, true
	case openai.RunStatusCompleted:
		return run.Completed, true
	case openai.RunStatusFailed, openai.RunStatusIncomplete:
		return run.Failed, true
	case openai.RunStatusExpired:
		return run.Expired, true
	case openai.RunStatusCancelled:
		return run.Cancelled, true
	}
	return "", false
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrExternalUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrExternalUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = strings.TrimSpace(string(reqErr.Body))
		}
		return fmt.Errorf("assistants API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("assistants API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("assistants request: %w: %w", wrap, err)
	}
	return fmt.Errorf("assistants request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
