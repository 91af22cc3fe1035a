package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
	"github.com/kailas-cloud/hybridchat/internal/domain/reply"
	"github.com/kailas-cloud/hybridchat/internal/logger"
	"github.com/kailas-cloud/hybridchat/internal/usecase/grounding"
	healthuc "github.com/kailas-cloud/hybridchat/internal/usecase/health"
)

// maxChatBodyBytes bounds the POST /chat request body.
const maxChatBodyBytes = 64 << 10

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message      string         `json:"message"`
	SessionState map[string]any `json:"session_state,omitempty"`
}

// sessionID picks the caller's conversation id from session_state.
func (r ChatRequest) sessionID() string {
	for _, k := range []string{"session_id", "thread_id"} {
		if v, ok := r.SessionState[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Chatter answers a query as a stream of events.
type Chatter interface {
	HandleQuery(ctx context.Context, userText, sessionID string) []reply.Event
}

// HealthReporter reports service health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// AgentDescriber returns the grounded assistant's details.
type AgentDescriber interface {
	Describe(ctx context.Context) (grounding.AgentInfo, error)
}

// Server serves the chat HTTP API.
type Server struct {
	chat      Chatter
	health    HealthReporter
	snapshot  *knowledge.Snapshot // nil when no knowledge source is configured
	agent     AgentDescriber      // nil when no grounded service is configured
	logger    *zap.Logger
	metricsFn http.Handler
}

// NewServer creates an HTTP API server. snapshot and agent can be nil.
func NewServer(
	chat Chatter,
	health HealthReporter,
	snapshot *knowledge.Snapshot,
	agent AgentDescriber,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:      chat,
		health:    health,
		snapshot:  snapshot,
		agent:     agent,
		logger:    logger,
		metricsFn: promhttp.Handler(),
	}
}

// Chat handles POST /chat. The reply is streamed as Server-Sent Events.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "message is required")
		return
	}

	log := logger.FromContext(r.Context())
	log.Info("Chat request received", zap.Int("message_length", len(req.Message)))

	events := s.chat.HandleQuery(r.Context(), req.Message, req.sessionID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for _, ev := range events {
		if err := writeEvent(w, ev); err != nil {
			log.Warn("Failed to write stream event", zap.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// writeEvent writes one SSE frame: "data: <json>\n\n".
func writeEvent(w http.ResponseWriter, ev reply.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status       string               `json:"status"`
	Capabilities capabilitiesResponse `json:"capabilities"`
	Checks       map[string]string    `json:"checks,omitempty"`
}

type capabilitiesResponse struct {
	KnowledgeSource    bool `json:"knowledge_source"`
	GroundedCompletion bool `json:"grounded_completion"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Capabilities: capabilitiesResponse{
			KnowledgeSource:    report.Capabilities.KnowledgeSource,
			GroundedCompletion: report.Capabilities.GroundedCompletion,
		},
		Checks: checks,
	})
}

// Agent handles GET /agent.
func (s *Server) Agent(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "grounded assistant not configured")
		return
	}
	info, err := s.agent.Describe(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Warn("Failed to describe assistant", zap.Error(err))
		writeError(w, http.StatusBadGateway, CodeUnavailable, "grounded assistant unavailable")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// knowledgeResponse is the GET /internal-knowledge body.
type knowledgeResponse struct {
	Status  string         `json:"status"`
	Records map[string]int `json:"records"`
}

// InternalKnowledge handles GET /internal-knowledge.
func (s *Server) InternalKnowledge(w http.ResponseWriter, _ *http.Request) {
	if s.snapshot == nil {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "internal knowledge not configured")
		return
	}
	counts := make(map[string]int, 3)
	for k, n := range s.snapshot.Counts() {
		counts[string(k)] = n
	}
	writeJSON(w, http.StatusOK, knowledgeResponse{Status: "available", Records: counts})
}

// ChatHistory handles GET /chat/history. History is not persisted.
func (s *Server) ChatHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []any{})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metricsFn.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
