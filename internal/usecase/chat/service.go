// Package chat answers user queries from internal knowledge, the grounded
// assistant, or both, and emits the reply as a two-event stream.
package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/domain/query"
	"github.com/kailas-cloud/hybridchat/internal/domain/reply"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
	"github.com/kailas-cloud/hybridchat/internal/domain/search/result"
	"github.com/kailas-cloud/hybridchat/internal/logger"
	"github.com/kailas-cloud/hybridchat/internal/metrics"
	"github.com/kailas-cloud/hybridchat/internal/usecase/guard"
)

// Options tune reply composition.
type Options struct {
	// MergeInternal emits the internal fragment even when the grounded assistant
	// answered. Otherwise internal knowledge only reaches the user through the prompt.
	MergeInternal bool
}

// Service is the query entry point. It holds no per-request state.
type Service struct {
	classifier Classifier
	searcher   Searcher
	router     Router
	delegator  Delegator
	opts       Options
}

// New creates a chat service.
func New(classifier Classifier, searcher Searcher, router Router, delegator Delegator, opts Options) *Service {
	return &Service{
		classifier: classifier,
		searcher:   searcher,
		router:     router,
		delegator:  delegator,
		opts:       opts,
	}
}

// HandleQuery answers userText and returns exactly two events: the completed
// message followed by the stream end. It never fails; sessionID is generated when empty.
func (s *Service) HandleQuery(ctx context.Context, userText, sessionID string) (events []reply.Event) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := logger.FromContext(ctx).With(zap.String("session_id", sessionID))
	ctx = logger.ContextWithLogger(ctx, log)

	defer func() {
		if rvr := recover(); rvr != nil {
			log.Error("Query handling panicked", zap.Any("panic", rvr), zap.Stack("stacktrace"))
			metrics.RepliesTotal.WithLabelValues("apology").Inc()
			events = reply.Events(reply.ApologyText)
		}
	}()

	fragments := s.Answer(ctx, userText)
	metrics.RepliesTotal.WithLabelValues(sourcesLabel(fragments)).Inc()

	text := reply.Compose(fragments)
	log.Info("Reply composed", zap.Int("fragments", len(fragments)), zap.Int("chars", len(text)))
	return reply.Events(text)
}

// Answer produces the reply fragments for userText in emission order.
// The internal search always completes before any delegation starts.
func (s *Service) Answer(ctx context.Context, userText string) []reply.Fragment {
	log := logger.FromContext(ctx)

	q := s.classifier.Classify(userText)
	internal := s.searchInternal(ctx, q)
	decision := s.router.Route(q, internal)

	log.Info("Query routed",
		zap.Strings("keywords", q.Keywords()),
		zap.Strings("categories", q.Categories()),
		zap.String("internal_outcome", string(internal.Outcome())),
		zap.Bool("use_internal", decision.UseInternal),
		zap.Bool("use_external", decision.UseExternal),
	)

	var internalFrag *reply.Fragment
	if decision.UseInternal && internal.Usable() {
		internalFrag = &reply.Fragment{Label: reply.LabelInternal, Text: internal.Text()}
	}

	var externalFrag *reply.Fragment
	if decision.UseExternal {
		var supporting *result.Result
		if decision.UseInternal {
			supporting = &internal
		}
		if text, ok := s.delegate(ctx, EnhancedPrompt(userText, supporting)); ok {
			externalFrag = &reply.Fragment{Label: reply.LabelExternal, Text: text}
		}
	}

	var fragments []reply.Fragment
	if internalFrag != nil && (externalFrag == nil || s.opts.MergeInternal) {
		fragments = append(fragments, *internalFrag)
	}
	if externalFrag != nil {
		fragments = append(fragments, *externalFrag)
	}
	return fragments
}

func (s *Service) searchInternal(ctx context.Context, q query.Query) result.Result {
	res, err := guard.Call(func() (result.Result, error) {
		return s.searcher.Search(q), nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Internal knowledge search failed", zap.Error(err))
		return result.Result{}
	}
	return res
}

func (s *Service) delegate(ctx context.Context, prompt string) (string, bool) {
	if s.delegator == nil {
		return "", false
	}
	r, err := guard.Call(func() (*run.Run, error) {
		return s.delegator.Delegate(ctx, prompt), nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Grounded delegation failed", zap.Error(err))
		return "", false
	}
	if r == nil {
		return "", false
	}
	logger.FromContext(ctx).Info("Grounded run finished",
		zap.String("outcome", string(r.Outcome())),
		zap.String("status", string(r.Status())),
	)
	return r.Text()
}

func sourcesLabel(fragments []reply.Fragment) string {
	if len(fragments) == 0 {
		return "fallback"
	}
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		if f.Label == reply.LabelInternal {
			parts[i] = "internal"
		} else {
			parts[i] = "external"
		}
	}
	return strings.Join(parts, "+")
}
