package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/hybridchat/internal/domain/reply"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
	"github.com/kailas-cloud/hybridchat/internal/domain/search/result"
	"github.com/kailas-cloud/hybridchat/internal/usecase/grounding"
	"github.com/kailas-cloud/hybridchat/internal/usecase/knowledge"
)

func assertTwoEvents(t *testing.T, events []reply.Event) string {
	t.Helper()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != reply.EventCompletedMessage || events[1].Type != reply.EventStreamEnd {
		t.Fatalf("unexpected event types: %q, %q", events[0].Type, events[1].Type)
	}
	if events[0].Content == "" {
		t.Fatal("completed message must not be empty")
	}
	return events[0].Content
}

func TestHandleQuery_Greeting(t *testing.T) {
	svc := &mockGrounded{status: run.Completed, answer: "should not be asked"}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "hello", ""))

	want := reply.LabelInternal + "\n" + knowledge.GreetingText
	if text != want {
		t.Errorf("content = %q, want %q", text, want)
	}
	if len(svc.prompts) != 0 {
		t.Error("greeting must not be delegated")
	}
}

func TestHandleQuery_CategoryQueryStaysInternal(t *testing.T) {
	svc := &mockGrounded{status: run.Completed, answer: "web"}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "what tents do you have", "s1"))

	if !strings.HasPrefix(text, reply.LabelInternal+"\nProduct - 1: ") {
		t.Errorf("unexpected content %q", text)
	}
	if strings.Contains(text, "Product - 2") {
		t.Error("backpack must not match a tent query")
	}
	if len(svc.prompts) != 0 {
		t.Error("usable internal result must not be delegated")
	}
}

func TestHandleQuery_RealtimeWithoutAssistant(t *testing.T) {
	s := newTestService(t, nil, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "what's the weather today", ""))

	if text != reply.FallbackText {
		t.Errorf("content = %q, want fallback", text)
	}
}

func TestHandleQuery_RealtimeWithAssistant(t *testing.T) {
	svc := &mockGrounded{status: run.Completed, answer: "Sunny and 24C."}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "what's the weather today", ""))

	if text != reply.LabelExternal+"\nSunny and 24C." {
		t.Errorf("content = %q", text)
	}
	if len(svc.prompts) != 1 || !strings.Contains(svc.prompts[0], "web search tool") {
		t.Errorf("expected web search prompt, got %v", svc.prompts)
	}
}

func TestHandleQuery_QueuedRunFallsBackToInternal(t *testing.T) {
	svc := &mockGrounded{status: run.Queued}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "latest tents", ""))

	if !strings.HasPrefix(text, reply.LabelInternal+"\nProduct - 1: ") {
		t.Errorf("content = %q", text)
	}
	if svc.polls < 1 || svc.polls > 15 {
		t.Errorf("polls = %d, want 1..15", svc.polls)
	}
}

func TestHandleQuery_QueuedRunWithoutInternal(t *testing.T) {
	svc := &mockGrounded{status: run.Queued}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "weather forecast", ""))

	if text != reply.FallbackText {
		t.Errorf("content = %q, want fallback", text)
	}
}

func TestHandleQuery_StuckRunDoesNotStallOthers(t *testing.T) {
	cfg := grounding.Config{PollInterval: 5 * time.Millisecond, PollBudget: 500 * time.Millisecond}
	stuckSubmitted := make(chan struct{})
	svc := &mockGrounded{
		answer: "Sunny and 24C.",
		submitFn: func(prompt string) (grounding.Submission, error) {
			if strings.Contains(prompt, "forecast") {
				close(stuckSubmitted)
				return grounding.Submission{RunID: "stuck", ThreadID: "thread_stuck"}, nil
			}
			return grounding.Submission{RunID: "quick", ThreadID: "thread_quick"}, nil
		},
		statusByRun: map[string]run.Status{"stuck": run.Queued, "quick": run.Completed},
	}
	e := newEngine(t)
	s := New(e.classifier, e.matcher, e.router, grounding.New(svc, cfg), Options{})

	stuckDone := make(chan []reply.Event, 1)
	go func() {
		stuckDone <- s.HandleQuery(context.Background(), "weather forecast", "stuck")
	}()
	<-stuckSubmitted

	start := time.Now()
	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "what's the weather today", "quick"))
	elapsed := time.Since(start)

	if text != reply.LabelExternal+"\nSunny and 24C." {
		t.Errorf("content = %q", text)
	}
	if elapsed > cfg.PollBudget/2 {
		t.Errorf("quick query took %v while another run was polling", elapsed)
	}
	select {
	case <-stuckDone:
		t.Error("stuck run returned before its budget")
	default:
	}

	if stuck := assertTwoEvents(t, <-stuckDone); stuck != reply.FallbackText {
		t.Errorf("stuck content = %q, want fallback", stuck)
	}
}

func TestHandleQuery_InternalContextInPrompt(t *testing.T) {
	svc := &mockGrounded{status: run.Completed, answer: "Prices vary."}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "current price of tents", ""))

	if text != reply.LabelExternal+"\nPrices vary." {
		t.Errorf("content = %q", text)
	}
	if len(svc.prompts) != 1 {
		t.Fatalf("prompts = %v", svc.prompts)
	}
	prompt := svc.prompts[0]
	if !strings.Contains(prompt, "I have relevant internal outdoor gear information:") ||
		!strings.Contains(prompt, "Product - 1: ") {
		t.Errorf("prompt lacks internal context: %q", prompt)
	}
}

func TestHandleQuery_MergeInternal(t *testing.T) {
	svc := &mockGrounded{status: run.Completed, answer: "Prices vary."}
	s := newTestService(t, svc, Options{MergeInternal: true})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "current price of tents", ""))

	parts := strings.Split(text, "\n\n"+reply.LabelExternal+"\n")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], reply.LabelInternal) || parts[1] != "Prices vary." {
		t.Errorf("expected internal then external fragment, got %q", text)
	}
}

func TestHandleQuery_MissDelegates(t *testing.T) {
	svc := &mockGrounded{status: run.Completed, answer: "Kayaks are elsewhere."}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "kayak paddles", ""))

	if text != reply.LabelExternal+"\nKayaks are elsewhere." {
		t.Errorf("content = %q", text)
	}
	if strings.Contains(svc.prompts[0], "internal outdoor gear information") {
		t.Error("miss guidance must not be sent as internal context")
	}
}

func TestHandleQuery_SubmitFailure(t *testing.T) {
	svc := &mockGrounded{submitFn: func(string) (grounding.Submission, error) {
		return grounding.Submission{}, context.DeadlineExceeded
	}}
	s := newTestService(t, svc, Options{})

	text := assertTwoEvents(t, s.HandleQuery(context.Background(), "kayak paddles", ""))

	if text != reply.FallbackText {
		t.Errorf("content = %q, want fallback", text)
	}
}

func TestHandleQuery_CollaboratorPanics(t *testing.T) {
	e := newEngine(t)

	t.Run("searcher", func(t *testing.T) {
		s := New(e.classifier, panicSearcher{}, e.router, grounding.New(nil, fastPolls), Options{})
		text := assertTwoEvents(t, s.HandleQuery(context.Background(), "tents", ""))
		if text != reply.FallbackText {
			t.Errorf("content = %q, want fallback", text)
		}
	})

	t.Run("delegator", func(t *testing.T) {
		s := New(e.classifier, e.matcher, e.router, panicDelegator{}, Options{})
		text := assertTwoEvents(t, s.HandleQuery(context.Background(), "latest tents", ""))
		if !strings.HasPrefix(text, reply.LabelInternal) {
			t.Errorf("content = %q, want internal fragment", text)
		}
	})

	t.Run("classifier", func(t *testing.T) {
		s := New(panicClassifier{}, e.matcher, e.router, panicDelegator{}, Options{})
		text := assertTwoEvents(t, s.HandleQuery(context.Background(), "tents", ""))
		if text != reply.ApologyText {
			t.Errorf("content = %q, want apology", text)
		}
	})
}

func TestHandleQuery_Deterministic(t *testing.T) {
	s := newTestService(t, nil, Options{})
	first := s.HandleQuery(context.Background(), "warranty on tents", "a")
	second := s.HandleQuery(context.Background(), "warranty on tents", "b")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replies differ (-first +second):\n%s", diff)
	}
}

func TestEnhancedPrompt(t *testing.T) {
	matched := result.NewMatched([]result.Entry{result.NewEntry(result.SourcePolicy, "returns", "30 days.", 1)}, 1)
	prompt := EnhancedPrompt("can I return boots?", &matched)
	if !strings.HasPrefix(prompt, "User question: can I return boots?\n\n") {
		t.Errorf("prompt = %q", prompt)
	}
	if !strings.Contains(prompt, "Policy - returns: 30 days.") {
		t.Error("matched context missing")
	}

	prompted := result.NewSentinel(result.Prompt, knowledge.GreetingText, 0)
	if strings.Contains(EnhancedPrompt("hi", &prompted), knowledge.GreetingText) {
		t.Error("prompt sentinel must not be used as context")
	}
	if !strings.Contains(EnhancedPrompt("weather?", nil), "IMPORTANT: Use the web search tool") {
		t.Error("web search instruction missing")
	}
}

func TestSourcesLabel(t *testing.T) {
	tests := []struct {
		fragments []reply.Fragment
		want      string
	}{
		{nil, "fallback"},
		{[]reply.Fragment{{Label: reply.LabelInternal}}, "internal"},
		{[]reply.Fragment{{Label: reply.LabelInternal}, {Label: reply.LabelExternal}}, "internal+external"},
	}
	for _, tc := range tests {
		if got := sourcesLabel(tc.fragments); got != tc.want {
			t.Errorf("sourcesLabel() = %q, want %q", got, tc.want)
		}
	}
}
