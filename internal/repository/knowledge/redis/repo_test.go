package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
)

func fixture() []knowledge.Record {
	return []knowledge.Record{
		knowledge.Customer{ID: "2", Name: "Jane Doe", Balance: "1500.25"},
		knowledge.Customer{ID: "1", Name: "John Smith"},
		knowledge.ParseProduct("1", "# Item\nTrailMaster X4 Tent\n\n## Category\nTents\n"),
		knowledge.Policy{Name: "warranty", Text: "One year."},
		knowledge.Policy{Name: "returns", Text: "Thirty days."},
	}
}

func TestReplaceThenLoad(t *testing.T) {
	s := newMemStore()
	repo := New(s, "test:")

	n, err := repo.Replace(context.Background(), fixture())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 written, got %d", n)
	}
	if _, ok := s.hashes["test:product:1"]; !ok {
		t.Error("expected product hash under test:product:1")
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []knowledge.Record{
		knowledge.Customer{ID: "1", Name: "John Smith"},
		knowledge.Customer{ID: "2", Name: "Jane Doe", Balance: "1500.25"},
		knowledge.ParseProduct("1", "# Item\nTrailMaster X4 Tent\n\n## Category\nTents\n"),
		knowledge.Policy{Name: "returns", Text: "Thirty days."},
		knowledge.Policy{Name: "warranty", Text: "One year."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReplace_RemovesStale(t *testing.T) {
	s := newMemStore()
	s.hashes["test:product:old"] = map[string]string{"id": "old", "raw": "Old"}
	s.hashes["other:product:keep"] = map[string]string{"id": "keep"}

	if _, err := New(s, "test:").Replace(context.Background(), fixture()[:1]); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, ok := s.hashes["test:product:old"]; ok {
		t.Error("stale product should be deleted")
	}
	if _, ok := s.hashes["other:product:keep"]; !ok {
		t.Error("keys outside the prefix must survive")
	}
}

func TestReplace_SkipsEmptyKeys(t *testing.T) {
	s := newMemStore()
	n, err := New(s, "").Replace(context.Background(), []knowledge.Record{knowledge.Policy{Text: "orphan"}})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 0 || len(s.hashes) != 0 {
		t.Errorf("expected nothing written, got %d (%v)", n, s.hashes)
	}
}

func TestLoad_SkipsVanishedKeys(t *testing.T) {
	s := newMemStore()
	s.hashes["test:policy:returns"] = map[string]string{}

	got, err := New(s, "test:").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %v", got)
	}
}

func TestLoad_KeyFallbacks(t *testing.T) {
	s := newMemStore()
	s.hashes["test:customer:7"] = map[string]string{"name": "No Id"}
	s.hashes["test:policy:shipping"] = map[string]string{"text": "Free over $50."}

	got, err := New(s, "test:").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []knowledge.Record{
		knowledge.Customer{ID: "7", Name: "No Id"},
		knowledge.Policy{Name: "shipping", Text: "Free over $50."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		setup func(*memStore)
	}{
		{"scan fails", func(s *memStore) { s.scanErr = boom }},
		{"hgetall fails", func(s *memStore) {
			s.hashes["test:customer:1"] = map[string]string{"name": "x"}
			s.getErr = boom
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newMemStore()
			tc.setup(s)
			_, err := New(s, "test:").Load(context.Background())
			if !errors.Is(err, domain.ErrKnowledgeLoad) {
				t.Errorf("expected ErrKnowledgeLoad, got %v", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("expected wrapped cause, got %v", err)
			}
		})
	}
}
