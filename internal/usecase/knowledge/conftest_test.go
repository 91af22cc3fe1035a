package knowledge

import (
	"context"
	"fmt"
	"testing"

	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
	"github.com/kailas-cloud/hybridchat/internal/domain/query"
)

func productDoc(title, category, body string) string {
	doc := "# Information about product\n" + title + "\n\n"
	if category != "" {
		doc += "## Category\n" + category + "\n\n"
	}
	return doc + "## Description\n" + body + "\n"
}

func fixtureRecords() []knowledge.Record {
	return []knowledge.Record{
		knowledge.ParseProduct("1", productDoc("TrailMaster X4 Tent", "Tents", "Four person tent.")),
		knowledge.ParseProduct("2", productDoc("Adventurer Pro Backpack", "Backpacks", "Roomy pack.")),
		knowledge.ParseProduct("3", productDoc("SkyView 2-Person Tent", "Tents", "Lightweight.")),
		knowledge.ParseProduct("4", productDoc("Trail Stool", "", "Folds small enough to fit in any tent.")),
		knowledge.ParseProduct("5", productDoc("Alpine Explorer Tent", "Tents", "Four season shelter.")),
		knowledge.ParseProduct("6", productDoc("TrekReady Boots", "Hiking Footwear", "Waterproof.")),
		knowledge.ParseProduct("7", productDoc("CampCruiser Table", "Camping Tables", "Mentions tent poles in the body.")),
		knowledge.Policy{Name: "returns", Text: "Items can be returned within 30 days of purchase."},
		knowledge.Policy{Name: "warranty", Text: "All tents carry a one year warranty."},
		knowledge.Policy{Name: "shipping", Text: "Orders ship within two business days."},
		knowledge.Customer{
			ID: "1", Name: "John Smith", AccountType: "premium", Balance: "120.50",
			Status: "active", LastTransaction: "2024-01-15", Contact: "john@example.com",
		},
		knowledge.Customer{
			ID: "2", Name: "Jane Doe", AccountType: "basic", Balance: "0",
			Status: "inactive", LastTransaction: "2023-11-02", Contact: "jane@example.com",
		},
	}
}

func manyTents(n int) []knowledge.Record {
	records := make([]knowledge.Record, n)
	for i := range n {
		id := fmt.Sprintf("t%02d", i)
		records[i] = knowledge.ParseProduct(id, productDoc("Tent model "+id, "Tents", "A tent."))
	}
	return records
}

func newTestClassifier(t testing.TB) *query.Classifier {
	t.Helper()
	c, err := query.NewClassifier(query.DefaultVocabulary())
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func newTestMatcher(t testing.TB, records []knowledge.Record) (*Matcher, *query.Classifier) {
	t.Helper()
	c := newTestClassifier(t)
	return New(knowledge.NewSnapshot(records), c, c.Vocabulary(), nil), c
}

// mockSource implements Source for tests.
type mockSource struct {
	records []knowledge.Record
	err     error
	panics  bool
}

func (m *mockSource) Load(_ context.Context) ([]knowledge.Record, error) {
	if m.panics {
		panic("source exploded")
	}
	return m.records, m.err
}
