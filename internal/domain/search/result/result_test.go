package result

import "testing"

func TestNewEntry(t *testing.T) {
	e := NewEntry(SourceProduct, "7", "TrailMaster X4 Tent...", 2)

	if e.SourceKind() != SourceProduct {
		t.Errorf("SourceKind() = %q", e.SourceKind())
	}
	if e.ID() != "7" {
		t.Errorf("ID() = %q", e.ID())
	}
	if e.Snippet() != "TrailMaster X4 Tent..." {
		t.Errorf("Snippet() = %q", e.Snippet())
	}
	if e.Score() != 2 {
		t.Errorf("Score() = %f", e.Score())
	}
}

func TestEntry_Render(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{NewEntry(SourcePolicy, "returns", "30 days.", 1), "Policy - returns: 30 days."},
		{NewEntry(SourceProduct, "1", "Tent...", 1), "Product - 1: Tent..."},
		{NewEntry(SourceCustomer, "customers", "Found 2 matching customer records", 2), "Found 2 matching customer records"},
		{NewEntry(SourceGuidance, "miss", "Try tents.", 0), "Try tents."},
	}
	for _, tc := range tests {
		if got := tc.entry.Render(); got != tc.want {
			t.Errorf("Render() = %q, want %q", got, tc.want)
		}
	}
}

func TestNewMatched(t *testing.T) {
	r := NewMatched([]Entry{
		NewEntry(SourcePolicy, "warranty", "One year.", 1),
		NewEntry(SourceProduct, "3", "Boots...", 1),
	}, 12)

	if r.Outcome() != Matched {
		t.Errorf("Outcome() = %q", r.Outcome())
	}
	if !r.Usable() {
		t.Error("matched result should be usable")
	}
	if r.Scanned() != 12 {
		t.Errorf("Scanned() = %d", r.Scanned())
	}
	want := "Policy - warranty: One year.\n\nProduct - 3: Boots..."
	if got := r.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestNewSentinel(t *testing.T) {
	miss := NewSentinel(Miss, "Nothing found.", 5)
	if miss.Usable() {
		t.Error("miss sentinel must not be usable")
	}
	if len(miss.Entries()) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(miss.Entries()))
	}
	if miss.Entries()[0].SourceKind() != SourceGuidance {
		t.Errorf("sentinel entry kind = %q", miss.Entries()[0].SourceKind())
	}
	if miss.Text() != "Nothing found." {
		t.Errorf("Text() = %q", miss.Text())
	}

	prompt := NewSentinel(Prompt, "Hello!", 0)
	if !prompt.Usable() {
		t.Error("prompt sentinel should be usable")
	}
	if prompt.Scanned() != 0 {
		t.Errorf("Scanned() = %d, want 0", prompt.Scanned())
	}
}
