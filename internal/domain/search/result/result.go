package result

import "strings"

// SourceKind identifies which record set an entry came from.
type SourceKind string

// Source kinds. Guidance marks a sentinel entry that carries prompt or miss text.
const (
	SourceCustomer SourceKind = "customer"
	SourceProduct  SourceKind = "product"
	SourcePolicy   SourceKind = "policy"
	SourceGuidance SourceKind = "guidance"
)

// Outcome classifies a whole search result.
type Outcome string

// Search outcomes.
const (
	// Matched means at least one record contributed an entry.
	Matched Outcome = "matched"
	// Prompt means the query had no keywords and got the conversational prompt.
	Prompt Outcome = "prompt"
	// Miss means records were scanned but nothing matched (LookupMiss).
	Miss Outcome = "miss"
)

// Entry is a single search hit.
type Entry struct {
	sourceKind SourceKind
	id         string
	snippet    string
	score      float64
}

// NewEntry creates a search entry.
func NewEntry(kind SourceKind, id, snippet string, score float64) Entry {
	return Entry{sourceKind: kind, id: id, snippet: snippet, score: score}
}

// SourceKind returns the record kind the entry came from.
func (e *Entry) SourceKind() SourceKind { return e.sourceKind }

// ID returns the record identifier.
func (e *Entry) ID() string { return e.id }

// Snippet returns the entry text.
func (e *Entry) Snippet() string { return e.snippet }

// Score returns the number of matching keywords (or records, for aggregates).
func (e *Entry) Score() float64 { return e.score }

// Render formats the entry for display.
func (e *Entry) Render() string {
	switch e.sourceKind {
	case SourcePolicy:
		return "Policy - " + e.id + ": " + e.snippet
	case SourceProduct:
		return "Product - " + e.id + ": " + e.snippet
	default:
		return e.snippet
	}
}

// Result is an ordered list of entries. Order is insertion order, not score order.
type Result struct {
	outcome Outcome
	entries []Entry
	scanned int
}

// NewMatched creates a result from matched entries; scanned is the number of records examined.
func NewMatched(entries []Entry, scanned int) Result {
	return Result{outcome: Matched, entries: entries, scanned: scanned}
}

// NewSentinel creates a result whose sole entry is guidance text.
func NewSentinel(outcome Outcome, text string, scanned int) Result {
	return Result{
		outcome: outcome,
		entries: []Entry{NewEntry(SourceGuidance, string(outcome), text, 0)},
		scanned: scanned,
	}
}

// Outcome returns the result classification.
func (r *Result) Outcome() Outcome { return r.outcome }

// Entries returns the entries in insertion order.
func (r *Result) Entries() []Entry { return r.entries }

// Scanned returns how many records were examined.
func (r *Result) Scanned() int { return r.scanned }

// Usable reports whether the result can be shown as an internal answer.
// A miss sentinel is not usable.
func (r *Result) Usable() bool {
	return r.outcome == Matched || r.outcome == Prompt
}

// Text renders all entries separated by a blank line.
func (r *Result) Text() string {
	parts := make([]string, len(r.entries))
	for i := range r.entries {
		parts[i] = r.entries[i].Render()
	}
	return strings.Join(parts, "\n\n")
}
