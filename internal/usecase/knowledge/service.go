package knowledge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
	"github.com/kailas-cloud/hybridchat/internal/domain/query"
	"github.com/kailas-cloud/hybridchat/internal/domain/search/result"
)

const (
	// MaxProducts caps product entries per search. Scanning stops once reached.
	MaxProducts = 8
	// SnippetLength is the number of characters of a product document kept in its entry.
	SnippetLength = 300
	// minStrongKeyword is the shortest keyword (exclusive) used for free-text product matching.
	minStrongKeyword = 3
)

// Guidance texts.
const (
	GreetingText = "Hello! I'm your outdoor gear assistant. I can help you find information about " +
		"camping equipment, hiking gear, tents, sleeping bags, backpacks, and more. " +
		"What specific products are you looking for?"
	SpecificText = "Please be more specific about what camping or outdoor gear you're looking for. " +
		"I can help with tents, sleeping bags, backpacks, hiking gear, camping stoves, and more."
	customerAggregate = "Found %d matching customer records (details require specific customer ID)"
)

// MissText is the guidance returned when nothing matched raw.
func MissText(raw string) string {
	return "No specific products found for '" + raw + "'. I can help you find camping gear like tents, " +
		"sleeping bags, backpacks, hiking boots, camping stoves, and outdoor clothing. What are you looking for?"
}

// Matcher searches the internal knowledge snapshot.
// It holds only read-only state and is safe for concurrent use.
type Matcher struct {
	snapshot         *knowledge.Snapshot
	triggers         TriggerLookup
	policyTriggers   map[string]struct{}
	customerTriggers map[string]struct{}
	searchTotal      *prometheus.CounterVec
}

// New creates a matcher over snapshot.
// searchTotal is a counter vec with label "outcome", passed explicitly (may be nil).
func New(
	snapshot *knowledge.Snapshot,
	triggers TriggerLookup,
	vocab query.Vocabulary,
	searchTotal *prometheus.CounterVec,
) *Matcher {
	if snapshot == nil {
		snapshot = knowledge.Empty()
	}
	return &Matcher{
		snapshot:         snapshot,
		triggers:         triggers,
		policyTriggers:   toSet(vocab.PolicyTriggers),
		customerTriggers: toSet(vocab.CustomerTriggers),
		searchTotal:      searchTotal,
	}
}

// Snapshot returns the snapshot the matcher serves from.
func (m *Matcher) Snapshot() *knowledge.Snapshot { return m.snapshot }

// Search matches q against policies, products and customers, in that order.
// Entries keep scan order. The result is a function of q and the snapshot only.
func (m *Matcher) Search(q query.Query) result.Result {
	if q.NeedsPrompt() {
		text := SpecificText
		if q.HasGreeting() {
			text = GreetingText
		}
		m.inc(result.Prompt)
		return result.NewSentinel(result.Prompt, text, 0)
	}

	keywords := q.Keywords()
	var entries []result.Entry
	scanned := 0

	if anyIn(keywords, m.policyTriggers) {
		n, found := m.matchPolicies(keywords)
		scanned += n
		entries = append(entries, found...)
	}

	var (
		n     int
		found []result.Entry
	)
	if len(q.Categories()) > 0 {
		n, found = m.matchByCategory(q.Categories())
	} else {
		n, found = m.matchByText(keywords)
	}
	scanned += n
	entries = append(entries, found...)

	if anyIn(keywords, m.customerTriggers) {
		n, aggregate := m.matchCustomers(keywords)
		scanned += n
		if aggregate != nil {
			entries = append(entries, *aggregate)
		}
	}

	if len(entries) == 0 {
		m.inc(result.Miss)
		return result.NewSentinel(result.Miss, MissText(q.Raw()), scanned)
	}
	m.inc(result.Matched)
	return result.NewMatched(entries, scanned)
}

func (m *Matcher) matchPolicies(keywords []string) (int, []result.Entry) {
	policies := m.snapshot.Policies()
	var entries []result.Entry
	for _, p := range policies {
		key := strings.ToLower(p.Name)
		text := strings.ToLower(p.Text)
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(key, kw) || strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > 0 {
			entries = append(entries, result.NewEntry(result.SourcePolicy, p.Name, p.Text, float64(hits)))
		}
	}
	return len(policies), entries
}

// matchByCategory includes a product when its category field contains a trigger of any
// requested category. Products without a category field never match.
func (m *Matcher) matchByCategory(categories []string) (int, []result.Entry) {
	var entries []result.Entry
	scanned := 0
	for _, p := range m.snapshot.Products() {
		scanned++
		if p.Category == "" {
			continue
		}
		hits := 0
		for _, cat := range categories {
			if containsAny(p.Category, m.triggers.Triggers(cat)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		entries = append(entries, productEntry(p, hits))
		if len(entries) >= MaxProducts {
			break
		}
	}
	return scanned, entries
}

// matchByText includes a product when a keyword longer than minStrongKeyword runes
// appears in its title or category. Body text is not searched.
func (m *Matcher) matchByText(keywords []string) (int, []result.Entry) {
	var strong []string
	for _, kw := range keywords {
		if utf8.RuneCountInString(kw) > minStrongKeyword {
			strong = append(strong, kw)
		}
	}
	if len(strong) == 0 {
		return 0, nil
	}

	var entries []result.Entry
	scanned := 0
	for _, p := range m.snapshot.Products() {
		scanned++
		hits := 0
		for _, kw := range strong {
			if strings.Contains(p.Title, kw) || (p.Category != "" && strings.Contains(p.Category, kw)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		entries = append(entries, productEntry(p, hits))
		if len(entries) >= MaxProducts {
			break
		}
	}
	return scanned, entries
}

// matchCustomers returns a single aggregate entry; customer fields are never exposed.
func (m *Matcher) matchCustomers(keywords []string) (int, *result.Entry) {
	customers := m.snapshot.Customers()
	count := 0
	for _, c := range customers {
		if customerMatches(c, keywords) {
			count++
		}
	}
	if count == 0 {
		return len(customers), nil
	}
	e := result.NewEntry(
		result.SourceCustomer,
		"customers",
		fmt.Sprintf(customerAggregate, count),
		float64(count),
	)
	return len(customers), &e
}

func (m *Matcher) inc(outcome result.Outcome) {
	if m.searchTotal != nil {
		m.searchTotal.WithLabelValues(string(outcome)).Inc()
	}
}

func customerMatches(c knowledge.Customer, keywords []string) bool {
	for _, v := range c.FieldValues() {
		if containsAny(strings.ToLower(v), keywords) {
			return true
		}
	}
	return false
}

func productEntry(p knowledge.Product, hits int) result.Entry {
	return result.NewEntry(result.SourceProduct, p.ID, snippet(p.RawText), float64(hits))
}

func snippet(raw string) string {
	if utf8.RuneCountInString(raw) > SnippetLength {
		raw = string([]rune(raw)[:SnippetLength])
	}
	return raw + "..."
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyIn(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}
