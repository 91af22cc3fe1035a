// Package query turns raw user text into a classified Query.
package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Query is a classified user query. It is never mutated after Classify returns.
type Query struct {
	raw        string
	tokens     []string
	keywords   []string
	categories []string
	greeting   bool
}

// Raw returns the original user text.
func (q *Query) Raw() string { return q.raw }

// Tokens returns the normalized tokens in input order.
func (q *Query) Tokens() []string { return q.tokens }

// Keywords returns the distinct keywords in first-occurrence order.
func (q *Query) Keywords() []string { return q.keywords }

// Categories returns matched category names in taxonomy order.
func (q *Query) Categories() []string { return q.categories }

// NeedsPrompt reports whether no keywords survived filtering. Such a query is a
// greeting or help request and must not be searched.
func (q *Query) NeedsPrompt() bool { return len(q.keywords) == 0 }

// HasGreeting reports whether any token is a greeting word.
func (q *Query) HasGreeting() bool { return q.greeting }

// HasKeyword reports whether kw is one of the query keywords.
func (q *Query) HasKeyword(kw string) bool {
	for _, k := range q.keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// Classifier derives queries from raw text using a fixed vocabulary.
// A Classifier is safe for concurrent use.
type Classifier struct {
	vocab     Vocabulary
	stopwords map[string]struct{}
	greetings map[string]struct{}
	triggers  []map[string]struct{} // parallel to vocab.Categories
}

// NewClassifier validates the vocabulary and precomputes lookup sets.
func NewClassifier(v Vocabulary) (*Classifier, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		vocab:     v,
		stopwords: toSet(v.Stopwords),
		greetings: toSet(v.Greetings),
		triggers:  make([]map[string]struct{}, len(v.Categories)),
	}
	for i, cat := range v.Categories {
		c.triggers[i] = toSet(cat.Triggers)
	}
	return c, nil
}

// Vocabulary returns the classifier vocabulary.
func (c *Classifier) Vocabulary() Vocabulary { return c.vocab }

// Classify lower-cases and tokenizes raw, removes stopwords and greeting words,
// and intersects the remaining keywords with the category taxonomy.
func (c *Classifier) Classify(raw string) Query {
	q := Query{raw: raw}

	seen := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(raw)) {
		tok := strings.TrimFunc(field, isEdgePunct)
		if tok == "" {
			continue
		}
		q.tokens = append(q.tokens, tok)

		if _, ok := c.greetings[tok]; ok {
			q.greeting = true
			continue
		}
		if _, ok := c.stopwords[tok]; ok {
			continue
		}
		if utf8.RuneCountInString(tok) < c.vocab.MinKeywordLength {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		q.keywords = append(q.keywords, tok)
	}

	for i, cat := range c.vocab.Categories {
		for _, kw := range q.keywords {
			if _, ok := c.triggers[i][kw]; ok {
				q.categories = append(q.categories, cat.Name)
				break
			}
		}
	}

	return q
}

// Triggers returns the trigger keywords of the named category.
func (c *Classifier) Triggers(category string) []string {
	for _, cat := range c.vocab.Categories {
		if cat.Name == category {
			return cat.Triggers
		}
	}
	return nil
}

func isEdgePunct(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}
