package query

import (
	"fmt"

	"github.com/kailas-cloud/hybridchat/internal/domain"
)

// DefaultMinKeywordLength is the shortest token (in runes) kept as a keyword.
const DefaultMinKeywordLength = 3

// Category is a named product category and the keywords that trigger it.
type Category struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
}

// Vocabulary holds every word list used by classification, matching and routing.
// Lists are configuration: the algorithms do not depend on particular words.
type Vocabulary struct {
	Stopwords        []string   `yaml:"stopwords"`
	Greetings        []string   `yaml:"greetings"`
	Categories       []Category `yaml:"categories"`
	PolicyTriggers   []string   `yaml:"policy_triggers"`
	CustomerTriggers []string   `yaml:"customer_triggers"`
	RealtimeTriggers []string   `yaml:"realtime_triggers"`
	MinKeywordLength int        `yaml:"min_keyword_length"`
}

// DefaultVocabulary returns the built-in outdoor-gear vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Stopwords: []string{
			"tell", "me", "about", "what", "what's", "whats", "is", "are", "the", "a", "an",
			"and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by", "from", "up",
			"into", "through", "during", "before", "after", "above", "below", "between", "among",
			"i", "you", "he", "she", "it", "we", "they", "this", "that", "these", "those",
			"can", "could", "would", "should", "will", "shall", "may", "might", "must",
			"do", "does", "did", "have", "has", "had", "be", "am", "was", "were", "been", "being",
			"show", "find", "list", "get", "give", "looking", "need", "want", "like", "see", "view",
			"any", "some", "your", "our", "my", "please",
		},
		Greetings: []string{
			"hi", "hello", "hey", "greetings", "good", "morning", "afternoon", "evening",
			"help", "start", "begin", "thanks", "thank", "how", "there",
		},
		Categories: []Category{
			{Name: "tent", Triggers: []string{"tent", "tents", "shelter"}},
			{Name: "table", Triggers: []string{"table", "tables", "dining"}},
			{Name: "chair", Triggers: []string{"chair", "chairs", "seat"}},
			{Name: "backpack", Triggers: []string{"backpack", "backpacks", "pack", "daypack"}},
			{Name: "sleeping", Triggers: []string{"sleeping", "sleep"}},
			{Name: "boots", Triggers: []string{"boot", "boots", "shoe", "shoes", "footwear", "sandal", "sandals"}},
			{Name: "jacket", Triggers: []string{"jacket", "jackets"}},
			{Name: "stove", Triggers: []string{"stove", "stoves", "cooking", "cook", "burner"}},
			{Name: "pants", Triggers: []string{"pant", "pants"}},
			{Name: "bag", Triggers: []string{"bag", "bags"}},
		},
		PolicyTriggers:   []string{"policy", "rule", "return", "warranty", "service", "support"},
		CustomerTriggers: []string{"customer", "account", "order", "purchase"},
		RealtimeTriggers: []string{
			"weather", "news", "stock", "price", "current", "today", "now",
			"latest", "recent", "forecast", "temperature",
		},
		MinKeywordLength: DefaultMinKeywordLength,
	}
}

// Merge returns v with every empty field taken from base.
func (v Vocabulary) Merge(base Vocabulary) Vocabulary {
	out := v
	if len(out.Stopwords) == 0 {
		out.Stopwords = base.Stopwords
	}
	if len(out.Greetings) == 0 {
		out.Greetings = base.Greetings
	}
	if len(out.Categories) == 0 {
		out.Categories = base.Categories
	}
	if len(out.PolicyTriggers) == 0 {
		out.PolicyTriggers = base.PolicyTriggers
	}
	if len(out.CustomerTriggers) == 0 {
		out.CustomerTriggers = base.CustomerTriggers
	}
	if len(out.RealtimeTriggers) == 0 {
		out.RealtimeTriggers = base.RealtimeTriggers
	}
	if out.MinKeywordLength <= 0 {
		out.MinKeywordLength = base.MinKeywordLength
	}
	return out
}

// Validate checks that categories are named, unique and have triggers.
func (v Vocabulary) Validate() error {
	seen := make(map[string]struct{}, len(v.Categories))
	for i, c := range v.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: categories[%d] has no name", domain.ErrInvalidVocabulary, i)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", domain.ErrInvalidVocabulary, c.Name)
		}
		seen[c.Name] = struct{}{}
		if len(c.Triggers) == 0 {
			return fmt.Errorf("%w: category %q has no triggers", domain.ErrInvalidVocabulary, c.Name)
		}
	}
	if v.MinKeywordLength < 0 {
		return fmt.Errorf("%w: min_keyword_length must not be negative", domain.ErrInvalidVocabulary)
	}
	return nil
}
