package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/query"
)

// LoadVocabulary reads word-list overrides from path and fills every list the file
// leaves empty from the built-in vocabulary. An empty path returns the built-in one.
func LoadVocabulary(path string) (query.Vocabulary, error) {
	base := query.DefaultVocabulary()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return query.Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	var override query.Vocabulary
	if err := yaml.Unmarshal(expandEnvVars(data), &override); err != nil {
		return query.Vocabulary{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidVocabulary, path, err)
	}

	v := override.Merge(base)
	if err := v.Validate(); err != nil {
		return query.Vocabulary{}, err
	}
	return v, nil
}
