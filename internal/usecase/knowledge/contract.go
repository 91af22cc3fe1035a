package knowledge

import (
	"context"

	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
)

// Source loads knowledge records. Called once at process start.
type Source interface {
	Load(ctx context.Context) ([]knowledge.Record, error)
}

// TriggerLookup resolves category names to their trigger keywords.
type TriggerLookup interface {
	Triggers(category string) []string
}
