package chat

import (
	"context"

	"github.com/kailas-cloud/hybridchat/internal/domain/query"
	"github.com/kailas-cloud/hybridchat/internal/domain/run"
	"github.com/kailas-cloud/hybridchat/internal/domain/search/result"
	"github.com/kailas-cloud/hybridchat/internal/usecase/routing"
)

// Classifier turns raw text into a query.
type Classifier interface {
	Classify(raw string) query.Query
}

// Searcher looks a query up in internal knowledge.
type Searcher interface {
	Search(q query.Query) result.Result
}

// Router decides which sources answer a query.
type Router interface {
	Route(q query.Query, internal result.Result) routing.Decision
}

// Delegator hands a prompt to the grounded completion service.
type Delegator interface {
	Delegate(ctx context.Context, prompt string) *run.Run
}
