// Package routing decides which knowledge sources answer a query.
package routing

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/hybridchat/internal/domain/query"
	"github.com/kailas-cloud/hybridchat/internal/domain/search/result"
)

// Decision says which sources contribute to the reply.
type Decision struct {
	UseInternal bool
	UseExternal bool
	Realtime    bool
}

// Router applies the routing policy. Safe for concurrent use.
type Router struct {
	realtime      map[string]struct{}
	decisionTotal *prometheus.CounterVec
}

// New creates a router. decisionTotal has labels "internal" and "external" and may be nil.
func New(realtimeTriggers []string, decisionTotal *prometheus.CounterVec) *Router {
	set := make(map[string]struct{}, len(realtimeTriggers))
	for _, w := range realtimeTriggers {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Router{realtime: set, decisionTotal: decisionTotal}
}

// Route decides from the query and the already computed internal result.
// External is used on real-time intent or when internal has nothing usable.
// Internal is skipped only when every keyword is a real-time trigger.
func (r *Router) Route(q query.Query, internal result.Result) Decision {
	d := Decision{Realtime: r.isRealtime(q)}
	d.UseExternal = d.Realtime || !internal.Usable()
	d.UseInternal = !(d.Realtime && r.purelyRealtime(q))

	if r.decisionTotal != nil {
		r.decisionTotal.WithLabelValues(boolLabel(d.UseInternal), boolLabel(d.UseExternal)).Inc()
	}
	return d
}

func (r *Router) isRealtime(q query.Query) bool {
	for _, tok := range q.Tokens() {
		if _, ok := r.realtime[tok]; ok {
			return true
		}
	}
	return false
}

func (r *Router) purelyRealtime(q query.Query) bool {
	for _, kw := range q.Keywords() {
		if _, ok := r.realtime[kw]; !ok {
			return false
		}
	}
	return true
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
