// Package redis stores knowledge records as Redis/Valkey hashes.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/hybridchat/internal/db"
	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
)

// store is the consumer interface (ISP) for the knowledge repository.
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

var kinds = []knowledge.Kind{knowledge.KindCustomer, knowledge.KindProduct, knowledge.KindPolicy}

// Repo reads and writes knowledge hashes under "<prefix><kind>:<key>".
type Repo struct {
	store  store
	prefix string
}

// New creates a knowledge repository. An empty prefix uses domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) kindPrefix(kind knowledge.Kind) string {
	return r.prefix + string(kind) + ":"
}

func (r *Repo) key(rec knowledge.Record) string {
	return r.kindPrefix(rec.Kind()) + rec.Key()
}

// Load returns customers, then products, then policies, each sorted by key.
func (r *Repo) Load(ctx context.Context) ([]knowledge.Record, error) {
	var out []knowledge.Record
	for _, kind := range kinds {
		recs, err := r.loadKind(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrKnowledgeLoad, kind, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (r *Repo) loadKind(ctx context.Context, kind knowledge.Kind) ([]knowledge.Record, error) {
	prefix := r.kindPrefix(kind)
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}

	out := make([]knowledge.Record, 0, len(keys))
	for i, m := range hashes {
		if rec, ok := recordFromHash(kind, strings.TrimPrefix(keys[i], prefix), m); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Replace deletes every stored knowledge record and writes records in their place.
// Records with an empty key are skipped.
func (r *Repo) Replace(ctx context.Context, records []knowledge.Record) (int, error) {
	var stale []string
	for _, kind := range kinds {
		keys, err := r.store.Scan(ctx, r.kindPrefix(kind)+"*")
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", kind, err)
		}
		stale = append(stale, keys...)
	}
	if err := r.store.Del(ctx, stale...); err != nil {
		return 0, fmt.Errorf("delete stale records: %w", err)
	}

	items := make([]db.HashSetItem, 0, len(records))
	for _, rec := range records {
		if rec.Key() == "" {
			continue
		}
		items = append(items, db.HashSetItem{Key: r.key(rec), Fields: recordToHash(rec)})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("write records: %w", err)
	}
	return len(items), nil
}
