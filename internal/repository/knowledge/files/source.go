// Package files loads knowledge records from a directory of JSON, markdown and YAML files.
package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridchat/internal/domain"
	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
)

// File naming conventions.
const (
	customerPrefix = "customer_info_"
	customerSuffix = ".json"
	productPrefix  = "product_info_"
	productSuffix  = ".md"
	PoliciesFile   = "policies.yaml"
)

// Source reads knowledge records from a directory.
// Files are read in lexical order so the snapshot order is stable.
type Source struct {
	dir    string
	logger *zap.Logger
}

// New creates a directory source.
func New(dir string, logger *zap.Logger) *Source {
	return &Source{dir: dir, logger: logger}
}

// Load reads customers, products and policies concurrently.
// A file that cannot be read or parsed is logged and skipped.
func (s *Source) Load(ctx context.Context) ([]knowledge.Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %w", domain.ErrKnowledgeLoad, s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	var customers, products, policies []knowledge.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.loadCustomers(gctx, names)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.loadProducts(gctx, names)
		return err
	})
	g.Go(func() error {
		var err error
		policies, err = s.loadPolicies()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKnowledgeLoad, err)
	}

	records := make([]knowledge.Record, 0, len(customers)+len(products)+len(policies))
	records = append(records, customers...)
	records = append(records, products...)
	records = append(records, policies...)
	return records, nil
}

func (s *Source) loadCustomers(ctx context.Context, names []string) ([]knowledge.Record, error) {
	var out []knowledge.Record
	for _, name := range names {
		if !strings.HasPrefix(name, customerPrefix) || !strings.HasSuffix(name, customerSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.readCustomer(name)
		if err != nil {
			s.logger.Warn("Skipping customer file", zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Source) readCustomer(name string) (knowledge.Customer, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return knowledge.Customer{}, fmt.Errorf("read: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return knowledge.Customer{}, fmt.Errorf("decode: %w", err)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = stringify(v)
	}
	return knowledge.CustomerFromFields(fields, name), nil
}

func (s *Source) loadProducts(ctx context.Context, names []string) ([]knowledge.Record, error) {
	var out []knowledge.Record
	for _, name := range names {
		if !strings.HasPrefix(name, productPrefix) || !strings.HasSuffix(name, productSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("Skipping product file", zap.String("file", name), zap.Error(err))
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, productPrefix), productSuffix)
		out = append(out, knowledge.ParseProduct(id, string(data)))
	}
	return out, nil
}

// loadPolicies reads the ordered policy list. A missing file means no policies.
func (s *Source) loadPolicies() ([]knowledge.Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, PoliciesFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("Skipping policies file", zap.Error(err))
		return nil, nil
	}

	var list []knowledge.Policy
	if err := yaml.Unmarshal(data, &list); err != nil {
		s.logger.Warn("Skipping malformed policies file", zap.Error(err))
		return nil, nil
	}

	out := make([]knowledge.Record, 0, len(list))
	for _, p := range list {
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
