package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/popup-launcher/internal/provider"
)

// maxParallel bounds how many providers are queried at once.
const maxParallel = 4

// Prefix maps a typed prefix to the provider it selects.
type Prefix struct {
	Prefix   string `mapstructure:"prefix"`
	Provider string `mapstructure:"provider"`
}

// Plan is the resolved form of one input text.
type Plan struct {
	Providers []string
	// Text is the query with any provider or exact prefix removed.
	Text  string
	Exact bool
	// PrefixProvider and CurrentPrefix are set when a typed prefix selected the provider.
	PrefixProvider string
	CurrentPrefix  string
}

// Pipeline turns input text into provider queries and merges their results.
type Pipeline struct {
	registry    *provider.Registry
	prefixes    []Prefix
	exactPrefix string
}

// New builds a pipeline. Longer prefixes are tried first.
func New(registry *provider.Registry, prefixes []Prefix, exactPrefix string) *Pipeline {
	sorted := make([]Prefix, 0, len(prefixes))
	for _, p := range prefixes {
		if p.Prefix == "" || p.Provider == "" {
			continue
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Pipeline{registry: registry, prefixes: sorted, exactPrefix: exactPrefix}
}

// ExactPrefix returns the marker that switches a query to exact matching.
func (p *Pipeline) ExactPrefix() string {
	return p.exactPrefix
}

// Plan decides which providers a text is sent to. An explicit provider
// always wins; otherwise a typed prefix selects its provider, and plain
// text goes to the default providers.
func (p *Pipeline) Plan(text, explicit string) Plan {
	plan := Plan{Text: text}
	switch {
	case explicit != "":
		plan.Providers = []string{explicit}
	default:
		for _, pre := range p.prefixes {
			if strings.HasPrefix(text, pre.Prefix) {
				plan.Providers = []string{pre.Provider}
				plan.PrefixProvider = pre.Provider
				plan.CurrentPrefix = pre.Prefix
				plan.Text = strings.TrimPrefix(text, pre.Prefix)
				break
			}
		}
		if plan.PrefixProvider == "" {
			plan.Providers = p.registry.Defaults()
		}
	}
	if p.exactPrefix != "" && strings.HasPrefix(plan.Text, p.exactPrefix) {
		plan.Exact = true
		plan.Text = strings.TrimPrefix(plan.Text, p.exactPrefix)
	}
	return plan
}

// Run queries every planned provider and merges the results by score.
// Items keep provider order on equal scores. A failing provider does not
// drop the results of the others; its error is returned alongside them.
func (p *Pipeline) Run(ctx context.Context, plan Plan, set string) ([]provider.Item, error) {
	results := make([][]provider.Item, len(plan.Providers))
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, name := range plan.Providers {
		prov, ok := p.registry.Find(name)
		if !ok {
			mu.Lock()
			errs = append(errs, fmt.Errorf("unknown provider %q", name))
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			items, err := prov.Query(gctx, provider.Query{
				Provider: name,
				Text:     plan.Text,
				Exact:    plan.Exact,
				Set:      set,
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("provider %s: %w", name, err))
				mu.Unlock()
				return nil
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var merged []provider.Item
	for _, items := range results {
		merged = append(merged, items...)
	}
	if strings.TrimSpace(plan.Text) != "" && len(plan.Providers) > 1 {
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Score > merged[j].Score
		})
	}
	return merged, errors.Join(errs...)
}
