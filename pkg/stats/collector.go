package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Collector fetches row counts for a set of tables with a bounded worker
// pool. Fetches are read-only and independent, so they run concurrently; a
// failed or slow fetch degrades to the default estimate rather than failing
// the run. Nothing is cached across calls.
type Collector struct {
	provider        RowCountProvider
	workers         int
	fetchTimeout    time.Duration
	defaultEstimate int64
	logger          *zap.Logger
}

// NewCollector creates a Collector. provider may be nil, in which case every
// table gets the default estimate.
func NewCollector(provider RowCountProvider, workers int, fetchTimeout time.Duration, defaultEstimate int64, logger *zap.Logger) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		provider:        provider,
		workers:         workers,
		fetchTimeout:    fetchTimeout,
		defaultEstimate: defaultEstimate,
		logger:          logger.Named("stats-collector"),
	}
}

// DefaultEstimate returns the fallback row count.
func (c *Collector) DefaultEstimate() int64 {
	return c.defaultEstimate
}

// Collect returns a row count for every requested table, and the sorted list
// of tables whose count fell back to the default estimate. The result map is
// written at most once per key; input duplicates are collapsed.
func (c *Collector) Collect(ctx context.Context, tables []string) (map[string]int64, []string) {
	unique := make([]string, 0, len(tables))
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}

	counts := make(map[string]int64, len(unique))
	var estimated []string

	if c.provider == nil {
		for _, t := range unique {
			counts[t] = c.defaultEstimate
			estimated = append(estimated, t)
		}
		sort.Strings(estimated)
		return counts, estimated
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.workers)
	)

	for _, table := range unique {
		wg.Add(1)
		sem <- struct{}{}
		go func(table string) {
			defer wg.Done()
			defer func() { <-sem }()

			n, ok := c.fetch(ctx, table)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				counts[table] = n
			} else {
				counts[table] = c.defaultEstimate
				estimated = append(estimated, table)
			}
		}(table)
	}
	wg.Wait()

	sort.Strings(estimated)
	return counts, estimated
}

// fetch runs a single bounded fetch against the provider.
func (c *Collector) fetch(ctx context.Context, table string) (int64, bool) {
	fetchCtx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	n, err := c.provider.RowCount(fetchCtx, table)
	if err != nil {
		c.logger.Debug("row count fetch failed, using default estimate",
			zap.String("table", table),
			zap.Int64("default_estimate", c.defaultEstimate),
			zap.Error(err))
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	return n, true
}
