// Package stats supplies row-count statistics to the conversion pipeline.
// The engine never queries a live database itself; counts come from an
// injected provider and degrade to a default estimate when unavailable.
package stats

import (
	"context"
	"fmt"

	"github.com/docuflow-io/docuflow-engine/pkg/apperrors"
	"github.com/docuflow-io/docuflow-engine/pkg/retry"
)

// RowCountProvider is the narrow capability interface for fetching the row
// count of a single table. Implementations must be safe for concurrent use.
type RowCountProvider interface {
	RowCount(ctx context.Context, table string) (int64, error)
}

// StaticProvider serves row counts from a fixed map. Used for snapshots that
// carry counts inline, and in tests.
type StaticProvider struct {
	counts map[string]int64
}

// NewStaticProvider creates a provider backed by the given counts. The map is
// copied; later mutation of the argument does not affect the provider.
func NewStaticProvider(counts map[string]int64) *StaticProvider {
	copied := make(map[string]int64, len(counts))
	for k, v := range counts {
		copied[k] = v
	}
	return &StaticProvider{counts: copied}
}

// RowCount returns the stored count, or apperrors.ErrNotFound.
func (p *StaticProvider) RowCount(_ context.Context, table string) (int64, error) {
	if n, ok := p.counts[table]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("row count for %q: %w", table, apperrors.ErrNotFound)
}

// retryingProvider wraps a provider with bounded-attempt exponential backoff.
type retryingProvider struct {
	inner RowCountProvider
	cfg   *retry.Config
}

// WithRetry wraps provider so transient fetch failures are retried with
// exponential backoff. Permanent errors pass through immediately.
func WithRetry(provider RowCountProvider, cfg *retry.Config) RowCountProvider {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	return &retryingProvider{inner: provider, cfg: cfg}
}

func (p *retryingProvider) RowCount(ctx context.Context, table string) (int64, error) {
	return retry.DoWithResult(ctx, p.cfg, func() (int64, error) {
		return p.inner.RowCount(ctx, table)
	})
}
