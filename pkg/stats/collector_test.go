package stats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuflow-io/docuflow-engine/pkg/apperrors"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(map[string]int64{"users": 100})

	n, err := p.RowCount(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)

	_, err = p.RowCount(context.Background(), "orders")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

type flakyProvider struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *flakyProvider) RowCount(_ context.Context, _ string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return 0, errors.New("connection refused")
	}
	return 500, nil
}

func TestWithRetryRecoversTransientFailure(t *testing.T) {
	p := WithRetry(&flakyProvider{failures: 2}, nil)
	n, err := p.RowCount(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)
}

func newTestCollector(p RowCountProvider, workers int, timeout time.Duration) *Collector {
	return NewCollector(p, workers, timeout, 1000, zap.NewNop())
}

func TestCollectWithoutProviderUsesDefaults(t *testing.T) {
	c := newTestCollector(nil, 4, time.Second)
	counts, estimated := c.Collect(context.Background(), []string{"users", "orders", "users"})

	assert.Equal(t, map[string]int64{"users": 1000, "orders": 1000}, counts)
	assert.Equal(t, []string{"orders", "users"}, estimated)
}

func TestCollectFetchesAllTables(t *testing.T) {
	p := NewStaticProvider(map[string]int64{"users": 50, "orders": 9000})
	c := newTestCollector(p, 2, time.Second)

	counts, estimated := c.Collect(context.Background(), []string{"users", "orders"})
	assert.Equal(t, map[string]int64{"users": 50, "orders": 9000}, counts)
	assert.Empty(t, estimated)
}

func TestCollectFallsBackPerTable(t *testing.T) {
	p := NewStaticProvider(map[string]int64{"users": 50})
	c := newTestCollector(p, 4, time.Second)

	counts, estimated := c.Collect(context.Background(), []string{"users", "orders", "products"})
	assert.Equal(t, int64(50), counts["users"])
	assert.Equal(t, int64(1000), counts["orders"])
	assert.Equal(t, int64(1000), counts["products"])
	assert.Equal(t, []string{"orders", "products"}, estimated)
}

type slowProvider struct{ delay time.Duration }

func (p *slowProvider) RowCount(ctx context.Context, _ string) (int64, error) {
	select {
	case <-time.After(p.delay):
		return 7, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func TestCollectTimesOutToDefault(t *testing.T) {
	c := newTestCollector(&slowProvider{delay: time.Second}, 2, 10*time.Millisecond)

	counts, estimated := c.Collect(context.Background(), []string{"users"})
	assert.Equal(t, int64(1000), counts["users"])
	assert.Equal(t, []string{"users"}, estimated)
}

type countingProvider struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (p *countingProvider) RowCount(_ context.Context, _ string) (int64, error) {
	p.mu.Lock()
	p.active++
	if p.active > p.maxSeen {
		p.maxSeen = p.active
	}
	p.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	return 1, nil
}

func TestCollectBoundsConcurrency(t *testing.T) {
	p := &countingProvider{}
	c := newTestCollector(p, 2, time.Second)

	tables := []string{"a", "b", "c", "d", "e", "f"}
	counts, _ := c.Collect(context.Background(), tables)

	assert.Len(t, counts, len(tables))
	assert.LessOrEqual(t, p.maxSeen, 2)
}

func TestCollectClampsNegativeCounts(t *testing.T) {
	p := NewStaticProvider(map[string]int64{"weird": -5})
	c := newTestCollector(p, 1, time.Second)

	counts, estimated := c.Collect(context.Background(), []string{"weird"})
	assert.Equal(t, int64(0), counts["weird"])
	assert.Empty(t, estimated)
}
