package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/sellstream/backend/internal/domain/analytics"
)

type stubOrderRepo struct {
	orders     []domain.Order
	err        error
	calls      int
	lastFilter domain.OrderFilter
}

func (r *stubOrderRepo) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.calls++
	r.lastFilter = filter
	return r.orders, r.err
}

type stubCache struct {
	entries     map[string]map[string]any
	sets        int
	invalidated bool
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]map[string]any)}
}

func (c *stubCache) Get(_ context.Context, key string) (map[string]any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *stubCache) Set(_ context.Context, key string, report map[string]any, _ time.Duration) {
	c.sets++
	c.entries[key] = report
}

func (c *stubCache) Invalidate(_ context.Context) {
	c.invalidated = true
	c.entries = make(map[string]map[string]any)
}

func testOrders() []domain.Order {
	return domain.OrdersFromRecords([]map[string]any{
		{
			"order_number": "ORD-001", "platform": "amazon", "status": "delivered",
			"total": "29.99", "customer_email": "alice@test.com", "created_at": "2026-01-05",
			"items": []any{
				map[string]any{"sku": "SKU-A", "title": "Widget A", "quantity": 2, "unit_price": "10.00", "total_price": "20.00"},
			},
		},
		{
			"order_number": "ORD-002", "platform": "shopify", "status": "delivered",
			"total": "15.00", "customer_email": "bob@test.com", "created_at": "2026-02-03",
			"items": []any{
				map[string]any{"sku": "SKU-B", "title": "Widget B", "quantity": 1, "unit_price": "15.00", "total_price": "15.00"},
			},
		},
	})
}

func TestServiceGenerateReport(t *testing.T) {
	t.Run("serializes a full report from stored orders", func(t *testing.T) {
		repo := &stubOrderRepo{orders: testOrders()}
		svc := NewService(repo, zap.NewNop())

		out, err := svc.GenerateReport(context.Background(), ReportRequest{Period: "monthly"})

		require.NoError(t, err)
		assert.Equal(t, 1, repo.calls)
		assert.Equal(t, "monthly", out["period"])
		assert.Contains(t, out, "summary")
		assert.Contains(t, out, "metrics")
	})

	t.Run("passes the date window to the repository", func(t *testing.T) {
		repo := &stubOrderRepo{}
		svc := NewService(repo, zap.NewNop())
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		_, err := svc.GenerateReport(context.Background(), ReportRequest{Period: "monthly", StartDate: &start})

		require.NoError(t, err)
		require.NotNil(t, repo.lastFilter.StartDate)
		assert.Equal(t, start, *repo.lastFilter.StartDate)
	})

	t.Run("rejects unknown period", func(t *testing.T) {
		svc := NewService(&stubOrderRepo{}, zap.NewNop())

		_, err := svc.GenerateReport(context.Background(), ReportRequest{Period: "hourly"})

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		repo := &stubOrderRepo{err: errors.New("connection refused")}
		svc := NewService(repo, zap.NewNop())

		_, err := svc.GenerateReport(context.Background(), ReportRequest{Period: "monthly"})

		assert.Error(t, err)
	})

	t.Run("second identical request hits the cache", func(t *testing.T) {
		repo := &stubOrderRepo{orders: testOrders()}
		cache := newStubCache()
		svc := NewCachedService(repo, cache, time.Minute, zap.NewNop())

		_, err := svc.GenerateReport(context.Background(), ReportRequest{Period: "monthly"})
		require.NoError(t, err)
		_, err = svc.GenerateReport(context.Background(), ReportRequest{Period: "monthly"})
		require.NoError(t, err)

		assert.Equal(t, 1, repo.calls)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("different parameters use different cache keys", func(t *testing.T) {
		repo := &stubOrderRepo{orders: testOrders()}
		cache := newStubCache()
		svc := NewCachedService(repo, cache, time.Minute, zap.NewNop())

		_, err := svc.GenerateReport(context.Background(), ReportRequest{Period: "monthly"})
		require.NoError(t, err)
		_, err = svc.GenerateReport(context.Background(), ReportRequest{Period: "weekly"})
		require.NoError(t, err)

		assert.Equal(t, 2, repo.calls)
	})
}

func TestServiceBuildReport(t *testing.T) {
	t.Run("computes over raw records without storage", func(t *testing.T) {
		repo := &stubOrderRepo{}
		svc := NewService(repo, zap.NewNop())

		out, err := svc.BuildReport(context.Background(), []map[string]any{
			{"order_number": "R1", "status": "delivered", "total": "10", "created_at": "2026-01-05"},
		}, ReportRequest{Period: "monthly"})

		require.NoError(t, err)
		assert.Equal(t, 0, repo.calls)
		summary := out["summary"].(map[string]any)
		assert.Equal(t, 1, summary["total_orders"])
	})
}

func TestServiceRankings(t *testing.T) {
	t.Run("top products with default limit", func(t *testing.T) {
		svc := NewService(&stubOrderRepo{orders: testOrders()}, zap.NewNop())

		tops, err := svc.TopProducts(context.Background(), RankingRequest{})

		require.NoError(t, err)
		require.Len(t, tops, 2)
		assert.Equal(t, "SKU-A", tops[0].SKU)
	})

	t.Run("platform breakdown", func(t *testing.T) {
		svc := NewService(&stubOrderRepo{orders: testOrders()}, zap.NewNop())

		breakdown, err := svc.PlatformBreakdown(context.Background(), RankingRequest{})

		require.NoError(t, err)
		assert.Len(t, breakdown, 2)
	})

	t.Run("customer ltv ignores the date window", func(t *testing.T) {
		repo := &stubOrderRepo{orders: testOrders()}
		svc := NewService(repo, zap.NewNop())

		customers, err := svc.CustomerLTV(context.Background(), 0)

		require.NoError(t, err)
		assert.Len(t, customers, 2)
		assert.Nil(t, repo.lastFilter.StartDate)
	})
}

func TestServiceInvalidateReports(t *testing.T) {
	t.Run("drops cached reports", func(t *testing.T) {
		cache := newStubCache()
		svc := NewCachedService(&stubOrderRepo{}, cache, time.Minute, zap.NewNop())

		svc.InvalidateReports(context.Background())

		assert.True(t, cache.invalidated)
	})

	t.Run("no-op without cache", func(t *testing.T) {
		svc := NewService(&stubOrderRepo{}, zap.NewNop())
		svc.InvalidateReports(context.Background())
	})
}
