package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellstream/backend/internal/domain/analytics"
	"github.com/sellstream/backend/internal/infrastructure/telemetry"
)

// ErrInvalidPeriod is returned when a request names an unsupported
// period granularity.
var ErrInvalidPeriod = errors.New("invalid period granularity")

// ReportCache stores serialized reports keyed by their parameters so
// repeated report requests skip the order fetch and recomputation.
// A miss is not an error; implementations swallow transport failures
// and report them as misses.
type ReportCache interface {
	Get(ctx context.Context, key string) (map[string]any, bool)
	Set(ctx context.Context, key string, report map[string]any, ttl time.Duration)
	Invalidate(ctx context.Context)
}

// ReportRequest carries the tuning parameters for one report run.
type ReportRequest struct {
	Period          string
	StartDate       *time.Time
	EndDate         *time.Time
	TopN            int
	ForecastPeriods int
	ForecastWindow  int
	Platform        string
}

// RankingRequest carries the parameters shared by the ranking
// endpoints (top products, platform breakdown, customer LTV).
type RankingRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Service orchestrates the analytics engine over stored orders. The
// engine itself is stateless; the service owns the order fetch and the
// optional report cache.
type Service struct {
	orders   analytics.OrderRepository
	cache    ReportCache
	cacheTTL time.Duration
	engine   analytics.Engine
	logger   *zap.Logger
}

// NewService creates a service without report caching.
func NewService(orders analytics.OrderRepository, logger *zap.Logger) *Service {
	return &Service{
		orders: orders,
		logger: logger,
	}
}

// NewCachedService creates a service that memoizes serialized reports
// in the given cache for ttl.
func NewCachedService(orders analytics.OrderRepository, cache ReportCache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger,
	}
}

func (s *Service) params(req ReportRequest) (analytics.ReportParams, error) {
	period, ok := analytics.ParsePeriod(req.Period)
	if !ok {
		return analytics.ReportParams{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, req.Period)
	}
	p := analytics.DefaultReportParams()
	p.Period = period
	p.StartDate = req.StartDate
	p.EndDate = req.EndDate
	if req.TopN > 0 {
		p.TopN = req.TopN
	}
	if req.ForecastPeriods > 0 {
		p.ForecastPeriods = req.ForecastPeriods
	}
	if req.ForecastWindow > 0 {
		p.ForecastWindow = req.ForecastWindow
	}
	return p, nil
}

func cacheKey(req ReportRequest) string {
	start, end := "", ""
	if req.StartDate != nil {
		start = req.StartDate.Format("2006-01-02")
	}
	if req.EndDate != nil {
		end = req.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("analytics:report:%s:%s:%s:%s:%d:%d:%d",
		req.Period, req.Platform, start, end, req.TopN, req.ForecastPeriods, req.ForecastWindow)
}

// GenerateReport fetches the order snapshot from storage, runs the
// full analytics pipeline and returns the serialized report. Results
// are cached by parameter set when a cache is configured.
func (s *Service) GenerateReport(ctx context.Context, req ReportRequest) (map[string]any, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "generate_report",
		telemetry.WithAttribute("period", req.Period))
	defer span.End()

	key := cacheKey(req)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			s.logger.Debug("analytics report served from cache", zap.String("key", key))
			telemetry.SetAttribute(span, "cache_hit", true)
			return cached, nil
		}
	}

	orders, err := s.orders.ListOrders(ctx, analytics.OrderFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Platform:  req.Platform,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out, err := s.buildReport(ctx, orders, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, out, s.cacheTTL)
	}
	return out, nil
}

// BuildReport runs the pipeline over caller-supplied raw records
// without touching storage or the cache. This is the path used when an
// integration posts an order batch directly for ad-hoc analysis.
func (s *Service) BuildReport(ctx context.Context, records []map[string]any, req ReportRequest) (map[string]any, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "build_report",
		telemetry.WithAttribute("records", len(records)))
	defer span.End()

	orders := analytics.OrdersFromRecords(records)
	return s.buildReport(ctx, orders, req)
}

func (s *Service) buildReport(_ context.Context, orders []analytics.Order, req ReportRequest) (map[string]any, error) {
	params, err := s.params(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := s.engine.GenerateReport(orders, params)
	s.logger.Info("analytics report generated",
		zap.String("period", string(params.Period)),
		zap.Int("orders", len(orders)),
		zap.Int("buckets", len(report.Metrics)),
		zap.Duration("took", time.Since(start)))

	return analytics.ReportToMap(report), nil
}

// TopProducts returns the revenue-ranked product list over stored
// orders in the requested window.
func (s *Service) TopProducts(ctx context.Context, req RankingRequest) ([]analytics.TopProduct, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "top_products")
	defer span.End()

	orders, err := s.orders.ListOrders(ctx, analytics.OrderFilter{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = analytics.DefaultReportParams().TopN
	}
	return s.engine.TopProducts(orders, limit, req.StartDate, req.EndDate), nil
}

// PlatformBreakdown returns per-platform revenue shares over stored
// orders in the requested window.
func (s *Service) PlatformBreakdown(ctx context.Context, req RankingRequest) ([]analytics.PlatformBreakdown, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "platform_breakdown")
	defer span.End()

	orders, err := s.orders.ListOrders(ctx, analytics.OrderFilter{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.engine.PlatformBreakdown(orders, req.StartDate, req.EndDate), nil
}

// defaultLTVLimit bounds the customer ranking when the caller does not
// ask for a specific size.
const defaultLTVLimit = 20

// CustomerLTV returns the spend-ranked customer list over all stored
// orders. Lifetime value deliberately ignores any date window.
func (s *Service) CustomerLTV(ctx context.Context, limit int) ([]analytics.CustomerValue, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "customer_ltv")
	defer span.End()

	orders, err := s.orders.ListOrders(ctx, analytics.OrderFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if limit <= 0 {
		limit = defaultLTVLimit
	}
	return s.engine.CustomerLTV(orders, limit), nil
}

// InvalidateReports drops every cached report. Callers invoke this
// after bulk order imports so the next report reflects fresh data.
func (s *Service) InvalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("analytics report cache invalidated")
}
