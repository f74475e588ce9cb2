package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Engine is the stateless sales analytics and forecasting engine. It is
// a pure calculation layer over caller-supplied orders: it never reads
// storage, holds no state between calls, and is safe for concurrent use.
type Engine struct{}

const (
	statusRefunded  = "refunded"
	statusCancelled = "cancelled"

	// Classification thresholds for trend direction, in percent.
	trendRisingAbove    = 5
	trendDecliningBelow = -5

	// 95% confidence multiplier for the normal approximation.
	confidenceZ = 1.96
)

type bucketAccum struct {
	orders    int
	items     int
	gross     decimal.Decimal
	refunds   int
	refundAmt decimal.Decimal
	customers map[string]struct{}
}

func newBucketAccum() *bucketAccum {
	return &bucketAccum{
		gross:     decimal.Zero,
		refundAmt: decimal.Zero,
		customers: make(map[string]struct{}),
	}
}

// inRange reports whether the order date passes the optional bounds.
func inRange(d time.Time, start, end *time.Time) bool {
	if start != nil && d.Before(DateOf(*start)) {
		return false
	}
	if end != nil && d.After(DateOf(*end)) {
		return false
	}
	return true
}

// Aggregate buckets orders into per-period sales metrics, emitted in
// ascending bucket-start order. Orders without a date, or outside the
// optional [start, end] range, are skipped silently.
//
// Refunded orders add to the bucket's refund counters only; every other
// status (including cancelled) counts as a normal order. Net revenue is
// gross minus the refund amounts landing in the same bucket, so a
// refund-only bucket goes negative.
func (Engine) Aggregate(orders []Order, period Period, start, end *time.Time) []SalesMetric {
	buckets := make(map[time.Time]*bucketAccum)

	for _, o := range orders {
		if o.PlacedAt == nil {
			continue
		}
		odate := *o.PlacedAt
		if !inRange(odate, start, end) {
			continue
		}

		key := period.Start(odate)
		b, ok := buckets[key]
		if !ok {
			b = newBucketAccum()
			buckets[key] = b
		}

		if strings.ToLower(o.Status) == statusRefunded {
			b.refunds++
			b.refundAmt = b.refundAmt.Add(o.Total)
		} else {
			b.orders++
			b.gross = b.gross.Add(o.Total)
			if len(o.Items) == 0 {
				b.items++
			} else {
				for _, item := range o.Items {
					b.items += item.Quantity
				}
			}
		}

		if cust := o.CustomerKey(); cust != "" {
			b.customers[cust] = struct{}{}
		}
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	metrics := make([]SalesMetric, 0, len(keys))
	for _, pstart := range keys {
		b := buckets[pstart]
		avg := decimal.Zero
		if b.orders > 0 {
			avg = b.gross.Div(decimal.NewFromInt(int64(b.orders))).Round(2)
		}
		metrics = append(metrics, SalesMetric{
			PeriodStart:     pstart,
			PeriodEnd:       period.End(pstart),
			OrderCount:      b.orders,
			ItemCount:       b.items,
			GrossRevenue:    b.gross.Round(2),
			NetRevenue:      b.gross.Sub(b.refundAmt).Round(2),
			AvgOrderValue:   avg,
			RefundCount:     b.refunds,
			RefundAmount:    b.refundAmt.Round(2),
			UniqueCustomers: len(b.customers),
		})
	}
	return metrics
}

// excludedFromRanking filters out the statuses that never contribute to
// product, platform, or customer rankings.
func excludedFromRanking(status string) bool {
	s := strings.ToLower(status)
	return s == statusCancelled || s == statusRefunded
}

type productAccum struct {
	title   string
	units   int
	revenue decimal.Decimal
	orders  map[string]struct{}
}

// TopProducts ranks products by accumulated revenue, descending, and
// returns at most limit entries. Cancelled and refunded orders are
// excluded. When a line item carries only a unit price its revenue is
// unit price x quantity; an explicit differing line total is taken
// as-is since it already covers the whole line.
func (Engine) TopProducts(orders []Order, limit int, start, end *time.Time) []TopProduct {
	products := make(map[string]*productAccum)

	for _, o := range orders {
		if o.PlacedAt == nil || !inRange(*o.PlacedAt, start, end) {
			continue
		}
		if excludedFromRanking(o.Status) {
			continue
		}

		ref := o.Ref()
		for _, item := range o.Items {
			p, ok := products[item.SKU]
			if !ok {
				p = &productAccum{revenue: decimal.Zero, orders: make(map[string]struct{})}
				products[item.SKU] = p
			}
			if p.title == "" {
				p.title = item.Title
			}
			p.units += item.Quantity
			if item.LineTotal.Equal(item.UnitPrice) {
				p.revenue = p.revenue.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			} else {
				p.revenue = p.revenue.Add(item.LineTotal)
			}
			p.orders[ref] = struct{}{}
		}
	}

	ranked := make([]TopProduct, 0, len(products))
	for sku, p := range products {
		ranked = append(ranked, TopProduct{
			SKU:        sku,
			Title:      p.title,
			UnitsSold:  p.units,
			Revenue:    p.revenue.Round(2),
			OrderCount: len(p.orders),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

type platformAccum struct {
	count   int
	revenue decimal.Decimal
}

// PlatformBreakdown splits revenue per sales platform with each
// platform's share of the total, sorted by revenue descending. The
// shares sum to 100 modulo rounding whenever total revenue is non-zero.
func (Engine) PlatformBreakdown(orders []Order, start, end *time.Time) []PlatformBreakdown {
	platforms := make(map[string]*platformAccum)
	total := decimal.Zero

	for _, o := range orders {
		if o.PlacedAt == nil || !inRange(*o.PlacedAt, start, end) {
			continue
		}
		if excludedFromRanking(o.Status) {
			continue
		}

		name := o.Platform
		if name == "" {
			name = "unknown"
		}
		p, ok := platforms[name]
		if !ok {
			p = &platformAccum{revenue: decimal.Zero}
			platforms[name] = p
		}
		p.count++
		p.revenue = p.revenue.Add(o.Total)
		total = total.Add(o.Total)
	}

	result := make([]PlatformBreakdown, 0, len(platforms))
	for name, p := range platforms {
		share := decimal.Zero
		if !total.IsZero() {
			share = p.revenue.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		avg := decimal.Zero
		if p.count > 0 {
			avg = p.revenue.Div(decimal.NewFromInt(int64(p.count))).Round(2)
		}
		result = append(result, PlatformBreakdown{
			Platform:      name,
			OrderCount:    p.count,
			Revenue:       p.revenue.Round(2),
			SharePct:      share,
			AvgOrderValue: avg,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Revenue.GreaterThan(result[j].Revenue)
	})
	return result
}

type customerAccum struct {
	name   string
	orders int
	spent  decimal.Decimal
	first  time.Time
	last   time.Time
}

// CustomerLTV ranks customers by total spend, descending, returning at
// most limit entries. Orders without any customer identity are skipped;
// cancelled and refunded orders never count.
func (Engine) CustomerLTV(orders []Order, limit int) []CustomerValue {
	customers := make(map[string]*customerAccum)

	for _, o := range orders {
		if o.PlacedAt == nil {
			continue
		}
		if excludedFromRanking(o.Status) {
			continue
		}
		key := o.CustomerKey()
		if key == "" {
			continue
		}

		c, ok := customers[key]
		if !ok {
			c = &customerAccum{spent: decimal.Zero}
			customers[key] = c
		}
		if c.name == "" {
			c.name = o.CustomerName
		}
		odate := *o.PlacedAt
		if c.orders == 0 || odate.Before(c.first) {
			c.first = odate
		}
		if c.orders == 0 || odate.After(c.last) {
			c.last = odate
		}
		c.orders++
		c.spent = c.spent.Add(o.Total)
	}

	ranked := make([]CustomerValue, 0, len(customers))
	for key, c := range customers {
		avg := decimal.Zero
		if c.orders > 0 {
			avg = c.spent.Div(decimal.NewFromInt(int64(c.orders))).Round(2)
		}
		ranked = append(ranked, CustomerValue{
			CustomerID:    key,
			CustomerName:  c.name,
			TotalOrders:   c.orders,
			TotalSpent:    c.spent.Round(2),
			FirstOrder:    c.first,
			LastOrder:     c.last,
			AvgOrderValue: avg,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSpent.GreaterThan(ranked[j].TotalSpent)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DetectTrend compares the last two periods of a metric series. With
// fewer than two periods the series is reported as stable with zero
// change. A previous value of zero yields +100% when the current value
// is positive, otherwise 0.
func (Engine) DetectTrend(metrics []SalesMetric, field TrendField) TrendAnalysis {
	if len(metrics) < 2 {
		value := decimal.Zero
		if len(metrics) == 1 {
			value = metrics[0].fieldValue(field)
		}
		return TrendAnalysis{
			Direction:       TrendStable,
			ChangePct:       decimal.Zero,
			CurrentValue:    value,
			PreviousValue:   value,
			PeriodsAnalyzed: len(metrics),
		}
	}

	current := metrics[len(metrics)-1].fieldValue(field)
	previous := metrics[len(metrics)-2].fieldValue(field)

	var change decimal.Decimal
	if previous.IsZero() {
		if current.IsPositive() {
			change = decimal.NewFromInt(100)
		} else {
			change = decimal.Zero
		}
	} else {
		change = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	}

	direction := TrendStable
	switch {
	case change.GreaterThan(decimal.NewFromInt(trendRisingAbove)):
		direction = TrendRising
	case change.LessThan(decimal.NewFromInt(trendDecliningBelow)):
		direction = TrendDeclining
	}

	return TrendAnalysis{
		Direction:       direction,
		ChangePct:       change,
		CurrentValue:    current.Round(2),
		PreviousValue:   previous.Round(2),
		PeriodsAnalyzed: len(metrics),
	}
}

// Forecast projects gross revenue periodsAhead steps forward using the
// mean of the trailing window as a flat prediction for every step, with
// a 95% confidence band from the window's sample standard deviation
// (falling back to 10% of the mean for a single-value window). The
// forecast cadence equals the day gap between the last two bucket
// starts; fewer than two historical buckets yield no forecast.
func (Engine) Forecast(metrics []SalesMetric, periodsAhead, window int) []ForecastPoint {
	if len(metrics) < 2 || periodsAhead <= 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultReportParams().ForecastWindow
	}

	w := window
	if w > len(metrics) {
		w = len(metrics)
	}
	recent := make([]float64, 0, w)
	for _, m := range metrics[len(metrics)-w:] {
		recent = append(recent, m.GrossRevenue.InexactFloat64())
	}

	mean := 0.0
	for _, v := range recent {
		mean += v
	}
	mean /= float64(len(recent))

	var std float64
	if len(recent) >= 2 {
		var ss float64
		for _, v := range recent {
			ss += (v - mean) * (v - mean)
		}
		std = math.Sqrt(ss / float64(len(recent)-1))
	} else {
		std = mean * 0.1
	}

	lastEnd := metrics[len(metrics)-1].PeriodEnd
	cadence := int(metrics[len(metrics)-1].PeriodStart.Sub(metrics[len(metrics)-2].PeriodStart).Hours() / 24)
	if cadence == 0 {
		cadence = 1
	}

	predicted := decimal.NewFromFloat(mean).Round(2)
	margin := decimal.NewFromFloat(std * confidenceZ).Round(2)
	low := predicted.Sub(margin)
	if low.IsNegative() {
		low = decimal.Zero
	}
	high := predicted.Add(margin)

	points := make([]ForecastPoint, 0, periodsAhead)
	for i := 1; i <= periodsAhead; i++ {
		points = append(points, ForecastPoint{
			Period:           lastEnd.AddDate(0, 0, cadence*i),
			PredictedRevenue: predicted,
			ConfidenceLow:    low,
			ConfidenceHigh:   high,
		})
	}
	return points
}

// GenerateReport runs the full pipeline: aggregation, product and
// platform rankings, trend detection on gross revenue and order count,
// and the revenue forecast. Effective start/end dates default to the
// first/last bucket boundaries, or to today when nothing aggregated.
func (e Engine) GenerateReport(orders []Order, params ReportParams) *AnalyticsReport {
	p := params.withDefaults()

	metrics := e.Aggregate(orders, p.Period, p.StartDate, p.EndDate)
	tops := e.TopProducts(orders, p.TopN, p.StartDate, p.EndDate)
	platforms := e.PlatformBreakdown(orders, p.StartDate, p.EndDate)

	var revenueTrend, orderTrend *TrendAnalysis
	if len(metrics) > 0 {
		rt := e.DetectTrend(metrics, TrendFieldGrossRevenue)
		ot := e.DetectTrend(metrics, TrendFieldOrderCount)
		revenueTrend = &rt
		orderTrend = &ot
	}

	var forecast []ForecastPoint
	if len(metrics) >= 2 {
		forecast = e.Forecast(metrics, p.ForecastPeriods, p.ForecastWindow)
	}

	start, end := effectiveRange(p, metrics)

	return &AnalyticsReport{
		Period:            p.Period,
		StartDate:         start,
		EndDate:           end,
		Metrics:           metrics,
		TopProducts:       tops,
		PlatformBreakdown: platforms,
		RevenueTrend:      revenueTrend,
		OrderTrend:        orderTrend,
		Forecast:          forecast,
		GeneratedAt:       time.Now().UTC(),
	}
}

func effectiveRange(p ReportParams, metrics []SalesMetric) (time.Time, time.Time) {
	today := DateOf(time.Now().UTC())
	start, end := today, today
	if len(metrics) > 0 {
		start = metrics[0].PeriodStart
		end = metrics[len(metrics)-1].PeriodEnd
	}
	if p.StartDate != nil {
		start = DateOf(*p.StartDate)
	}
	if p.EndDate != nil {
		end = DateOf(*p.EndDate)
	}
	return start, end
}
