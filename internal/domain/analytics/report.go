package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend labels the direction of change between the last two periods.
type Trend string

const (
	TrendRising    Trend = "rising"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// TrendField selects which SalesMetric attribute a trend is computed on.
type TrendField string

const (
	TrendFieldGrossRevenue TrendField = "gross_revenue"
	TrendFieldNetRevenue   TrendField = "net_revenue"
	TrendFieldOrderCount   TrendField = "order_count"
)

// SalesMetric is one calendar bucket of aggregated sales figures.
// Monetary fields are quantized to 2 decimal places.
type SalesMetric struct {
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	OrderCount      int             `json:"order_count"`
	ItemCount       int             `json:"item_count"`
	GrossRevenue    decimal.Decimal `json:"gross_revenue"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	RefundCount     int             `json:"refund_count"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	UniqueCustomers int             `json:"unique_customers"`
}

// RefundRate returns refunds as a percentage of orders, 2 decimals.
func (m SalesMetric) RefundRate() decimal.Decimal {
	if m.OrderCount == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m.RefundCount)).
		Div(decimal.NewFromInt(int64(m.OrderCount))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// fieldValue returns the metric attribute selected by f.
func (m SalesMetric) fieldValue(f TrendField) decimal.Decimal {
	switch f {
	case TrendFieldNetRevenue:
		return m.NetRevenue
	case TrendFieldOrderCount:
		return decimal.NewFromInt(int64(m.OrderCount))
	default:
		return m.GrossRevenue
	}
}

// TopProduct is one entry of the revenue-ranked product list.
type TopProduct struct {
	SKU        string          `json:"sku"`
	Title      string          `json:"title"`
	UnitsSold  int             `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// PlatformBreakdown is per-platform revenue with its share of the total.
type PlatformBreakdown struct {
	Platform      string          `json:"platform"`
	OrderCount    int             `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	SharePct      decimal.Decimal `json:"share_pct"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// CustomerValue is one entry of the lifetime-value ranking.
type CustomerValue struct {
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalOrders   int             `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	FirstOrder    time.Time       `json:"first_order"`
	LastOrder     time.Time       `json:"last_order"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// LifetimeDays is the customer's active span in days, never below 1 so
// that frequency stays defined for single-day customers.
func (c CustomerValue) LifetimeDays() int {
	days := int(c.LastOrder.Sub(c.FirstOrder).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Frequency returns orders per 30 days, 2 decimals.
func (c CustomerValue) Frequency() decimal.Decimal {
	return decimal.NewFromInt(int64(c.TotalOrders)).
		Div(decimal.NewFromInt(int64(c.LifetimeDays()))).
		Mul(decimal.NewFromInt(30)).
		Round(2)
}

// TrendAnalysis describes the change between the last two periods of a
// metric series.
type TrendAnalysis struct {
	Direction       Trend           `json:"direction"`
	ChangePct       decimal.Decimal `json:"change_pct"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	PreviousValue   decimal.Decimal `json:"previous_value"`
	PeriodsAnalyzed int             `json:"periods_analyzed"`
}

// ForecastPoint is one projected period of the moving-average forecast.
type ForecastPoint struct {
	Period           time.Time       `json:"period"`
	PredictedRevenue decimal.Decimal `json:"predicted_revenue"`
	ConfidenceLow    decimal.Decimal `json:"confidence_low"`
	ConfidenceHigh   decimal.Decimal `json:"confidence_high"`
}

// AnalyticsReport is the aggregate root produced by GenerateReport.
// It is built once per request and immutable afterwards; the engine
// never persists it.
type AnalyticsReport struct {
	Period            Period              `json:"period"`
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`
	Metrics           []SalesMetric       `json:"metrics"`
	TopProducts       []TopProduct        `json:"top_products"`
	PlatformBreakdown []PlatformBreakdown `json:"platform_breakdown"`
	RevenueTrend      *TrendAnalysis      `json:"revenue_trend,omitempty"`
	OrderTrend        *TrendAnalysis      `json:"order_trend,omitempty"`
	Forecast          []ForecastPoint     `json:"forecast"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

// ReportParams are the tuning knobs for a full report run. Zero values
// are replaced by the defaults from DefaultReportParams.
type ReportParams struct {
	Period          Period
	StartDate       *time.Time
	EndDate         *time.Time
	TopN            int
	ForecastPeriods int
	ForecastWindow  int
}

// DefaultReportParams mirrors the defaults exposed by the API layer.
func DefaultReportParams() ReportParams {
	return ReportParams{
		Period:          PeriodMonthly,
		TopN:            10,
		ForecastPeriods: 3,
		ForecastWindow:  4,
	}
}

func (p ReportParams) withDefaults() ReportParams {
	def := DefaultReportParams()
	if !p.Period.IsValid() {
		p.Period = def.Period
	}
	if p.TopN <= 0 {
		p.TopN = def.TopN
	}
	if p.ForecastPeriods < 0 {
		p.ForecastPeriods = def.ForecastPeriods
	}
	if p.ForecastWindow <= 0 {
		p.ForecastWindow = def.ForecastWindow
	}
	return p
}
