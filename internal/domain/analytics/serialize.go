package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ReportToMap flattens a report into an order-preserving nested mapping
// of primitives: monetary values as 2-decimal strings, dates as
// ISO-8601 strings. This is the canonical external representation and
// is lossless, so any transport (JSON body, message payload, CSV
// export) can be derived from it.
func ReportToMap(r *AnalyticsReport) map[string]any {
	totalOrders := 0
	totalRefunds := 0
	totalRevenue := decimal.Zero
	for _, m := range r.Metrics {
		totalOrders += m.OrderCount
		totalRefunds += m.RefundCount
		totalRevenue = totalRevenue.Add(m.GrossRevenue)
	}
	divisor := totalOrders
	if divisor < 1 {
		divisor = 1
	}
	avgOrderValue := totalRevenue.Div(decimal.NewFromInt(int64(divisor))).Round(2)

	metrics := make([]map[string]any, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		metrics = append(metrics, map[string]any{
			"period_start":     m.PeriodStart.Format(dateLayout),
			"period_end":       m.PeriodEnd.Format(dateLayout),
			"order_count":      m.OrderCount,
			"item_count":       m.ItemCount,
			"gross_revenue":    m.GrossRevenue.StringFixed(2),
			"net_revenue":      m.NetRevenue.StringFixed(2),
			"avg_order_value":  m.AvgOrderValue.StringFixed(2),
			"refund_count":     m.RefundCount,
			"refund_amount":    m.RefundAmount.StringFixed(2),
			"unique_customers": m.UniqueCustomers,
		})
	}

	tops := make([]map[string]any, 0, len(r.TopProducts))
	for _, tp := range r.TopProducts {
		tops = append(tops, map[string]any{
			"sku":         tp.SKU,
			"title":       tp.Title,
			"units_sold":  tp.UnitsSold,
			"revenue":     tp.Revenue.StringFixed(2),
			"order_count": tp.OrderCount,
		})
	}

	platforms := make([]map[string]any, 0, len(r.PlatformBreakdown))
	for _, pb := range r.PlatformBreakdown {
		platforms = append(platforms, map[string]any{
			"platform":        pb.Platform,
			"order_count":     pb.OrderCount,
			"revenue":         pb.Revenue.StringFixed(2),
			"share_pct":       pb.SharePct.StringFixed(2),
			"avg_order_value": pb.AvgOrderValue.StringFixed(2),
		})
	}

	forecast := make([]map[string]any, 0, len(r.Forecast))
	for _, fp := range r.Forecast {
		forecast = append(forecast, map[string]any{
			"period":    fp.Period.Format(dateLayout),
			"predicted": fp.PredictedRevenue.StringFixed(2),
			"low":       fp.ConfidenceLow.StringFixed(2),
			"high":      fp.ConfidenceHigh.StringFixed(2),
		})
	}

	return map[string]any{
		"period":       string(r.Period),
		"start_date":   r.StartDate.Format(dateLayout),
		"end_date":     r.EndDate.Format(dateLayout),
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
		"summary": map[string]any{
			"total_orders":    totalOrders,
			"total_revenue":   totalRevenue.StringFixed(2),
			"total_refunds":   totalRefunds,
			"avg_order_value": avgOrderValue.StringFixed(2),
		},
		"metrics":            metrics,
		"top_products":       tops,
		"platform_breakdown": platforms,
		"revenue_trend":      trendToMap(r.RevenueTrend),
		"order_trend":        trendToMap(r.OrderTrend),
		"forecast":           forecast,
	}
}

func trendToMap(t *TrendAnalysis) map[string]any {
	if t == nil {
		return nil
	}
	return map[string]any{
		"direction":        string(t.Direction),
		"change_pct":       t.ChangePct.StringFixed(2),
		"current_value":    t.CurrentValue.StringFixed(2),
		"previous_value":   t.PreviousValue.StringFixed(2),
		"periods_analyzed": t.PeriodsAnalyzed,
	}
}
