// Package analytics implements the sales analytics and forecasting engine.
//
// The package is a pure calculation layer: it receives a snapshot of
// orders from the caller, buckets them on a calendar period, and derives
// revenue metrics, product/platform/customer rankings, trend detection
// and a moving-average revenue forecast. It performs no I/O and keeps no
// state between calls.
//
// Key types:
//   - Order: the engine's read-only view of a sales order, built once
//     at the ingestion boundary (HTTP body or database row)
//   - Engine: the stateless service exposing Aggregate, TopProducts,
//     PlatformBreakdown, CustomerLTV, DetectTrend, Forecast and
//     GenerateReport
//   - AnalyticsReport: the immutable aggregate root produced per request
//
// ReportToMap converts a report into the canonical primitive mapping
// used by every external transport.
package analytics
