package analytics

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// dateKeys is the ordered list of record keys probed for an order date.
var dateKeys = []string{"created_at", "ordered_at", "date", "order_date"}

// dateLayouts are the accepted ISO-8601 shapes, probed in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LineItem is one product line inside an order. LineTotal carries the
// explicit line total when the source supplied one; when only a unit
// price was given, LineTotal equals UnitPrice and revenue is derived as
// UnitPrice x Quantity.
type LineItem struct {
	SKU       string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Order is the engine's read-only view of a sales order. It is built
// once at the boundary (HTTP body or database row); monetary fields are
// decimal from that point on and never re-parsed. A nil PlacedAt means
// the source record carried no usable date and the order is skipped by
// aggregation and ranking.
type Order struct {
	Number        string
	ID            string
	Platform      string
	Status        string
	Total         decimal.Decimal
	CustomerName  string
	CustomerEmail string
	Items         []LineItem
	PlacedAt      *time.Time
}

// Ref returns the identifier used to count distinct orders per product:
// the order number, falling back to the raw id.
func (o Order) Ref() string {
	if o.Number != "" {
		return o.Number
	}
	return o.ID
}

// CustomerKey returns the identity used for customer grouping: email,
// falling back to name. Empty means the order has no customer identity.
func (o Order) CustomerKey() string {
	if o.CustomerEmail != "" {
		return o.CustomerEmail
	}
	return o.CustomerName
}

// OrderFromRecord builds an Order from an open associative record, as
// delivered by external channel integrations. Unknown fields are
// ignored; missing fields degrade to zero values rather than erroring.
func OrderFromRecord(rec map[string]any) Order {
	o := Order{
		Number:        stringField(rec, "order_number"),
		ID:            stringField(rec, "id"),
		Platform:      stringField(rec, "platform"),
		Status:        stringField(rec, "status"),
		Total:         decimalField(rec, "total"),
		CustomerName:  stringField(rec, "customer_name"),
		CustomerEmail: stringField(rec, "customer_email"),
		PlacedAt:      ExtractOrderDate(rec),
	}

	rawItems, ok := rec["items"].([]any)
	if !ok {
		return o
	}
	for _, ri := range rawItems {
		item, ok := ri.(map[string]any)
		if !ok {
			continue
		}
		li := LineItem{
			SKU:       stringField(item, "sku"),
			Title:     stringField(item, "title"),
			Quantity:  intField(item, "quantity", 1),
			UnitPrice: decimalField(item, "unit_price"),
		}
		if li.SKU == "" {
			li.SKU = "unknown"
		}
		if _, present := item["total_price"]; present {
			li.LineTotal = decimalField(item, "total_price")
		} else {
			li.LineTotal = li.UnitPrice
		}
		o.Items = append(o.Items, li)
	}
	return o
}

// OrdersFromRecords converts a batch of raw records.
func OrdersFromRecords(recs []map[string]any) []Order {
	orders := make([]Order, 0, len(recs))
	for _, rec := range recs {
		orders = append(orders, OrderFromRecord(rec))
	}
	return orders
}

// ExtractOrderDate probes the well-known date keys in order and returns
// the first value interpretable as a calendar date, normalized to UTC
// midnight. Time-of-day is discarded. Returns nil when no key yields a
// parseable date; callers treat such records as dateless and skip them.
func ExtractOrderDate(rec map[string]any) *time.Time {
	for _, key := range dateKeys {
		val, ok := rec[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case time.Time:
			d := DateOf(v)
			return &d
		case *time.Time:
			if v != nil {
				d := DateOf(*v)
				return &d
			}
		case string:
			if d, ok := parseISODate(v); ok {
				return &d
			}
		}
	}
	return nil
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return time.Time{}, false
}

func stringField(rec map[string]any, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func intField(rec map[string]any, key string, fallback int) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// decimalField coerces a monetary record field into a decimal exactly
// once; malformed or absent values become zero.
func decimalField(rec map[string]any, key string) decimal.Decimal {
	switch v := rec[key].(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}
