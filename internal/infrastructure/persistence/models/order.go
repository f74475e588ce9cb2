// Package models contains GORM-specific persistence models that map to
// database tables. Domain types stay free of ORM tags; these models own
// the table mappings and convert to the engine's read view.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellstream/backend/internal/domain/analytics"
)

// OrderModel is the persistence model for an imported sales order.
// Orders arrive from external channel integrations and are append-only
// from the analytics engine's point of view.
type OrderModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderNumber   string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Platform      string           `gorm:"type:varchar(50);not null;index"`
	Status        string           `gorm:"type:varchar(20);not null;index"`
	Total         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	CustomerName  string           `gorm:"type:varchar(200)"`
	CustomerEmail string           `gorm:"type:varchar(200);index"`
	PlacedAt      *time.Time       `gorm:"index"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt     time.Time        `gorm:"not null"`
	UpdatedAt     time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for one order line.
// TotalPrice is nullable; a NULL means the source supplied only a unit
// price and line revenue is derived as unit price times quantity.
type OrderItemModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	SKU        string           `gorm:"type:varchar(100);not null;index"`
	Title      string           `gorm:"type:varchar(300)"`
	Quantity   int              `gorm:"not null;default:1"`
	UnitPrice  decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TotalPrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
	CreatedAt  time.Time        `gorm:"not null"`
	UpdatedAt  time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to the engine's order view.
func (m *OrderModel) ToDomain() analytics.Order {
	order := analytics.Order{
		Number:        m.OrderNumber,
		ID:            m.ID.String(),
		Platform:      m.Platform,
		Status:        m.Status,
		Total:         m.Total,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
	}
	if m.PlacedAt != nil {
		d := analytics.DateOf(*m.PlacedAt)
		order.PlacedAt = &d
	}
	if len(m.Items) > 0 {
		order.Items = make([]analytics.LineItem, len(m.Items))
		for i, item := range m.Items {
			order.Items[i] = item.ToDomain()
		}
	}
	return order
}

// ToDomain converts the persistence model to an engine line item.
func (m *OrderItemModel) ToDomain() analytics.LineItem {
	li := analytics.LineItem{
		SKU:       m.SKU,
		Title:     m.Title,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		LineTotal: m.UnitPrice,
	}
	if m.TotalPrice != nil {
		li.LineTotal = *m.TotalPrice
	}
	return li
}
