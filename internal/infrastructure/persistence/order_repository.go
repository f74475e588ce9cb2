package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/sellstream/backend/internal/domain/analytics"
	"github.com/sellstream/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements analytics.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// ListOrders returns the orders matching the filter with their line
// items, oldest first. Orders without a placement date are included;
// the engine decides how to treat them.
func (r *GormOrderRepository) ListOrders(ctx context.Context, filter analytics.OrderFilter) ([]analytics.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items")

	if filter.StartDate != nil {
		query = query.Where("placed_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		// End bound is a calendar date; include the whole day.
		query = query.Where("placed_at < ?", filter.EndDate.AddDate(0, 0, 1))
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		query = query.Where("LOWER(status) = LOWER(?)", filter.Status)
	}

	var rows []models.OrderModel
	if err := query.Order("placed_at ASC NULLS LAST, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]analytics.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, nil
}
