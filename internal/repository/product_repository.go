package repository

import (
	"context"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
)

// ProductRepository persists products and the cached quantity.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Patch(ctx context.Context, id int64, patch domain.ProductPatch) error
	// AddQty adjusts the cached quantity by delta. Callers must only invoke
	// this when a transaction is finalized.
	AddQty(ctx context.Context, id int64, delta int64) error
	SetForecast(ctx context.Context, id int64, forecast *time.Time) error
	List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error)
	// ListOrderedByCategory returns the whole catalog ordered by category,
	// the order used to build stocktake chunks.
	ListOrderedByCategory(ctx context.Context) ([]*domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	CountOutOfStock(ctx context.Context) (int, error)
	CountForecastBefore(ctx context.Context, cutoff time.Time) (int, error)
}
