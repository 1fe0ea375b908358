package repository

import (
	"context"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
)

// SupplierRepository persists suppliers, the supplier catalog cache and base
// stock levels.
type SupplierRepository interface {
	CreateSupplier(ctx context.Context, s *domain.Supplier) error
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
	GetSupplierProduct(ctx context.Context, supplierID int64, sku string) (*domain.SupplierProduct, error)
	GetSupplierProductByID(ctx context.Context, id int64) (*domain.SupplierProduct, error)
	// UpsertSupplierProduct inserts or refreshes the cache row keyed by
	// (supplier, sku).
	UpsertSupplierProduct(ctx context.Context, sp *domain.SupplierProduct) error
	// ListOfferings returns supplier products linked to a shop product,
	// optionally restricted to one supplier.
	ListOfferings(ctx context.Context, productID int64, supplierID *int64) ([]*domain.SupplierProduct, error)
	CreateBaseStockLevel(ctx context.Context, l *domain.BaseStockLevel) error
	// ListBaseLevelsForecastBefore returns base stock levels whose product is
	// forecast to run out before the cutoff date.
	ListBaseLevelsForecastBefore(ctx context.Context, cutoff time.Time) ([]*domain.BaseStockLevel, error)
	CountBelowBaseLevel(ctx context.Context) (int, error)
}
