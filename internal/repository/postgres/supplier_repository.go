package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type supplierRepository struct {
	q queryer
}

var _ repository.SupplierRepository = (*supplierRepository)(nil)

func NewSupplierRepository(q queryer) repository.SupplierRepository {
	return &supplierRepository{q: q}
}

func (r *supplierRepository) CreateSupplier(ctx context.Context, s *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (name, internal_name, delivers_on)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query, s.Name, s.InternalName, int(s.DeliversOn)).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("supplier %s: %w", s.InternalName, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert supplier: %w", err)
	}
	return nil
}

func (r *supplierRepository) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var s domain.Supplier
	query := `SELECT id, name, internal_name, delivers_on, created_at FROM suppliers WHERE id = $1`
	if err := r.q.GetContext(ctx, &s, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (r *supplierRepository) GetSupplierProduct(ctx context.Context, supplierID int64, sku string) (*domain.SupplierProduct, error) {
	var sp domain.SupplierProduct
	query := `
		SELECT id, supplier_id, product_id, sku, name, price, qty, updated_at
		FROM supplier_products
		WHERE supplier_id = $1 AND sku = $2
	`
	if err := r.q.GetContext(ctx, &sp, query, supplierID, sku); err != nil {
		return nil, mapNotFound(err)
	}
	return &sp, nil
}

func (r *supplierRepository) GetSupplierProductByID(ctx context.Context, id int64) (*domain.SupplierProduct, error) {
	var sp domain.SupplierProduct
	query := `
		SELECT id, supplier_id, product_id, sku, name, price, qty, updated_at
		FROM supplier_products
		WHERE id = $1
	`
	if err := r.q.GetContext(ctx, &sp, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &sp, nil
}

func (r *supplierRepository) UpsertSupplierProduct(ctx context.Context, sp *domain.SupplierProduct) error {
	query := `
		INSERT INTO supplier_products (supplier_id, product_id, sku, name, price, qty)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (supplier_id, sku)
		DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			qty = EXCLUDED.qty,
			product_id = COALESCE(supplier_products.product_id, EXCLUDED.product_id),
			updated_at = NOW()
		RETURNING id, updated_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		sp.SupplierID, sp.ProductID, sp.SKU, sp.Name, sp.Price, sp.Qty).
		Scan(&sp.ID, &sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert supplier product: %w", err)
	}
	return nil
}

func (r *supplierRepository) ListOfferings(ctx context.Context, productID int64, supplierID *int64) ([]*domain.SupplierProduct, error) {
	query := `
		SELECT id, supplier_id, product_id, sku, name, price, qty, updated_at
		FROM supplier_products
		WHERE product_id = $1
	`
	args := []interface{}{productID}
	if supplierID != nil {
		args = append(args, *supplierID)
		query += fmt.Sprintf(" AND supplier_id = $%d", len(args))
	}
	query += " ORDER BY id"

	offerings := []*domain.SupplierProduct{}
	if err := r.q.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list supplier offerings: %w", err)
	}
	return offerings, nil
}

func (r *supplierRepository) CreateBaseStockLevel(ctx context.Context, l *domain.BaseStockLevel) error {
	query := `
		INSERT INTO base_stock_levels (product_id, level)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET level = EXCLUDED.level
		RETURNING id
	`
	if err := r.q.QueryRowxContext(ctx, query, l.ProductID, l.Level).Scan(&l.ID); err != nil {
		return fmt.Errorf("failed to upsert base stock level: %w", err)
	}
	return nil
}

func (r *supplierRepository) ListBaseLevelsForecastBefore(ctx context.Context, cutoff time.Time) ([]*domain.BaseStockLevel, error) {
	query := `
		SELECT b.id, b.product_id, b.level
		FROM base_stock_levels b
		JOIN products p ON p.id = b.product_id
		WHERE p.out_of_stock_forecast IS NOT NULL AND p.out_of_stock_forecast < $1
		ORDER BY b.id
	`
	levels := []*domain.BaseStockLevel{}
	if err := r.q.SelectContext(ctx, &levels, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to list base stock levels: %w", err)
	}
	return levels, nil
}

func (r *supplierRepository) CountBelowBaseLevel(ctx context.Context) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM base_stock_levels b
		JOIN products p ON p.id = b.product_id
		WHERE p.qty < b.level
	`
	if err := r.q.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count products below base level: %w", err)
	}
	return count, nil
}
