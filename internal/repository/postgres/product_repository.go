package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type productRepository struct {
	q queryer
}

var _ repository.ProductRepository = (*productRepository)(nil)

func NewProductRepository(q queryer) repository.ProductRepository {
	return &productRepository{q: q}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (code, name, category, qty)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRowxContext(ctx, query, p.Code, p.Name, p.Category, p.Qty).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product code %s: %w", p.Code, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	query := `
		SELECT id, code, name, category, qty, out_of_stock_forecast, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	if err := r.q.GetContext(ctx, &p, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *productRepository) Patch(ctx context.Context, id int64, patch domain.ProductPatch) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Code != nil {
		add("code", *patch.Code)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) AddQty(ctx context.Context, id int64, delta int64) error {
	query := `UPDATE products SET qty = qty + $1, updated_at = NOW() WHERE id = $2`
	res, err := r.q.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust product quantity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) SetForecast(ctx context.Context, id int64, forecast *time.Time) error {
	query := `UPDATE products SET out_of_stock_forecast = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.q.ExecContext(ctx, query, forecast, id)
	if err != nil {
		return fmt.Errorf("failed to update forecast: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	query := `
		SELECT id, code, name, category, qty, out_of_stock_forecast, created_at, updated_at
		FROM products
	`
	args := make([]interface{}, 0, 3)
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" WHERE category = $%d", len(args))
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	products := []*domain.Product{}
	if err := r.q.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) ListOrderedByCategory(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, code, name, category, qty, out_of_stock_forecast, created_at, updated_at
		FROM products
		ORDER BY category, id
	`
	products := []*domain.Product{}
	if err := r.q.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	query := `SELECT DISTINCT category FROM products ORDER BY category`
	if err := r.q.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) CountOutOfStock(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE qty <= 0`
	if err := r.q.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count out-of-stock products: %w", err)
	}
	return count, nil
}

func (r *productRepository) CountForecastBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM products
		WHERE out_of_stock_forecast IS NOT NULL AND out_of_stock_forecast < $1
	`
	if err := r.q.GetContext(ctx, &count, query, cutoff); err != nil {
		return 0, fmt.Errorf("failed to count forecast products: %w", err)
	}
	return count, nil
}
