package postgres

import (
	"context"
	"fmt"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type deliveryRepository struct {
	q queryer
}

var _ repository.DeliveryRepository = (*deliveryRepository)(nil)

func NewDeliveryRepository(q queryer) repository.DeliveryRepository {
	return &deliveryRepository{q: q}
}

func (r *deliveryRepository) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (supplier_id, report)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query, d.SupplierID, d.Report).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert delivery: %w", err)
	}
	return nil
}

func (r *deliveryRepository) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	var d domain.Delivery
	query := `SELECT id, supplier_id, report, locked, created_at FROM deliveries WHERE id = $1`
	if err := r.q.GetContext(ctx, &d, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &d, nil
}

func (r *deliveryRepository) AddItem(ctx context.Context, item *domain.DeliveryItem) error {
	query := `
		INSERT INTO delivery_items (delivery_id, supplier_product_id, qty, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.q.QueryRowxContext(ctx, query,
		item.DeliveryID, item.SupplierProductID, item.Qty, item.Price).
		Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert delivery item: %w", err)
	}
	return nil
}

func (r *deliveryRepository) ListItems(ctx context.Context, deliveryID int64) ([]*domain.DeliveryItem, error) {
	query := `
		SELECT id, delivery_id, supplier_product_id, qty, price
		FROM delivery_items
		WHERE delivery_id = $1
		ORDER BY id
	`
	items := []*domain.DeliveryItem{}
	if err := r.q.SelectContext(ctx, &items, query, deliveryID); err != nil {
		return nil, fmt.Errorf("failed to list delivery items: %w", err)
	}
	return items, nil
}

func (r *deliveryRepository) LockDelivery(ctx context.Context, id int64) error {
	query := `UPDATE deliveries SET locked = TRUE WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to lock delivery: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
