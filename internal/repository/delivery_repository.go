package repository

import (
	"context"

	"github.com/stocksmith/shopd/internal/domain"
)

// DeliveryRepository persists deliveries and their items.
type DeliveryRepository interface {
	CreateDelivery(ctx context.Context, d *domain.Delivery) error
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	AddItem(ctx context.Context, item *domain.DeliveryItem) error
	ListItems(ctx context.Context, deliveryID int64) ([]*domain.DeliveryItem, error)
	LockDelivery(ctx context.Context, id int64) error
}
