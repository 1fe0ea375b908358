package memory

import (
	"context"
	"sort"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type deliveryRepository struct {
	s *Store
}

var _ repository.DeliveryRepository = (*deliveryRepository)(nil)

func (r *deliveryRepository) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id("delivery")
	d.CreatedAt = r.s.now()
	cp := *d
	r.s.deliveries[d.ID] = &cp
	return nil
}

func (r *deliveryRepository) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *deliveryRepository) AddItem(ctx context.Context, item *domain.DeliveryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.deliveries[item.DeliveryID]; !ok {
		return domain.ErrNotFound
	}
	item.ID = r.s.id("delivery_item")
	cp := *item
	r.s.deliveryItem[item.ID] = &cp
	return nil
}

func (r *deliveryRepository) ListItems(ctx context.Context, deliveryID int64) ([]*domain.DeliveryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := []*domain.DeliveryItem{}
	for _, item := range r.s.deliveryItem {
		if item.DeliveryID == deliveryID {
			cp := *item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *deliveryRepository) LockDelivery(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deliveries[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Locked = true
	return nil
}
