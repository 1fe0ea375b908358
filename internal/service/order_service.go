package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
	"github.com/stocksmith/shopd/internal/supplier"
)

// OrderService places purchase orders with suppliers, picking the cheapest
// offering that covers the requested quantity.
type OrderService struct {
	repos    repository.Repos
	registry *supplier.Registry
	now      func() time.Time
}

func NewOrderService(repos repository.Repos, registry *supplier.Registry) *OrderService {
	return &OrderService{repos: repos, registry: registry, now: time.Now}
}

// SetClock overrides the current-time source. Test hook.
func (s *OrderService) SetClock(now func() time.Time) { s.now = now }

// batches is the smallest number of supplier batches covering qty.
func batches(qty int64, sp *domain.SupplierProduct) int64 {
	if sp.Qty <= 0 {
		return qty
	}
	return (qty + sp.Qty - 1) / sp.Qty
}

// orderCost is the total price of the batches needed to cover qty. Batch
// rounding means a smaller batch size can beat a cheaper unit price.
func orderCost(qty int64, sp *domain.SupplierProduct) decimal.Decimal {
	n := batches(qty, sp)
	return decimal.NewFromInt(n * sp.Qty).Mul(sp.UnitPrice())
}

// OrderFromSupplier orders qty base units of a product, trying the linked
// supplier offerings from cheapest to most expensive. Supplier API failures
// fall through to the next offering; when every offering fails, or none
// exists, an OrderingError is returned.
func (s *OrderService) OrderFromSupplier(ctx context.Context, productID, qty int64, supplierID *int64) (*domain.SupplierProduct, error) {
	offerings, err := s.repos.Suppliers.ListOfferings(ctx, productID, supplierID)
	if err != nil {
		return nil, err
	}
	if len(offerings) == 0 {
		return nil, &domain.OrderingError{}
	}

	sort.SliceStable(offerings, func(i, j int) bool {
		return orderCost(qty, offerings[i]).LessThan(orderCost(qty, offerings[j]))
	})

	var lastSKU string
	for _, sp := range offerings {
		sup, err := s.repos.Suppliers.GetSupplier(ctx, sp.SupplierID)
		if err != nil {
			return nil, err
		}
		api, err := s.registry.Get(sup.InternalName)
		if err != nil {
			return nil, err
		}
		lastSKU = sp.SKU
		if err := api.OrderProduct(ctx, sp.SKU, batches(qty, sp)); err != nil {
			if supplier.IsAPIError(err) {
				log.Warn().
					Str("sku", sp.SKU).
					Str("supplier", sup.InternalName).
					Err(err).
					Msg("order failed, trying next offering")
				continue
			}
			return nil, err
		}
		return sp, nil
	}
	return nil, &domain.OrderingError{SKU: lastSKU}
}

// nextWeekday returns the first date strictly after d falling on the weekday.
func nextWeekday(d time.Time, weekday time.Weekday) time.Time {
	daysAhead := int(weekday - d.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return d.AddDate(0, 0, daysAhead)
}

// OrderRefill restocks everything that is forecast to run out before the
// supplier's delivery after next. Looking one delivery past the next one
// gives the order time to arrive before the product actually runs out.
// Returns the offerings ordered so far alongside any ordering failure.
func (s *OrderService) OrderRefill(ctx context.Context, supplierID int64) ([]*domain.SupplierProduct, error) {
	sup, err := s.repos.Suppliers.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	firstDelivery := nextWeekday(today, sup.DeliversOn)
	secondDelivery := nextWeekday(firstDelivery, sup.DeliversOn)

	levels, err := s.repos.Suppliers.ListBaseLevelsForecastBefore(ctx, secondDelivery)
	if err != nil {
		return nil, err
	}

	ordered := []*domain.SupplierProduct{}
	for _, level := range levels {
		sp, err := s.OrderFromSupplier(ctx, level.ProductID, level.Level, &supplierID)
		if err != nil {
			return ordered, err
		}
		ordered = append(ordered, sp)
	}
	log.Info().
		Int64("supplier_id", supplierID).
		Int("ordered", len(ordered)).
		Time("next_delivery", firstDelivery).
		Msg("refill ordered")
	return ordered, nil
}
