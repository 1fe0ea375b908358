package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type supplierRepository struct {
	s *Store
}

var _ repository.SupplierRepository = (*supplierRepository)(nil)

func (r *supplierRepository) CreateSupplier(ctx context.Context, s *domain.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.suppliers {
		if existing.InternalName == s.InternalName {
			return domain.ErrConflict
		}
	}
	s.ID = r.s.id("supplier")
	s.CreatedAt = r.s.now()
	cp := *s
	r.s.suppliers[s.ID] = &cp
	return nil
}

func (r *supplierRepository) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *supplierRepository) GetSupplierProduct(ctx context.Context, supplierID int64, sku string) (*domain.SupplierProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.supplierProd {
		if sp.SupplierID == supplierID && sp.SKU == sku {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *supplierRepository) GetSupplierProductByID(ctx context.Context, id int64) (*domain.SupplierProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.supplierProd[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sp
	return &cp, nil
}

func (r *supplierRepository) UpsertSupplierProduct(ctx context.Context, sp *domain.SupplierProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.supplierProd {
		if existing.SupplierID == sp.SupplierID && existing.SKU == sp.SKU {
			existing.Name = sp.Name
			existing.Price = sp.Price
			existing.Qty = sp.Qty
			if existing.ProductID == nil {
				existing.ProductID = sp.ProductID
			}
			existing.UpdatedAt = r.s.now()
			*sp = *existing
			return nil
		}
	}
	sp.ID = r.s.id("supplier_product")
	sp.UpdatedAt = r.s.now()
	cp := *sp
	r.s.supplierProd[sp.ID] = &cp
	return nil
}

func (r *supplierRepository) ListOfferings(ctx context.Context, productID int64, supplierID *int64) ([]*domain.SupplierProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	offerings := []*domain.SupplierProduct{}
	for _, sp := range r.s.supplierProd {
		if sp.ProductID == nil || *sp.ProductID != productID {
			continue
		}
		if supplierID != nil && sp.SupplierID != *supplierID {
			continue
		}
		cp := *sp
		offerings = append(offerings, &cp)
	}
	sort.Slice(offerings, func(i, j int) bool { return offerings[i].ID < offerings[j].ID })
	return offerings, nil
}

func (r *supplierRepository) CreateBaseStockLevel(ctx context.Context, l *domain.BaseStockLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.baseLevels {
		if existing.ProductID == l.ProductID {
			existing.Level = l.Level
			*l = *existing
			return nil
		}
	}
	l.ID = r.s.id("base_stock_level")
	cp := *l
	r.s.baseLevels[l.ID] = &cp
	return nil
}

func (r *supplierRepository) ListBaseLevelsForecastBefore(ctx context.Context, cutoff time.Time) ([]*domain.BaseStockLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	levels := []*domain.BaseStockLevel{}
	for _, l := range r.s.baseLevels {
		p, ok := r.s.products[l.ProductID]
		if !ok || p.OutOfStockForecast == nil || !p.OutOfStockForecast.Before(cutoff) {
			continue
		}
		cp := *l
		levels = append(levels, &cp)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ID < levels[j].ID })
	return levels, nil
}

func (r *supplierRepository) CountBelowBaseLevel(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, l := range r.s.baseLevels {
		if p, ok := r.s.products[l.ProductID]; ok && p.Qty < l.Level {
			count++
		}
	}
	return count, nil
}
