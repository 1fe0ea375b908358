package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type productRepository struct {
	s *Store
}

var _ repository.ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Code == p.Code {
			return domain.ErrConflict
		}
	}
	p.ID = r.s.id("product")
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *productRepository) Patch(ctx context.Context, id int64, patch domain.ProductPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *productRepository) AddQty(ctx context.Context, id int64, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Qty += delta
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *productRepository) SetForecast(ctx context.Context, id int64, forecast *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if forecast != nil {
		f := *forecast
		p.OutOfStockForecast = &f
	} else {
		p.OutOfStockForecast = nil
	}
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *productRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	products := make([]*domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		cp := *p
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	if f.Offset > 0 {
		if f.Offset >= len(products) {
			return []*domain.Product{}, nil
		}
		products = products[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(products) {
		products = products[:f.Limit]
	}
	return products, nil
}

func (r *productRepository) ListOrderedByCategory(ctx context.Context) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	products := make([]*domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range r.s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.products), nil
}

func (r *productRepository) CountOutOfStock(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, p := range r.s.products {
		if p.Qty <= 0 {
			count++
		}
	}
	return count, nil
}

func (r *productRepository) CountForecastBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, p := range r.s.products {
		if p.OutOfStockForecast != nil && p.OutOfStockForecast.Before(cutoff) {
			count++
		}
	}
	return count, nil
}
