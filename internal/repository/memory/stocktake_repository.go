package memory

import (
	"context"
	"sort"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type stocktakeRepository struct {
	s *Store
}

var _ repository.StocktakeRepository = (*stocktakeRepository)(nil)

func (r *stocktakeRepository) CreateStocktake(ctx context.Context, st *domain.Stocktake) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.stocktakes {
		if !existing.Locked {
			return domain.ErrConflict
		}
	}
	st.ID = r.s.id("stocktake")
	st.Locked = false
	st.CreatedAt = r.s.now()
	cp := *st
	r.s.stocktakes[st.ID] = &cp
	return nil
}

func (r *stocktakeRepository) GetStocktake(ctx context.Context, id int64) (*domain.Stocktake, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stocktakes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *stocktakeRepository) LockStocktake(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stocktakes[id]
	if !ok {
		return domain.ErrNotFound
	}
	st.Locked = true
	return nil
}

func (r *stocktakeRepository) CreateChunk(ctx context.Context, c *domain.StocktakeChunk) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stocktakes[c.StocktakeID]; !ok {
		return domain.ErrNotFound
	}
	c.ID = r.s.id("chunk")
	cp := *c
	r.s.chunks[c.ID] = &cp
	return nil
}

func (r *stocktakeRepository) GetChunk(ctx context.Context, id int64) (*domain.StocktakeChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stocktakeRepository) ListChunks(ctx context.Context, stocktakeID int64) ([]*domain.StocktakeChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chunks := []*domain.StocktakeChunk{}
	for _, c := range r.s.chunks {
		if c.StocktakeID == stocktakeID {
			cp := *c
			chunks = append(chunks, &cp)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
	return chunks, nil
}

func (r *stocktakeRepository) ChunkOwnedBy(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chunks {
		if c.StocktakeID == stocktakeID && !c.Locked && c.OwnerID != nil && *c.OwnerID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stocktakeRepository) ClaimFreeChunk(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.chunks))
	for id, c := range r.s.chunks {
		if c.StocktakeID == stocktakeID && !c.Locked && c.OwnerID == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	c := r.s.chunks[ids[0]]
	owner := userID
	c.OwnerID = &owner
	cp := *c
	return &cp, nil
}

func (r *stocktakeRepository) ReleaseChunk(ctx context.Context, chunkID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chunks[chunkID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Locked = true
	c.OwnerID = nil
	return nil
}

func (r *stocktakeRepository) CreateItem(ctx context.Context, it *domain.StocktakeItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chunks[it.ChunkID]; !ok {
		return domain.ErrNotFound
	}
	it.ID = r.s.id("stocktake_item")
	cp := *it
	r.s.items[it.ID] = &cp
	return nil
}

func (r *stocktakeRepository) GetItem(ctx context.Context, id int64) (*domain.StocktakeItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *stocktakeRepository) SetItemQty(ctx context.Context, id int64, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Qty = qty
	return nil
}

func (r *stocktakeRepository) ListItems(ctx context.Context, chunkID int64) ([]*domain.StocktakeItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := []*domain.StocktakeItem{}
	for _, it := range r.s.items {
		if it.ChunkID == chunkID {
			cp := *it
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
