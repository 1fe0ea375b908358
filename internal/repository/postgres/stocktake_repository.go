package postgres

import (
	"context"
	"fmt"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type stocktakeRepository struct {
	q queryer
}

var _ repository.StocktakeRepository = (*stocktakeRepository)(nil)

func NewStocktakeRepository(q queryer) repository.StocktakeRepository {
	return &stocktakeRepository{q: q}
}

func (r *stocktakeRepository) CreateStocktake(ctx context.Context, st *domain.Stocktake) error {
	// The partial unique index on unlocked stocktakes turns a concurrent
	// initiation into a constraint violation instead of a race.
	query := `INSERT INTO stocktakes (locked) VALUES (FALSE) RETURNING id, created_at`
	if err := r.q.QueryRowxContext(ctx, query).Scan(&st.ID, &st.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("stocktaking already in progress: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert stocktake: %w", err)
	}
	st.Locked = false
	return nil
}

func (r *stocktakeRepository) GetStocktake(ctx context.Context, id int64) (*domain.Stocktake, error) {
	var st domain.Stocktake
	query := `SELECT id, locked, created_at FROM stocktakes WHERE id = $1`
	if err := r.q.GetContext(ctx, &st, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &st, nil
}

func (r *stocktakeRepository) LockStocktake(ctx context.Context, id int64) error {
	query := `UPDATE stocktakes SET locked = TRUE WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to lock stocktake: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *stocktakeRepository) CreateChunk(ctx context.Context, c *domain.StocktakeChunk) error {
	query := `INSERT INTO stocktake_chunks (stocktake_id) VALUES ($1) RETURNING id`
	if err := r.q.QueryRowxContext(ctx, query, c.StocktakeID).Scan(&c.ID); err != nil {
		return fmt.Errorf("failed to insert stocktake chunk: %w", err)
	}
	return nil
}

func (r *stocktakeRepository) GetChunk(ctx context.Context, id int64) (*domain.StocktakeChunk, error) {
	var c domain.StocktakeChunk
	query := `SELECT id, stocktake_id, locked, owner_id FROM stocktake_chunks WHERE id = $1`
	if err := r.q.GetContext(ctx, &c, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

func (r *stocktakeRepository) ListChunks(ctx context.Context, stocktakeID int64) ([]*domain.StocktakeChunk, error) {
	query := `
		SELECT id, stocktake_id, locked, owner_id
		FROM stocktake_chunks
		WHERE stocktake_id = $1
		ORDER BY id
	`
	chunks := []*domain.StocktakeChunk{}
	if err := r.q.SelectContext(ctx, &chunks, query, stocktakeID); err != nil {
		return nil, fmt.Errorf("failed to list stocktake chunks: %w", err)
	}
	return chunks, nil
}

func (r *stocktakeRepository) ChunkOwnedBy(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error) {
	var c domain.StocktakeChunk
	query := `
		SELECT id, stocktake_id, locked, owner_id
		FROM stocktake_chunks
		WHERE stocktake_id = $1 AND owner_id = $2 AND locked = FALSE
		FOR UPDATE
	`
	if err := r.q.GetContext(ctx, &c, query, stocktakeID, userID); err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

func (r *stocktakeRepository) ClaimFreeChunk(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error) {
	// Row-level lock so two concurrent claimers cannot pick the same chunk.
	var c domain.StocktakeChunk
	query := `
		SELECT id, stocktake_id, locked, owner_id
		FROM stocktake_chunks
		WHERE stocktake_id = $1 AND locked = FALSE AND owner_id IS NULL
		ORDER BY id
		LIMIT 1
		FOR UPDATE
	`
	if err := r.q.GetContext(ctx, &c, query, stocktakeID); err != nil {
		return nil, mapNotFound(err)
	}

	update := `UPDATE stocktake_chunks SET owner_id = $1 WHERE id = $2`
	if _, err := r.q.ExecContext(ctx, update, userID, c.ID); err != nil {
		return nil, fmt.Errorf("failed to assign stocktake chunk: %w", err)
	}
	c.OwnerID = &userID
	return &c, nil
}

func (r *stocktakeRepository) ReleaseChunk(ctx context.Context, chunkID int64) error {
	query := `UPDATE stocktake_chunks SET locked = TRUE, owner_id = NULL WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, chunkID)
	if err != nil {
		return fmt.Errorf("failed to release stocktake chunk: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *stocktakeRepository) CreateItem(ctx context.Context, it *domain.StocktakeItem) error {
	query := `
		INSERT INTO stocktake_items (chunk_id, product_id, qty)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.q.QueryRowxContext(ctx, query, it.ChunkID, it.ProductID, it.Qty).Scan(&it.ID); err != nil {
		return fmt.Errorf("failed to insert stocktake item: %w", err)
	}
	return nil
}

func (r *stocktakeRepository) GetItem(ctx context.Context, id int64) (*domain.StocktakeItem, error) {
	var it domain.StocktakeItem
	query := `SELECT id, chunk_id, product_id, qty FROM stocktake_items WHERE id = $1`
	if err := r.q.GetContext(ctx, &it, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &it, nil
}

func (r *stocktakeRepository) SetItemQty(ctx context.Context, id int64, qty int64) error {
	query := `UPDATE stocktake_items SET qty = $1 WHERE id = $2`
	res, err := r.q.ExecContext(ctx, query, qty, id)
	if err != nil {
		return fmt.Errorf("failed to update stocktake item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *stocktakeRepository) ListItems(ctx context.Context, chunkID int64) ([]*domain.StocktakeItem, error) {
	query := `
		SELECT id, chunk_id, product_id, qty
		FROM stocktake_items
		WHERE chunk_id = $1
		ORDER BY id
	`
	items := []*domain.StocktakeItem{}
	if err := r.q.SelectContext(ctx, &items, query, chunkID); err != nil {
		return nil, fmt.Errorf("failed to list stocktake items: %w", err)
	}
	return items, nil
}
