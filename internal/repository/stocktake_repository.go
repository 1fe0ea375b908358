package repository

import (
	"context"

	"github.com/stocksmith/shopd/internal/domain"
)

// StocktakeRepository persists stocktakes, chunks and counted items.
type StocktakeRepository interface {
	// CreateStocktake starts a new stocktake. Returns ErrConflict when an
	// unlocked stocktake already exists; the single-open invariant is
	// enforced by the store, not by a count query.
	CreateStocktake(ctx context.Context, st *domain.Stocktake) error
	GetStocktake(ctx context.Context, id int64) (*domain.Stocktake, error)
	LockStocktake(ctx context.Context, id int64) error

	CreateChunk(ctx context.Context, c *domain.StocktakeChunk) error
	GetChunk(ctx context.Context, id int64) (*domain.StocktakeChunk, error)
	ListChunks(ctx context.Context, stocktakeID int64) ([]*domain.StocktakeChunk, error)
	// ChunkOwnedBy returns the unlocked chunk owned by a user in a stocktake,
	// or ErrNotFound. Row-locks the chunk when the store supports it.
	ChunkOwnedBy(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error)
	// ClaimFreeChunk atomically assigns an arbitrary unlocked, unowned chunk
	// to the user under an exclusive row lock. Returns ErrNotFound when no
	// chunk is free.
	ClaimFreeChunk(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error)
	// ReleaseChunk locks a chunk and clears its owner.
	ReleaseChunk(ctx context.Context, chunkID int64) error

	CreateItem(ctx context.Context, it *domain.StocktakeItem) error
	GetItem(ctx context.Context, id int64) (*domain.StocktakeItem, error)
	SetItemQty(ctx context.Context, id int64, qty int64) error
	ListItems(ctx context.Context, chunkID int64) ([]*domain.StocktakeItem, error)
}
