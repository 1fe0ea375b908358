package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

// StocktakeService coordinates catalog-wide counting rounds. At most one
// stocktake is open at any time; the catalog is split into fixed-size chunks
// that counters claim one at a time.
type StocktakeService struct {
	repos     repository.Repos
	tx        repository.TxRunner
	chunkSize int
}

func NewStocktakeService(repos repository.Repos, tx repository.TxRunner, chunkSize int) *StocktakeService {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &StocktakeService{repos: repos, tx: tx, chunkSize: chunkSize}
}

// Initiate opens a new stocktake and splits the full catalog, ordered by
// category, into chunks with one zero-count item per product. Fails with a
// conflict when another stocktake is still open.
func (s *StocktakeService) Initiate(ctx context.Context) (*domain.Stocktake, error) {
	var st *domain.Stocktake
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		st = &domain.Stocktake{}
		if err := r.Stocktakes.CreateStocktake(ctx, st); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("a stocktake is already open: %w", domain.ErrConflict)
			}
			return err
		}
		products, err := r.Products.ListOrderedByCategory(ctx)
		if err != nil {
			return err
		}
		var chunk *domain.StocktakeChunk
		for i, p := range products {
			if i%s.chunkSize == 0 {
				chunk = &domain.StocktakeChunk{StocktakeID: st.ID}
				if err := r.Stocktakes.CreateChunk(ctx, chunk); err != nil {
					return err
				}
			}
			item := &domain.StocktakeItem{ChunkID: chunk.ID, ProductID: p.ID}
			if err := r.Stocktakes.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		log.Info().
			Int64("stocktake_id", st.ID).
			Int("products", len(products)).
			Msg("stocktake initiated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StocktakeService) GetStocktake(ctx context.Context, id int64) (*domain.Stocktake, error) {
	return s.repos.Stocktakes.GetStocktake(ctx, id)
}

func (s *StocktakeService) ListChunks(ctx context.Context, stocktakeID int64) ([]*domain.StocktakeChunk, error) {
	return s.repos.Stocktakes.ListChunks(ctx, stocktakeID)
}

func (s *StocktakeService) ListItems(ctx context.Context, chunkID int64) ([]*domain.StocktakeItem, error) {
	return s.repos.Stocktakes.ListItems(ctx, chunkID)
}

// AssignFreeChunk gives the user a chunk to count. A user who already owns an
// unfinished chunk gets that same chunk back; otherwise the lowest free chunk
// is claimed under a row lock, so two concurrent callers never share one.
// Returns (nil, nil) when no chunk is left.
func (s *StocktakeService) AssignFreeChunk(ctx context.Context, stocktakeID, userID int64) (*domain.StocktakeChunk, error) {
	var chunk *domain.StocktakeChunk
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		st, err := r.Stocktakes.GetStocktake(ctx, stocktakeID)
		if err != nil {
			return err
		}
		if st.Locked {
			return fmt.Errorf("stocktake %d already finished: %w", st.ID, domain.ErrConflict)
		}
		chunk, err = r.Stocktakes.ChunkOwnedBy(ctx, stocktakeID, userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		chunk, err = r.Stocktakes.ClaimFreeChunk(ctx, stocktakeID, userID)
		if errors.Is(err, domain.ErrNotFound) {
			chunk = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// RecordCount stores the counted quantity for one item. Rejected once the
// item's chunk is finalized.
func (s *StocktakeService) RecordCount(ctx context.Context, itemID, qty int64) error {
	if qty < 0 {
		return fmt.Errorf("counted quantity must not be negative: %w", domain.ErrValidation)
	}
	return s.tx.InTx(ctx, func(r repository.Repos) error {
		item, err := r.Stocktakes.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		chunk, err := r.Stocktakes.GetChunk(ctx, item.ChunkID)
		if err != nil {
			return err
		}
		if chunk.Locked {
			return fmt.Errorf("chunk %d already finalized: %w", chunk.ID, domain.ErrConflict)
		}
		return r.Stocktakes.SetItemQty(ctx, itemID, qty)
	})
}

// FinalizeChunk marks a chunk as counted and releases its owner.
func (s *StocktakeService) FinalizeChunk(ctx context.Context, chunkID int64) error {
	return s.tx.InTx(ctx, func(r repository.Repos) error {
		chunk, err := r.Stocktakes.GetChunk(ctx, chunkID)
		if err != nil {
			return err
		}
		if chunk.Locked {
			return fmt.Errorf("chunk %d already finalized: %w", chunk.ID, domain.ErrConflict)
		}
		return r.Stocktakes.ReleaseChunk(ctx, chunkID)
	})
}

// Finalize closes the stocktake: every counted item becomes a finalized
// CORRECTION transaction carrying the difference between the counted and the
// recorded quantity. Zero differences are recorded too, as proof the product
// was counted. Requires all chunks to be finalized first.
func (s *StocktakeService) Finalize(ctx context.Context, stocktakeID int64) error {
	return s.tx.InTx(ctx, func(r repository.Repos) error {
		st, err := r.Stocktakes.GetStocktake(ctx, stocktakeID)
		if err != nil {
			return err
		}
		if st.Locked {
			return fmt.Errorf("stocktake %d already finished: %w", st.ID, domain.ErrConflict)
		}
		chunks, err := r.Stocktakes.ListChunks(ctx, stocktakeID)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			if !chunk.Locked {
				return fmt.Errorf("chunk %d is not finalized yet: %w", chunk.ID, domain.ErrConflict)
			}
		}
		corrections := 0
		for _, chunk := range chunks {
			items, err := r.Stocktakes.ListItems(ctx, chunk.ID)
			if err != nil {
				return err
			}
			for _, item := range items {
				p, err := r.Products.GetByID(ctx, item.ProductID)
				if err != nil {
					return err
				}
				delta := item.Qty - p.Qty
				trx, err := newTransaction(ctx, r, p.ID, domain.TrxTypeCorrection, delta, domain.StocktakeItemRef(item.ID))
				if err != nil {
					return err
				}
				if err := applyStatus(ctx, r, trx, domain.TrxStatusFinalized); err != nil {
					return err
				}
				corrections++
			}
		}
		if err := r.Stocktakes.LockStocktake(ctx, stocktakeID); err != nil {
			return err
		}
		log.Info().
			Int64("stocktake_id", stocktakeID).
			Int("corrections", corrections).
			Msg("stocktake finalized")
		return nil
	})
}
