package repository

import (
	"context"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
)

// TransactionRepository persists the product transaction ledger.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.ProductTransaction) error
	GetByID(ctx context.Context, id int64) (*domain.ProductTransaction, error)
	SetStatus(ctx context.Context, id int64, status string) error
	ListByRef(ctx context.Context, ref domain.Ref) ([]*domain.ProductTransaction, error)
	// SumFinalized returns the summed quantity of finalized transactions for
	// a product; this is the authoritative current quantity.
	SumFinalized(ctx context.Context, productID int64) (int64, error)
	// SumFinalizedThrough sums finalized quantities created at or before the
	// given instant.
	SumFinalizedThrough(ctx context.Context, productID int64, through time.Time) (int64, error)
	// LastFinalizedOfType returns the most recent finalized transaction of a
	// type, or ErrNotFound.
	LastFinalizedOfType(ctx context.Context, productID int64, trxType string) (*domain.ProductTransaction, error)
	// DailyDeltasAfter returns finalized quantity sums grouped by calendar
	// day (UTC), strictly after the given instant, ordered by day.
	DailyDeltasAfter(ctx context.Context, productID int64, after time.Time) ([]domain.DailyQuantity, error)
}
