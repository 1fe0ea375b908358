package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/stocksmith/shopd/internal/repository"
)

// TxRunner runs callbacks inside a single PostgreSQL transaction with all
// repositories bound to it.
type TxRunner struct {
	db *DB
}

var _ repository.TxRunner = (*TxRunner)(nil)

func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) InTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(NewRepos(tx))
	})
}

// NewRepos builds the repository bundle over a pool or transaction handle.
func NewRepos(q queryer) repository.Repos {
	return repository.Repos{
		Products:     NewProductRepository(q),
		Transactions: NewTransactionRepository(q),
		Suppliers:    NewSupplierRepository(q),
		Deliveries:   NewDeliveryRepository(q),
		Stocktakes:   NewStocktakeRepository(q),
	}
}
