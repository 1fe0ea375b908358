// Package memory provides in-memory repository implementations. They back
// the service tests and local runs without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

// Store holds all entities behind a single mutex. Operations are atomic
// one-by-one; InTx serializes whole multi-step operations, which preserves
// the at-most-one-assignee guarantee without row locks. Rollback on error is
// not supported.
type Store struct {
	mu sync.Mutex

	products     map[int64]*domain.Product
	transactions map[int64]*domain.ProductTransaction
	suppliers    map[int64]*domain.Supplier
	supplierProd map[int64]*domain.SupplierProduct
	deliveries   map[int64]*domain.Delivery
	deliveryItem map[int64]*domain.DeliveryItem
	stocktakes   map[int64]*domain.Stocktake
	chunks       map[int64]*domain.StocktakeChunk
	items        map[int64]*domain.StocktakeItem
	baseLevels   map[int64]*domain.BaseStockLevel

	nextID map[string]int64
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		products:     make(map[int64]*domain.Product),
		transactions: make(map[int64]*domain.ProductTransaction),
		suppliers:    make(map[int64]*domain.Supplier),
		supplierProd: make(map[int64]*domain.SupplierProduct),
		deliveries:   make(map[int64]*domain.Delivery),
		deliveryItem: make(map[int64]*domain.DeliveryItem),
		stocktakes:   make(map[int64]*domain.Stocktake),
		chunks:       make(map[int64]*domain.StocktakeChunk),
		items:        make(map[int64]*domain.StocktakeItem),
		baseLevels:   make(map[int64]*domain.BaseStockLevel),
		nextID:       make(map[string]int64),
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source, used by tests to build ledger
// histories at known dates.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

// Repos returns the repository bundle over this store.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Products:     &productRepository{s: s},
		Transactions: &transactionRepository{s: s},
		Suppliers:    &supplierRepository{s: s},
		Deliveries:   &deliveryRepository{s: s},
		Stocktakes:   &stocktakeRepository{s: s},
	}
}

// TxRunner serializes multi-step operations over a Store.
type TxRunner struct {
	store *Store
	txMu  sync.Mutex
}

var _ repository.TxRunner = (*TxRunner)(nil)

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) InTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r.store.Repos())
}
