package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

// LedgerService owns products and their transaction ledger. The ledger is
// append-only: every quantity change is a transaction, and only finalized
// transactions count toward the cached product quantity.
type LedgerService struct {
	repos repository.Repos
	tx    repository.TxRunner
}

func NewLedgerService(repos repository.Repos, tx repository.TxRunner) *LedgerService {
	return &LedgerService{repos: repos, tx: tx}
}

// CreateProduct registers a new product with zero stock.
func (s *LedgerService) CreateProduct(ctx context.Context, code, name, category string) (*domain.Product, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("product code and name are required: %w", domain.ErrValidation)
	}
	p := &domain.Product{Code: code, Name: name, Category: category}
	if err := s.repos.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies an explicit patch to a product.
func (s *LedgerService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) error {
	return s.repos.Products.Patch(ctx, id, patch)
}

func (s *LedgerService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repos.Products.GetByID(ctx, id)
}

func (s *LedgerService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	return s.repos.Products.List(ctx, f)
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repos.Products.ListCategories(ctx)
}

// CurrentQuantity sums the finalized ledger for a product. This is the
// authoritative quantity; Product.Qty is only a cache of it.
func (s *LedgerService) CurrentQuantity(ctx context.Context, productID int64) (int64, error) {
	if _, err := s.repos.Products.GetByID(ctx, productID); err != nil {
		return 0, err
	}
	return s.repos.Transactions.SumFinalized(ctx, productID)
}

// CreateTransaction appends a pending transaction for a product. The product
// quantity is untouched until the transaction is finalized.
func (s *LedgerService) CreateTransaction(ctx context.Context, productID int64, trxType string, qty int64, ref domain.Ref) (*domain.ProductTransaction, error) {
	canonical, ok := domain.ParseTrxType(trxType)
	if !ok {
		return nil, fmt.Errorf("unknown transaction type %q: %w", trxType, domain.ErrValidation)
	}

	var trx *domain.ProductTransaction
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		var txErr error
		trx, txErr = newTransaction(ctx, r, productID, canonical, qty, ref)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return trx, nil
}

// FinalizeTransaction moves a pending transaction to FINALIZED and applies
// its delta to the product quantity.
func (s *LedgerService) FinalizeTransaction(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, domain.TrxStatusFinalized)
}

// CancelTransaction moves a pending transaction to CANCELED.
func (s *LedgerService) CancelTransaction(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, domain.TrxStatusCanceled)
}

func (s *LedgerService) setStatus(ctx context.Context, id int64, status string) error {
	return s.tx.InTx(ctx, func(r repository.Repos) error {
		trx, err := r.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return applyStatus(ctx, r, trx, status)
	})
}

// TransactionsByRef returns all ledger entries originating from the given
// entity, e.g. a delivery item or stocktake item.
func (s *LedgerService) TransactionsByRef(ctx context.Context, ref domain.Ref) ([]*domain.ProductTransaction, error) {
	return s.repos.Transactions.ListByRef(ctx, ref)
}

// newTransaction appends a pending ledger entry inside the caller's
// transaction. Shared with the delivery and stocktake pipelines.
func newTransaction(ctx context.Context, r repository.Repos, productID int64, trxType string, qty int64, ref domain.Ref) (*domain.ProductTransaction, error) {
	if _, err := r.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	trx := &domain.ProductTransaction{
		ProductID: productID,
		TrxType:   trxType,
		Qty:       qty,
		Status:    domain.TrxStatusPending,
		RefKind:   ref.Kind,
		RefID:     ref.ID,
	}
	if err := r.Transactions.Create(ctx, trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// applyStatus enforces the one-way PENDING -> {FINALIZED, CANCELED}
// transition. Finalizing is the only path that touches the cached quantity.
func applyStatus(ctx context.Context, r repository.Repos, trx *domain.ProductTransaction, status string) error {
	if domain.TrxStatusTerminal(trx.Status) {
		return fmt.Errorf("transaction %d already %s: %w", trx.ID, trx.Status, domain.ErrConflict)
	}
	if status != domain.TrxStatusFinalized && status != domain.TrxStatusCanceled {
		return fmt.Errorf("invalid target status %q: %w", status, domain.ErrValidation)
	}
	if err := r.Transactions.SetStatus(ctx, trx.ID, status); err != nil {
		return err
	}
	if status == domain.TrxStatusFinalized {
		if err := r.Products.AddQty(ctx, trx.ProductID, trx.Qty); err != nil {
			return err
		}
		log.Debug().
			Int64("product_id", trx.ProductID).
			Int64("qty", trx.Qty).
			Msg("transaction finalized")
	}
	trx.Status = status
	return nil
}
