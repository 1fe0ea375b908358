package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type transactionRepository struct {
	q queryer
}

var _ repository.TransactionRepository = (*transactionRepository)(nil)

func NewTransactionRepository(q queryer) repository.TransactionRepository {
	return &transactionRepository{q: q}
}

const trxColumns = `id, product_id, trx_type, qty, status, ref_kind, ref_id, date_created`

func (r *transactionRepository) Create(ctx context.Context, t *domain.ProductTransaction) error {
	query := `
		INSERT INTO product_transactions (product_id, trx_type, qty, status, ref_kind, ref_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, date_created
	`
	err := r.q.QueryRowxContext(ctx, query,
		t.ProductID, t.TrxType, t.Qty, t.Status, t.RefKind, t.RefID).
		Scan(&t.ID, &t.DateCreated)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.ProductTransaction, error) {
	var t domain.ProductTransaction
	query := fmt.Sprintf(`SELECT %s FROM product_transactions WHERE id = $1`, trxColumns)
	if err := r.q.GetContext(ctx, &t, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (r *transactionRepository) SetStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE product_transactions SET status = $1 WHERE id = $2`
	res, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) ListByRef(ctx context.Context, ref domain.Ref) ([]*domain.ProductTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM product_transactions
		WHERE ref_kind = $1 AND ref_id = $2
		ORDER BY id
	`, trxColumns)
	trxs := []*domain.ProductTransaction{}
	if err := r.q.SelectContext(ctx, &trxs, query, ref.Kind, ref.ID); err != nil {
		return nil, fmt.Errorf("failed to list transactions by reference: %w", err)
	}
	return trxs, nil
}

func (r *transactionRepository) SumFinalized(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(qty), 0) FROM product_transactions
		WHERE product_id = $1 AND status = $2
	`
	if err := r.q.GetContext(ctx, &sum, query, productID, domain.TrxStatusFinalized); err != nil {
		return 0, fmt.Errorf("failed to sum finalized transactions: %w", err)
	}
	return sum, nil
}

func (r *transactionRepository) SumFinalizedThrough(ctx context.Context, productID int64, through time.Time) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(qty), 0) FROM product_transactions
		WHERE product_id = $1 AND status = $2 AND date_created <= $3
	`
	if err := r.q.GetContext(ctx, &sum, query, productID, domain.TrxStatusFinalized, through); err != nil {
		return 0, fmt.Errorf("failed to sum finalized transactions: %w", err)
	}
	return sum, nil
}

func (r *transactionRepository) LastFinalizedOfType(ctx context.Context, productID int64, trxType string) (*domain.ProductTransaction, error) {
	var t domain.ProductTransaction
	query := fmt.Sprintf(`
		SELECT %s FROM product_transactions
		WHERE product_id = $1 AND status = $2 AND trx_type = $3
		ORDER BY date_created DESC, id DESC
		LIMIT 1
	`, trxColumns)
	err := r.q.GetContext(ctx, &t, query, productID, domain.TrxStatusFinalized, trxType)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (r *transactionRepository) DailyDeltasAfter(ctx context.Context, productID int64, after time.Time) ([]domain.DailyQuantity, error) {
	query := `
		SELECT date_trunc('day', date_created AT TIME ZONE 'UTC') AS day,
		       SUM(qty) AS qty
		FROM product_transactions
		WHERE product_id = $1 AND status = $2 AND date_created > $3
		GROUP BY day
		ORDER BY day
	`
	deltas := []domain.DailyQuantity{}
	if err := r.q.SelectContext(ctx, &deltas, query, productID, domain.TrxStatusFinalized, after); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily quantities: %w", err)
	}
	return deltas, nil
}
