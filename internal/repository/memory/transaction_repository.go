package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

type transactionRepository struct {
	s *Store
}

var _ repository.TransactionRepository = (*transactionRepository)(nil)

func (r *transactionRepository) Create(ctx context.Context, t *domain.ProductTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id("transaction")
	if t.DateCreated.IsZero() {
		t.DateCreated = r.s.now()
	}
	cp := *t
	r.s.transactions[t.ID] = &cp
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.ProductTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *transactionRepository) SetStatus(ctx context.Context, id int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (r *transactionRepository) ListByRef(ctx context.Context, ref domain.Ref) ([]*domain.ProductTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trxs := []*domain.ProductTransaction{}
	for _, t := range r.s.transactions {
		if t.RefKind == ref.Kind && t.RefID == ref.ID {
			cp := *t
			trxs = append(trxs, &cp)
		}
	}
	sort.Slice(trxs, func(i, j int) bool { return trxs[i].ID < trxs[j].ID })
	return trxs, nil
}

func (r *transactionRepository) SumFinalized(ctx context.Context, productID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, t := range r.s.transactions {
		if t.ProductID == productID && t.Status == domain.TrxStatusFinalized {
			sum += t.Qty
		}
	}
	return sum, nil
}

func (r *transactionRepository) SumFinalizedThrough(ctx context.Context, productID int64, through time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, t := range r.s.transactions {
		if t.ProductID == productID && t.Status == domain.TrxStatusFinalized && !t.DateCreated.After(through) {
			sum += t.Qty
		}
	}
	return sum, nil
}

func (r *transactionRepository) LastFinalizedOfType(ctx context.Context, productID int64, trxType string) (*domain.ProductTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last *domain.ProductTransaction
	for _, t := range r.s.transactions {
		if t.ProductID != productID || t.Status != domain.TrxStatusFinalized || t.TrxType != trxType {
			continue
		}
		if last == nil || t.DateCreated.After(last.DateCreated) ||
			(t.DateCreated.Equal(last.DateCreated) && t.ID > last.ID) {
			last = t
		}
	}
	if last == nil {
		return nil, domain.ErrNotFound
	}
	cp := *last
	return &cp, nil
}

func (r *transactionRepository) DailyDeltasAfter(ctx context.Context, productID int64, after time.Time) ([]domain.DailyQuantity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byDay := make(map[time.Time]int64)
	for _, t := range r.s.transactions {
		if t.ProductID != productID || t.Status != domain.TrxStatusFinalized || !t.DateCreated.After(after) {
			continue
		}
		day := t.DateCreated.UTC().Truncate(24 * time.Hour)
		byDay[day] += t.Qty
	}
	deltas := make([]domain.DailyQuantity, 0, len(byDay))
	for day, qty := range byDay {
		deltas = append(deltas, domain.DailyQuantity{Day: day, Qty: qty})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Day.Before(deltas[j].Day) })
	return deltas, nil
}
