package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksmith/shopd/internal/domain"
)

func TestStore_SingleOpenStocktake(t *testing.T) {
	store := NewStore()
	repos := store.Repos()
	ctx := context.Background()

	first := &domain.Stocktake{}
	require.NoError(t, repos.Stocktakes.CreateStocktake(ctx, first))

	second := &domain.Stocktake{}
	assert.ErrorIs(t, repos.Stocktakes.CreateStocktake(ctx, second), domain.ErrConflict)

	require.NoError(t, repos.Stocktakes.LockStocktake(ctx, first.ID))
	require.NoError(t, repos.Stocktakes.CreateStocktake(ctx, second))
}

func TestStore_ClaimFreeChunkPicksLowestFree(t *testing.T) {
	store := NewStore()
	repos := store.Repos()
	ctx := context.Background()

	st := &domain.Stocktake{}
	require.NoError(t, repos.Stocktakes.CreateStocktake(ctx, st))
	c1 := &domain.StocktakeChunk{StocktakeID: st.ID}
	c2 := &domain.StocktakeChunk{StocktakeID: st.ID}
	require.NoError(t, repos.Stocktakes.CreateChunk(ctx, c1))
	require.NoError(t, repos.Stocktakes.CreateChunk(ctx, c2))

	got, err := repos.Stocktakes.ClaimFreeChunk(ctx, st.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, got.ID)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, int64(1), *got.OwnerID)

	// The claimed chunk is no longer free.
	got2, err := repos.Stocktakes.ClaimFreeChunk(ctx, st.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, c2.ID, got2.ID)

	_, err = repos.Stocktakes.ClaimFreeChunk(ctx, st.ID, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReleaseChunkClearsOwner(t *testing.T) {
	store := NewStore()
	repos := store.Repos()
	ctx := context.Background()

	st := &domain.Stocktake{}
	require.NoError(t, repos.Stocktakes.CreateStocktake(ctx, st))
	c := &domain.StocktakeChunk{StocktakeID: st.ID}
	require.NoError(t, repos.Stocktakes.CreateChunk(ctx, c))

	_, err := repos.Stocktakes.ClaimFreeChunk(ctx, st.ID, 1)
	require.NoError(t, err)
	require.NoError(t, repos.Stocktakes.ReleaseChunk(ctx, c.ID))

	got, err := repos.Stocktakes.GetChunk(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.Nil(t, got.OwnerID)

	// A finalized chunk is never handed out again.
	_, err = repos.Stocktakes.ChunkOwnedBy(ctx, st.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DailyDeltasAfter(t *testing.T) {
	store := NewStore()
	repos := store.Repos()
	ctx := context.Background()

	current := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	p := &domain.Product{Code: "APL-01", Name: "Apples", Category: "fruit"}
	require.NoError(t, repos.Products.Create(ctx, p))

	add := func(qty int64, status string) {
		trx := &domain.ProductTransaction{
			ProductID: p.ID,
			TrxType:   domain.TrxTypeInventory,
			Qty:       qty,
			Status:    status,
		}
		require.NoError(t, repos.Transactions.Create(ctx, trx))
	}

	restockAt := current
	add(100, domain.TrxStatusFinalized)

	// Two movements on the next day, one the day after; pending ones are
	// invisible.
	current = current.Add(26 * time.Hour)
	add(-5, domain.TrxStatusFinalized)
	current = current.Add(2 * time.Hour)
	add(-3, domain.TrxStatusFinalized)
	add(-99, domain.TrxStatusPending)
	current = current.Add(24 * time.Hour)
	add(-2, domain.TrxStatusFinalized)

	deltas, err := repos.Transactions.DailyDeltasAfter(ctx, p.ID, restockAt)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, int64(-8), deltas[0].Qty)
	assert.Equal(t, int64(-2), deltas[1].Qty)
	assert.True(t, deltas[0].Day.Before(deltas[1].Day))
}

func TestStore_SumFinalizedThrough(t *testing.T) {
	store := NewStore()
	repos := store.Repos()
	ctx := context.Background()

	current := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	p := &domain.Product{Code: "APL-01", Name: "Apples", Category: "fruit"}
	require.NoError(t, repos.Products.Create(ctx, p))

	first := &domain.ProductTransaction{ProductID: p.ID, TrxType: domain.TrxTypeInventory, Qty: 40, Status: domain.TrxStatusFinalized}
	require.NoError(t, repos.Transactions.Create(ctx, first))
	cutoff := current

	current = current.Add(time.Hour)
	later := &domain.ProductTransaction{ProductID: p.ID, TrxType: domain.TrxTypeInventory, Qty: 60, Status: domain.TrxStatusFinalized}
	require.NoError(t, repos.Transactions.Create(ctx, later))

	sum, err := repos.Transactions.SumFinalizedThrough(ctx, p.ID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sum)

	total, err := repos.Transactions.SumFinalized(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}
