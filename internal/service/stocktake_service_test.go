package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksmith/shopd/internal/domain"
)

func seedCatalog(t *testing.T, f *fixture, n int) []*domain.Product {
	t.Helper()
	categories := []string{"fruit", "dairy", "bakery"}
	products := make([]*domain.Product, 0, n)
	for i := 0; i < n; i++ {
		code := string(rune('A'+i)) + "-01"
		p := f.createProduct(t, code, "product "+code, categories[i%len(categories)])
		products = append(products, p)
	}
	return products
}

func TestStocktakeService_InitiateChunksWholeCatalog(t *testing.T) {
	f := newFixture(t) // chunk size 2
	ctx := context.Background()
	seedCatalog(t, f, 5)

	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	chunks, err := f.stocktake.ListChunks(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	seen := map[int64]bool{}
	var lastCategory string
	categoriesSeen := map[string]bool{}
	total := 0
	for _, chunk := range chunks {
		items, err := f.stocktake.ListItems(ctx, chunk.ID)
		require.NoError(t, err)
		total += len(items)
		for _, item := range items {
			assert.False(t, seen[item.ProductID], "product %d appears twice", item.ProductID)
			seen[item.ProductID] = true
			p, err := f.ledger.GetProduct(ctx, item.ProductID)
			require.NoError(t, err)
			// Category-ordered chunking: once a category is left behind it
			// never comes back.
			if p.Category != lastCategory {
				assert.False(t, categoriesSeen[p.Category], "category %s split across chunks", p.Category)
				categoriesSeen[p.Category] = true
				lastCategory = p.Category
			}
		}
	}
	assert.Equal(t, 5, total)
}

func TestStocktakeService_SingleOpenStocktake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedCatalog(t, f, 2)

	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	_, err = f.stocktake.Initiate(ctx)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Once the first one is finished a new round can start.
	finishStocktake(t, f, st.ID)
	_, err = f.stocktake.Initiate(ctx)
	require.NoError(t, err)
}

func finishStocktake(t *testing.T, f *fixture, stocktakeID int64) {
	t.Helper()
	ctx := context.Background()
	chunks, err := f.stocktake.ListChunks(ctx, stocktakeID)
	require.NoError(t, err)
	for _, chunk := range chunks {
		items, err := f.stocktake.ListItems(ctx, chunk.ID)
		require.NoError(t, err)
		for _, item := range items {
			p, err := f.ledger.GetProduct(ctx, item.ProductID)
			require.NoError(t, err)
			require.NoError(t, f.stocktake.RecordCount(ctx, item.ID, p.Qty))
		}
		require.NoError(t, f.stocktake.FinalizeChunk(ctx, chunk.ID))
	}
	require.NoError(t, f.stocktake.Finalize(ctx, stocktakeID))
}

func TestStocktakeService_AssignIsIdempotentPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedCatalog(t, f, 4)
	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	first, err := f.stocktake.AssignFreeChunk(ctx, st.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := f.stocktake.AssignFreeChunk(ctx, st.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)
}

func TestStocktakeService_ConcurrentAssignGivesDistinctChunks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedCatalog(t, f, 8) // 4 chunks of 2
	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	const counters = 4
	results := make([]*domain.StocktakeChunk, counters)
	var wg sync.WaitGroup
	for i := 0; i < counters; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			chunk, err := f.stocktake.AssignFreeChunk(ctx, st.ID, int64(userID+1))
			assert.NoError(t, err)
			results[userID] = chunk
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, chunk := range results {
		require.NotNil(t, chunk)
		assert.False(t, seen[chunk.ID], "chunk %d assigned twice", chunk.ID)
		seen[chunk.ID] = true
	}
}

func TestStocktakeService_AssignExhaustsChunks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedCatalog(t, f, 2) // a single chunk
	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	chunk, err := f.stocktake.AssignFreeChunk(ctx, st.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, chunk)

	none, err := f.stocktake.AssignFreeChunk(ctx, st.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStocktakeService_RecordCountOnFinalizedChunk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedCatalog(t, f, 2)
	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	chunks, err := f.stocktake.ListChunks(ctx, st.ID)
	require.NoError(t, err)
	items, err := f.stocktake.ListItems(ctx, chunks[0].ID)
	require.NoError(t, err)

	require.NoError(t, f.stocktake.RecordCount(ctx, items[0].ID, 5))
	require.NoError(t, f.stocktake.FinalizeChunk(ctx, chunks[0].ID))

	assert.ErrorIs(t, f.stocktake.RecordCount(ctx, items[0].ID, 6), domain.ErrConflict)
	assert.ErrorIs(t, f.stocktake.FinalizeChunk(ctx, chunks[0].ID), domain.ErrConflict)
}

func TestStocktakeService_FinalizeRequiresAllChunksDone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedCatalog(t, f, 4) // 2 chunks
	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)

	chunks, err := f.stocktake.ListChunks(ctx, st.ID)
	require.NoError(t, err)
	require.NoError(t, f.stocktake.FinalizeChunk(ctx, chunks[0].ID))

	assert.ErrorIs(t, f.stocktake.Finalize(ctx, st.ID), domain.ErrConflict)
}

func TestStocktakeService_FinalizeBooksCorrections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.createProduct(t, "APL-01", "Apples", "fruit")
	p2 := f.createProduct(t, "PEA-01", "Pears", "fruit")
	f.addStock(t, p1.ID, 10)
	f.addStock(t, p2.ID, 4)

	st, err := f.stocktake.Initiate(ctx)
	require.NoError(t, err)
	chunks, err := f.stocktake.ListChunks(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	items, err := f.stocktake.ListItems(ctx, chunks[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	counted := map[int64]int64{p1.ID: 7, p2.ID: 4} // p2 matches the records
	for _, item := range items {
		require.NoError(t, f.stocktake.RecordCount(ctx, item.ID, counted[item.ProductID]))
	}
	require.NoError(t, f.stocktake.FinalizeChunk(ctx, chunks[0].ID))
	require.NoError(t, f.stocktake.Finalize(ctx, st.ID))

	got1, err := f.ledger.GetProduct(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got1.Qty)
	got2, err := f.ledger.GetProduct(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got2.Qty)

	// Every counted item leaves a finalized correction, zero delta included.
	for _, item := range items {
		trxs, err := f.ledger.TransactionsByRef(ctx, domain.StocktakeItemRef(item.ID))
		require.NoError(t, err)
		require.Len(t, trxs, 1)
		assert.Equal(t, domain.TrxTypeCorrection, trxs[0].TrxType)
		assert.Equal(t, domain.TrxStatusFinalized, trxs[0].Status)
		assert.Equal(t, counted[item.ProductID]-initialQtyFor(item.ProductID, p1.ID), trxs[0].Qty)
	}

	finished, err := f.stocktake.GetStocktake(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, finished.Locked)

	assert.ErrorIs(t, f.stocktake.Finalize(ctx, st.ID), domain.ErrConflict)
	_, err = f.stocktake.AssignFreeChunk(ctx, st.ID, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func initialQtyFor(productID, p1ID int64) int64 {
	if productID == p1ID {
		return 10
	}
	return 4
}
