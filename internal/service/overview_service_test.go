package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksmith/shopd/internal/cache"
	"github.com/stocksmith/shopd/internal/domain"
)

// recordingCache is an OverviewCache that keeps the last value in memory.
type recordingCache struct {
	stored *domain.StockOverview
	hits   int
}

var _ cache.OverviewCache = (*recordingCache)(nil)

func (c *recordingCache) Get(ctx context.Context) (*domain.StockOverview, bool, error) {
	if c.stored == nil {
		return nil, false, nil
	}
	c.hits++
	return c.stored, true, nil
}

func (c *recordingCache) Set(ctx context.Context, overview *domain.StockOverview) error {
	c.stored = overview
	return nil
}

func (c *recordingCache) Invalidate(ctx context.Context) error {
	c.stored = nil
	return nil
}

func TestOverviewService_Counts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	overviewSvc := NewOverviewService(f.repos, cache.NewNoopOverviewCache(), 14)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	overviewSvc.SetClock(func() time.Time { return now })

	stocked := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.addStock(t, stocked.ID, 50)
	empty := f.createProduct(t, "PEA-01", "Pears", "fruit")

	// Below its base level and forecast to run out inside the horizon.
	low := f.createProduct(t, "MLK-01", "Milk", "dairy")
	f.addStock(t, low.ID, 5)
	_, err := f.catalog.SetBaseStockLevel(ctx, low.ID, 20)
	require.NoError(t, err)
	soon := now.AddDate(0, 0, 7)
	require.NoError(t, f.repos.Products.SetForecast(ctx, low.ID, &soon))

	// Forecast far outside the horizon.
	later := now.AddDate(0, 0, 30)
	require.NoError(t, f.repos.Products.SetForecast(ctx, empty.ID, &later))

	overview, err := overviewSvc.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalProducts)
	assert.Equal(t, 1, overview.OutOfStock)
	assert.Equal(t, 1, overview.BelowBaseLevel)
	assert.Equal(t, 1, overview.ForecastInHorizon)
	assert.Equal(t, 14, overview.HorizonDays)
}

func TestOverviewService_ServesFromCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := &recordingCache{}
	overviewSvc := NewOverviewService(f.repos, c, 14)

	f.createProduct(t, "APL-01", "Apples", "fruit")

	first, err := overviewSvc.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalProducts)

	// More products arrive, but the cached overview is still served.
	f.createProduct(t, "PEA-01", "Pears", "fruit")
	second, err := overviewSvc.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalProducts)
	assert.Equal(t, 1, c.hits)

	require.NoError(t, c.Invalidate(ctx))
	third, err := overviewSvc.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, third.TotalProducts)
}
