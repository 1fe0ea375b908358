package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksmith/shopd/internal/domain"
)

// forecastClock pins both the store and the forecast service to a mutable
// point in time.
type forecastClock struct {
	current time.Time
}

func (c *forecastClock) now() time.Time { return c.current }

func (c *forecastClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func setupForecast(t *testing.T, f *fixture) *forecastClock {
	t.Helper()
	clock := &forecastClock{current: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	f.store.SetClock(clock.now)
	f.forecast.SetClock(clock.now)
	return clock
}

func TestForecastService_SteadyConsumption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := setupForecast(t, f)
	start := clock.current

	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.addStock(t, p.ID, 100)

	// Sell 5 a day for four days.
	for i := 0; i < 4; i++ {
		clock.advance(24 * time.Hour)
		f.sellStock(t, p.ID, 5)
	}
	clock.advance(24 * time.Hour)

	got, err := f.forecast.PredictQuantity(ctx, p.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, got)

	// At 5 units a day 100 units last about 20 days.
	expected := start.Truncate(24 * time.Hour).AddDate(0, 0, 20)
	assert.WithinDuration(t, expected, *got, 4*24*time.Hour)
}

func TestForecastService_NoPredictionWhenTrendIsUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := setupForecast(t, f)

	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.addStock(t, p.ID, 100)
	// Two stocktakes found more than recorded, so the level keeps rising
	// after the restock.
	for i := 0; i < 2; i++ {
		clock.advance(24 * time.Hour)
		f.bookTransaction(t, p.ID, domain.TrxTypeCorrection, 5)
	}
	clock.advance(24 * time.Hour)

	got, err := f.forecast.PredictQuantity(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestForecastService_NoPredictionAtOrBelowTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	setupForecast(t, f)

	p := f.createProduct(t, "APL-01", "Apples", "fruit")

	got, err := f.forecast.PredictQuantity(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestForecastService_NoPredictionWithoutRestock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	setupForecast(t, f)

	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	// Stock arrived through a correction, never through a restock.
	trx, err := f.ledger.CreateTransaction(ctx, p.ID, domain.TrxTypeCorrection, 50, domain.Ref{})
	require.NoError(t, err)
	require.NoError(t, f.ledger.FinalizeTransaction(ctx, trx.ID))

	got, err := f.forecast.PredictQuantity(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestForecastService_NoPredictionWithoutMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := setupForecast(t, f)

	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.addStock(t, p.ID, 100)
	clock.advance(3 * 24 * time.Hour)

	got, err := f.forecast.PredictQuantity(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestForecastService_UpdateOutOfStockForecast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := setupForecast(t, f)

	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.addStock(t, p.ID, 100)
	for i := 0; i < 4; i++ {
		clock.advance(24 * time.Hour)
		f.sellStock(t, p.ID, 5)
	}
	clock.advance(24 * time.Hour)

	require.NoError(t, f.forecast.UpdateOutOfStockForecast(ctx, p.ID))
	got, err := f.ledger.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OutOfStockForecast)

	// Selling everything clears the forecast on the next refresh.
	f.sellStock(t, p.ID, 80)
	require.NoError(t, f.forecast.RefreshAllForecasts(ctx))
	got, err = f.ledger.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OutOfStockForecast)
}
