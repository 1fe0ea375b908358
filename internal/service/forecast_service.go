package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

// ForecastService predicts when a product runs out of stock by fitting a
// line through its cumulative daily quantities since the last restock.
type ForecastService struct {
	repos repository.Repos
	now   func() time.Time
}

func NewForecastService(repos repository.Repos) *ForecastService {
	return &ForecastService{repos: repos, now: time.Now}
}

// SetClock overrides the current-time source. Test hook.
func (s *ForecastService) SetClock(now func() time.Time) { s.now = now }

const day = 24 * time.Hour

func dayOrdinal(t time.Time) int64 {
	return t.UTC().Truncate(day).Unix() / 86400
}

func ordinalToDate(n int64) time.Time {
	return time.Unix(n*86400, 0).UTC()
}

// PredictQuantity returns the date the product is expected to drop to the
// target quantity, based on a linear regression over the cumulative daily
// quantity series since the last finalized restock. Returns nil when the
// product is already at or below the target, when there is no history to
// extrapolate from, or when the trend is flat or upward.
func (s *ForecastService) PredictQuantity(ctx context.Context, productID, target int64) (*time.Time, error) {
	p, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Qty <= target {
		return nil, nil
	}

	restock, err := s.repos.Transactions.LastFinalizedOfType(ctx, productID, domain.TrxTypeInventory)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	initialQty, err := s.repos.Transactions.SumFinalizedThrough(ctx, productID, restock.DateCreated)
	if err != nil {
		return nil, err
	}
	deltas, err := s.repos.Transactions.DailyDeltasAfter(ctx, productID, restock.DateCreated)
	if err != nil {
		return nil, err
	}
	if len(deltas) == 0 {
		return nil, nil
	}

	// Build the daily series: the restock level sits one day before the
	// first movement, and today is pinned with a zero delta when no
	// transaction happened yet, so a quiet day flattens the trend.
	base := dayOrdinal(deltas[0].Day)
	today := dayOrdinal(s.now())
	xs := []float64{-1}
	ys := []float64{float64(initialQty)}
	sawToday := false
	for _, d := range deltas {
		ord := dayOrdinal(d.Day)
		if ord == today {
			sawToday = true
		}
		xs = append(xs, float64(ord-base))
		ys = append(ys, float64(d.Qty))
	}
	if !sawToday && today > dayOrdinal(deltas[len(deltas)-1].Day) {
		xs = append(xs, float64(today-base))
		ys = append(ys, 0)
	}
	// Cumulative quantity level per day.
	for i := 1; i < len(ys); i++ {
		ys[i] += ys[i-1]
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if slope >= 0 || math.IsNaN(slope) {
		return nil, nil
	}

	daysUntil := int64(math.Round(-float64(initialQty) / slope))
	at := ordinalToDate(base + daysUntil)
	return &at, nil
}

// UpdateOutOfStockForecast recomputes and stores the out-of-stock date for
// one product.
func (s *ForecastService) UpdateOutOfStockForecast(ctx context.Context, productID int64) error {
	at, err := s.PredictQuantity(ctx, productID, 0)
	if err != nil {
		return err
	}
	return s.repos.Products.SetForecast(ctx, productID, at)
}

// RefreshAllForecasts recomputes the out-of-stock forecast for the whole
// catalog. Used by the nightly job and the CLI.
func (s *ForecastService) RefreshAllForecasts(ctx context.Context) error {
	products, err := s.repos.Products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := s.UpdateOutOfStockForecast(ctx, p.ID); err != nil {
			return err
		}
	}
	log.Info().Int("products", len(products)).Msg("forecasts refreshed")
	return nil
}
