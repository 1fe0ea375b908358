package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocksmith/shopd/internal/cache"
	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
)

// OverviewService computes the stock overview for the dashboard. The counts
// are cheap but hit several tables, so results are cached for a short TTL.
type OverviewService struct {
	repos       repository.Repos
	cache       cache.OverviewCache
	horizonDays int
	now         func() time.Time
}

func NewOverviewService(repos repository.Repos, c cache.OverviewCache, horizonDays int) *OverviewService {
	if horizonDays <= 0 {
		horizonDays = 14
	}
	return &OverviewService{repos: repos, cache: c, horizonDays: horizonDays, now: time.Now}
}

// SetClock overrides the current-time source. Test hook.
func (s *OverviewService) SetClock(now func() time.Time) { s.now = now }

func (s *OverviewService) GetOverview(ctx context.Context) (*domain.StockOverview, error) {
	if cached, ok, err := s.cache.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("overview cache read failed")
	} else if ok {
		return cached, nil
	}

	total, err := s.repos.Products.Count(ctx)
	if err != nil {
		return nil, err
	}
	outOfStock, err := s.repos.Products.CountOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	belowBase, err := s.repos.Suppliers.CountBelowBaseLevel(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().AddDate(0, 0, s.horizonDays)
	inHorizon, err := s.repos.Products.CountForecastBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	overview := &domain.StockOverview{
		TotalProducts:     total,
		OutOfStock:        outOfStock,
		BelowBaseLevel:    belowBase,
		ForecastInHorizon: inHorizon,
		HorizonDays:       s.horizonDays,
		GeneratedAt:       s.now().UTC(),
	}
	if err := s.cache.Set(ctx, overview); err != nil {
		log.Warn().Err(err).Msg("overview cache write failed")
	}
	return overview, nil
}
