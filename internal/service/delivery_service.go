package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
	"github.com/stocksmith/shopd/internal/storage"
	"github.com/stocksmith/shopd/internal/supplier"
)

// DeliveryService turns raw supplier reports into delivery items and finally
// into finalized inventory transactions. The report is kept as an opaque key
// until Populate parses it; Process locks the delivery so it can never be
// booked twice.
type DeliveryService struct {
	repos    repository.Repos
	tx       repository.TxRunner
	registry *supplier.Registry
	catalog  *CatalogService
	reports  storage.ReportStore
}

func NewDeliveryService(repos repository.Repos, tx repository.TxRunner, registry *supplier.Registry, catalog *CatalogService, reports storage.ReportStore) *DeliveryService {
	return &DeliveryService{repos: repos, tx: tx, registry: registry, catalog: catalog, reports: reports}
}

// CreateDelivery registers a report for later population. The report itself
// is not opened here.
func (s *DeliveryService) CreateDelivery(ctx context.Context, supplierID int64, report string) (*domain.Delivery, error) {
	if _, err := s.repos.Suppliers.GetSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	d := &domain.Delivery{SupplierID: supplierID, Report: report}
	if err := s.repos.Deliveries.CreateDelivery(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeliveryService) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	return s.repos.Deliveries.GetDelivery(ctx, id)
}

func (s *DeliveryService) ListItems(ctx context.Context, deliveryID int64) ([]*domain.DeliveryItem, error) {
	return s.repos.Deliveries.ListItems(ctx, deliveryID)
}

// Populate parses the delivery report and creates one delivery item per
// resolvable line. Quantities are normalized to base units (line qty times
// the batch size) and prices to per-base-unit prices (line price divided by
// the batch size). Lines whose SKU cannot be resolved against the supplier
// catalog are skipped.
func (s *DeliveryService) Populate(ctx context.Context, deliveryID int64) (*domain.Delivery, error) {
	d, err := s.repos.Deliveries.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.Locked {
		return nil, fmt.Errorf("delivery %d already processed: %w", d.ID, domain.ErrConflict)
	}
	sup, err := s.repos.Suppliers.GetSupplier(ctx, d.SupplierID)
	if err != nil {
		return nil, err
	}
	api, err := s.registry.Get(sup.InternalName)
	if err != nil {
		return nil, err
	}

	path := d.Report
	if s.reports != nil {
		path, err = s.reports.Fetch(ctx, d.Report)
		if err != nil {
			return nil, fmt.Errorf("fetching report for delivery %d: %w", d.ID, err)
		}
	}

	it, err := api.ParseDeliveryReport(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parsing report for delivery %d: %w", d.ID, err)
	}
	defer it.Close()

	// Catalog lookups may hit the supplier API, so resolve every line before
	// opening the database transaction.
	var items []*domain.DeliveryItem
	skipped := 0
	for {
		line, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading report for delivery %d: %w", d.ID, err)
		}
		sp, err := s.catalog.GetSupplierProduct(ctx, sup.ID, line.SKU, false)
		if err != nil {
			return nil, err
		}
		if sp == nil || sp.Qty <= 0 {
			skipped++
			continue
		}
		items = append(items, &domain.DeliveryItem{
			DeliveryID:        d.ID,
			SupplierProductID: sp.ID,
			Qty:               line.Qty * sp.Qty,
			Price:             line.Price.Div(decimal.NewFromInt(sp.Qty)),
		})
	}
	if skipped > 0 {
		log.Warn().
			Int64("delivery_id", d.ID).
			Int("skipped", skipped).
			Msg("report lines with unknown sku skipped")
	}

	err = s.tx.InTx(ctx, func(r repository.Repos) error {
		for _, item := range items {
			if err := r.Deliveries.AddItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Valid reports whether every delivery item resolves to a supplier catalog
// entry that is linked to a shop product. Only valid deliveries can be
// processed.
func (s *DeliveryService) Valid(ctx context.Context, deliveryID int64) (bool, error) {
	items, err := s.repos.Deliveries.ListItems(ctx, deliveryID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		sp, err := s.repos.Suppliers.GetSupplierProductByID(ctx, item.SupplierProductID)
		if err != nil {
			return false, err
		}
		if sp.ProductID == nil {
			return false, nil
		}
	}
	return true, nil
}

// Process books the delivery into the ledger: one finalized INVENTORY
// transaction per item, then the delivery is locked. Runs in a single
// database transaction, so a delivery is booked exactly once or not at all.
func (s *DeliveryService) Process(ctx context.Context, deliveryID int64) error {
	return s.tx.InTx(ctx, func(r repository.Repos) error {
		d, err := r.Deliveries.GetDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d.Locked {
			return fmt.Errorf("delivery %d already processed: %w", d.ID, domain.ErrConflict)
		}
		items, err := r.Deliveries.ListItems(ctx, d.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			sp, err := r.Suppliers.GetSupplierProductByID(ctx, item.SupplierProductID)
			if err != nil {
				return err
			}
			if sp.ProductID == nil {
				return fmt.Errorf("delivery item %d has no linked product: %w", item.ID, domain.ErrValidation)
			}
			trx, err := newTransaction(ctx, r, *sp.ProductID, domain.TrxTypeInventory, item.Qty, domain.DeliveryItemRef(item.ID))
			if err != nil {
				return err
			}
			if err := applyStatus(ctx, r, trx, domain.TrxStatusFinalized); err != nil {
				return err
			}
		}
		if err := r.Deliveries.LockDelivery(ctx, d.ID); err != nil {
			return err
		}
		log.Info().
			Int64("delivery_id", d.ID).
			Int("items", len(items)).
			Msg("delivery processed")
		return nil
	})
}
