package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
	"github.com/stocksmith/shopd/internal/supplier"
)

// CatalogService keeps a local cache of supplier catalog entries, fetching
// from the upstream supplier API on miss or on an explicit refresh.
type CatalogService struct {
	repos    repository.Repos
	registry *supplier.Registry
}

func NewCatalogService(repos repository.Repos, registry *supplier.Registry) *CatalogService {
	return &CatalogService{repos: repos, registry: registry}
}

// CreateSupplier registers a supplier. InternalName must match a registered
// supplier API implementation.
func (s *CatalogService) CreateSupplier(ctx context.Context, name, internalName string, deliversOn time.Weekday) (*domain.Supplier, error) {
	if _, err := s.registry.Get(internalName); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	sup := &domain.Supplier{Name: name, InternalName: internalName, DeliversOn: deliversOn}
	if err := s.repos.Suppliers.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *CatalogService) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	return s.repos.Suppliers.GetSupplier(ctx, id)
}

// SetBaseStockLevel sets the reorder threshold for a product.
func (s *CatalogService) SetBaseStockLevel(ctx context.Context, productID, level int64) (*domain.BaseStockLevel, error) {
	if level < 0 {
		return nil, fmt.Errorf("base stock level must not be negative: %w", domain.ErrValidation)
	}
	if _, err := s.repos.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	l := &domain.BaseStockLevel{ProductID: productID, Level: level}
	if err := s.repos.Suppliers.CreateBaseStockLevel(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetSupplierProduct returns the cached catalog entry for (supplier, sku).
// On cache miss, or when refresh is set, it asks the supplier API and upserts
// the result. A SKU the supplier does not carry yields (nil, nil); an existing
// product link is never dropped by a refresh.
func (s *CatalogService) GetSupplierProduct(ctx context.Context, supplierID int64, sku string, refresh bool) (*domain.SupplierProduct, error) {
	if !refresh {
		sp, err := s.repos.Suppliers.GetSupplierProduct(ctx, supplierID, sku)
		if err == nil {
			return sp, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	sup, err := s.repos.Suppliers.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	api, err := s.registry.Get(sup.InternalName)
	if err != nil {
		return nil, err
	}

	data, err := api.RetrieveProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	if data == nil {
		log.Warn().
			Str("supplier", sup.InternalName).
			Str("sku", sku).
			Msg("sku unknown upstream")
		return nil, nil
	}

	sp := &domain.SupplierProduct{
		SupplierID: supplierID,
		SKU:        data.SKU,
		Name:       data.Name,
		Price:      data.Price,
		Qty:        data.Units,
	}
	if err := s.repos.Suppliers.UpsertSupplierProduct(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// LinkProduct associates a cached supplier catalog entry with a shop product.
func (s *CatalogService) LinkProduct(ctx context.Context, supplierID int64, sku string, productID int64) (*domain.SupplierProduct, error) {
	sp, err := s.repos.Suppliers.GetSupplierProduct(ctx, supplierID, sku)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	sp.ProductID = &productID
	if err := s.repos.Suppliers.UpsertSupplierProduct(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}
