package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/supplier"
)

func TestCatalogService_FetchOnMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)

	f.api.products["SKU-1"] = supplier.ProductData{
		SKU:   "SKU-1",
		Name:  "Crate of apples",
		Price: decimal.RequireFromString("12.50"),
		Units: 25,
	}

	sp, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "SKU-1", false)
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, "Crate of apples", sp.Name)
	assert.Equal(t, int64(25), sp.Qty)
	assert.Equal(t, 1, f.api.retrieveCalls)

	// Second lookup is served from the cache.
	again, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "SKU-1", false)
	require.NoError(t, err)
	assert.Equal(t, sp.ID, again.ID)
	assert.Equal(t, 1, f.api.retrieveCalls)
}

func TestCatalogService_RefreshBypassesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)

	f.api.products["SKU-1"] = supplier.ProductData{
		SKU:   "SKU-1",
		Name:  "Crate of apples",
		Price: decimal.RequireFromString("12.50"),
		Units: 25,
	}
	first, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "SKU-1", false)
	require.NoError(t, err)

	f.api.products["SKU-1"] = supplier.ProductData{
		SKU:   "SKU-1",
		Name:  "Crate of apples",
		Price: decimal.RequireFromString("14.00"),
		Units: 25,
	}
	refreshed, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "SKU-1", true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, refreshed.ID)
	assert.True(t, refreshed.Price.Equal(decimal.RequireFromString("14.00")))
	assert.Equal(t, 2, f.api.retrieveCalls)
}

func TestCatalogService_RefreshKeepsProductLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)
	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.linkOffering(t, sup.ID, p.ID, "SKU-1", "12.50", 25)

	refreshed, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "SKU-1", true)
	require.NoError(t, err)
	require.NotNil(t, refreshed.ProductID)
	assert.Equal(t, p.ID, *refreshed.ProductID)
}

func TestCatalogService_UnknownSKUIsNotAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)

	sp, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "NO-SUCH", false)
	require.NoError(t, err)
	assert.Nil(t, sp)
}

func TestCatalogService_CreateSupplierRequiresRegisteredAPI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateSupplier(ctx, "Ghost Corp", "ghost", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCatalogService_SetBaseStockLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProduct(t, "APL-01", "Apples", "fruit")

	l, err := f.catalog.SetBaseStockLevel(ctx, p.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), l.Level)

	// Setting again replaces the level instead of adding a second row.
	again, err := f.catalog.SetBaseStockLevel(ctx, p.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, l.ID, again.ID)
	assert.Equal(t, int64(60), again.Level)

	_, err = f.catalog.SetBaseStockLevel(ctx, p.ID, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
