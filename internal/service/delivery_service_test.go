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

func TestDeliveryService_PopulateNormalizesUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)
	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	// One supplier batch is 25 base units for 12.50.
	sp := f.linkOffering(t, sup.ID, p.ID, "SKU-1", "12.50", 25)

	f.api.reports["reports/w34.csv"] = []supplier.ReportItem{
		{SKU: "SKU-1", Qty: 4, Price: decimal.RequireFromString("12.50")},
	}
	d, err := f.delivery.CreateDelivery(ctx, sup.ID, "reports/w34.csv")
	require.NoError(t, err)

	_, err = f.delivery.Populate(ctx, d.ID)
	require.NoError(t, err)

	items, err := f.delivery.ListItems(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, sp.ID, items[0].SupplierProductID)
	assert.Equal(t, int64(100), items[0].Qty)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("0.50")),
		"expected per-unit price 0.50, got %s", items[0].Price)
}

func TestDeliveryService_PopulateSkipsUnknownSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)
	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.linkOffering(t, sup.ID, p.ID, "SKU-1", "12.50", 25)

	f.api.reports["reports/w35.csv"] = []supplier.ReportItem{
		{SKU: "SKU-1", Qty: 2, Price: decimal.RequireFromString("12.50")},
		{SKU: "GHOST", Qty: 1, Price: decimal.RequireFromString("3.00")},
	}
	d, err := f.delivery.CreateDelivery(ctx, sup.ID, "reports/w35.csv")
	require.NoError(t, err)

	_, err = f.delivery.Populate(ctx, d.ID)
	require.NoError(t, err)

	items, err := f.delivery.ListItems(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDeliveryService_ProcessBooksInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)
	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.linkOffering(t, sup.ID, p.ID, "SKU-1", "12.50", 25)

	f.api.reports["reports/w36.csv"] = []supplier.ReportItem{
		{SKU: "SKU-1", Qty: 2, Price: decimal.RequireFromString("12.50")},
	}
	d, err := f.delivery.CreateDelivery(ctx, sup.ID, "reports/w36.csv")
	require.NoError(t, err)
	_, err = f.delivery.Populate(ctx, d.ID)
	require.NoError(t, err)

	valid, err := f.delivery.Valid(ctx, d.ID)
	require.NoError(t, err)
	require.True(t, valid)

	require.NoError(t, f.delivery.Process(ctx, d.ID))

	got, err := f.ledger.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Qty)

	items, err := f.delivery.ListItems(ctx, d.ID)
	require.NoError(t, err)
	trxs, err := f.ledger.TransactionsByRef(ctx, domain.DeliveryItemRef(items[0].ID))
	require.NoError(t, err)
	require.Len(t, trxs, 1)
	assert.Equal(t, domain.TrxTypeInventory, trxs[0].TrxType)
	assert.Equal(t, domain.TrxStatusFinalized, trxs[0].Status)

	locked, err := f.delivery.GetDelivery(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)
}

func TestDeliveryService_ProcessTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)
	p := f.createProduct(t, "APL-01", "Apples", "fruit")
	f.linkOffering(t, sup.ID, p.ID, "SKU-1", "12.50", 25)

	f.api.reports["reports/w37.csv"] = []supplier.ReportItem{
		{SKU: "SKU-1", Qty: 1, Price: decimal.RequireFromString("12.50")},
	}
	d, err := f.delivery.CreateDelivery(ctx, sup.ID, "reports/w37.csv")
	require.NoError(t, err)
	_, err = f.delivery.Populate(ctx, d.ID)
	require.NoError(t, err)

	require.NoError(t, f.delivery.Process(ctx, d.ID))
	assert.ErrorIs(t, f.delivery.Process(ctx, d.ID), domain.ErrConflict)

	got, err := f.ledger.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.Qty)
}

func TestDeliveryService_ProcessRequiresLinkedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sup := f.createSupplier(t)

	// Cached but never linked to a shop product.
	f.api.products["SKU-9"] = supplier.ProductData{
		SKU:   "SKU-9",
		Name:  "Mystery box",
		Price: decimal.RequireFromString("5.00"),
		Units: 10,
	}
	_, err := f.catalog.GetSupplierProduct(ctx, sup.ID, "SKU-9", false)
	require.NoError(t, err)

	f.api.reports["reports/w38.csv"] = []supplier.ReportItem{
		{SKU: "SKU-9", Qty: 1, Price: decimal.RequireFromString("5.00")},
	}
	d, err := f.delivery.CreateDelivery(ctx, sup.ID, "reports/w38.csv")
	require.NoError(t, err)
	_, err = f.delivery.Populate(ctx, d.ID)
	require.NoError(t, err)

	valid, err := f.delivery.Valid(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, valid)

	assert.ErrorIs(t, f.delivery.Process(ctx, d.ID), domain.ErrValidation)
}

func TestDeliveryService_CreateDeliveryUnknownSupplier(t *testing.T) {
	f := newFixture(t)
	_, err := f.delivery.CreateDelivery(context.Background(), 999, "reports/x.csv")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
