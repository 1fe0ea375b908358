package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksmith/shopd/internal/domain"
	"github.com/stocksmith/shopd/internal/repository"
	"github.com/stocksmith/shopd/internal/repository/memory"
	"github.com/stocksmith/shopd/internal/supplier"
)

// orderCall records one OrderProduct invocation against the fake API.
type orderCall struct {
	SKU string
	Qty int64
}

// fakeSupplierAPI is an in-memory supplier.API for tests. SKUs listed in
// failSKUs reject orders with an APIError, like an out-of-stock upstream.
type fakeSupplierAPI struct {
	name          string
	products      map[string]supplier.ProductData
	reports       map[string][]supplier.ReportItem
	failSKUs      map[string]bool
	orders        []orderCall
	retrieveCalls int
}

var _ supplier.API = (*fakeSupplierAPI)(nil)

func newFakeSupplierAPI(name string) *fakeSupplierAPI {
	return &fakeSupplierAPI{
		name:     name,
		products: make(map[string]supplier.ProductData),
		reports:  make(map[string][]supplier.ReportItem),
		failSKUs: make(map[string]bool),
	}
}

func (f *fakeSupplierAPI) RetrieveProduct(ctx context.Context, sku string) (*supplier.ProductData, error) {
	f.retrieveCalls++
	data, ok := f.products[sku]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

func (f *fakeSupplierAPI) ParseDeliveryReport(ctx context.Context, path string) (supplier.ReportIterator, error) {
	items, ok := f.reports[path]
	if !ok {
		return nil, errors.New("unknown report " + path)
	}
	return &sliceIterator{items: items}, nil
}

func (f *fakeSupplierAPI) OrderProduct(ctx context.Context, sku string, qty int64) error {
	if f.failSKUs[sku] {
		return &supplier.APIError{Supplier: f.name, Op: "order product", Err: errors.New("out of stock")}
	}
	f.orders = append(f.orders, orderCall{SKU: sku, Qty: qty})
	return nil
}

type sliceIterator struct {
	items []supplier.ReportItem
	pos   int
}

func (it *sliceIterator) Next() (supplier.ReportItem, error) {
	if it.pos >= len(it.items) {
		return supplier.ReportItem{}, io.EOF
	}
	item := it.items[it.pos]
	it.pos++
	return item, nil
}

func (it *sliceIterator) Close() error { return nil }

// fixture wires the services over the in-memory store and one fake supplier.
type fixture struct {
	store    *memory.Store
	repos    repository.Repos
	tx       *memory.TxRunner
	registry *supplier.Registry
	api      *fakeSupplierAPI

	ledger    *LedgerService
	catalog   *CatalogService
	delivery  *DeliveryService
	stocktake *StocktakeService
	forecast  *ForecastService
	orders    *OrderService
}

const fixtureSupplierName = "acme"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	tx := memory.NewTxRunner(store)
	registry := supplier.NewRegistry()
	api := newFakeSupplierAPI(fixtureSupplierName)
	registry.Register(fixtureSupplierName, api)

	catalog := NewCatalogService(repos, registry)
	return &fixture{
		store:     store,
		repos:     repos,
		tx:        tx,
		registry:  registry,
		api:       api,
		ledger:    NewLedgerService(repos, tx),
		catalog:   catalog,
		delivery:  NewDeliveryService(repos, tx, registry, catalog, nil),
		stocktake: NewStocktakeService(repos, tx, 2),
		forecast:  NewForecastService(repos),
		orders:    NewOrderService(repos, registry),
	}
}

func (f *fixture) createProduct(t *testing.T, code, name, category string) *domain.Product {
	t.Helper()
	p, err := f.ledger.CreateProduct(context.Background(), code, name, category)
	require.NoError(t, err)
	return p
}

func (f *fixture) createSupplier(t *testing.T) *domain.Supplier {
	t.Helper()
	sup, err := f.catalog.CreateSupplier(context.Background(), "Acme Wholesale", fixtureSupplierName, time.Tuesday)
	require.NoError(t, err)
	return sup
}

// addStock books a finalized restock of qty units.
func (f *fixture) addStock(t *testing.T, productID, qty int64) *domain.ProductTransaction {
	t.Helper()
	return f.bookTransaction(t, productID, domain.TrxTypeInventory, qty)
}

// sellStock books a finalized customer purchase of qty units (stored as a
// negative movement).
func (f *fixture) sellStock(t *testing.T, productID, qty int64) *domain.ProductTransaction {
	t.Helper()
	return f.bookTransaction(t, productID, domain.TrxTypePurchase, -qty)
}

func (f *fixture) bookTransaction(t *testing.T, productID int64, trxType string, qty int64) *domain.ProductTransaction {
	t.Helper()
	trx, err := f.ledger.CreateTransaction(context.Background(), productID, trxType, qty, domain.Ref{})
	require.NoError(t, err)
	require.NoError(t, f.ledger.FinalizeTransaction(context.Background(), trx.ID))
	return trx
}

// linkOffering caches a supplier product and links it to a shop product.
func (f *fixture) linkOffering(t *testing.T, supplierID, productID int64, sku string, price string, units int64) *domain.SupplierProduct {
	t.Helper()
	f.api.products[sku] = supplier.ProductData{
		SKU:   sku,
		Name:  "offering " + sku,
		Price: decimal.RequireFromString(price),
		Units: units,
	}
	_, err := f.catalog.GetSupplierProduct(context.Background(), supplierID, sku, false)
	require.NoError(t, err)
	sp, err := f.catalog.LinkProduct(context.Background(), supplierID, sku, productID)
	require.NoError(t, err)
	return sp
}
