// Package supplier defines the capability surface the shop expects from an
// external supplier: catalog lookups, delivery report parsing and order
// placement. Concrete implementations are registered per supplier internal
// name.
package supplier

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ProductData is the supplier's view of a catalog entry.
type ProductData struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Units int64           `json:"units"`
}

// ReportItem is one parsed line of a delivery report, in supplier units.
type ReportItem struct {
	SKU   string
	Qty   int64
	Price decimal.Decimal
}

// ReportIterator yields report items one at a time. It is finite and
// non-restartable; Next returns io.EOF when the report is exhausted.
type ReportIterator interface {
	Next() (ReportItem, error)
	Close() error
}

// API is the fixed capability set implemented per supplier.
type API interface {
	// RetrieveProduct returns the supplier's data for a SKU, or (nil, nil)
	// when the supplier does not carry it.
	RetrieveProduct(ctx context.Context, sku string) (*ProductData, error)
	// ParseDeliveryReport opens a report file and streams its line items.
	ParseDeliveryReport(ctx context.Context, path string) (ReportIterator, error)
	// OrderProduct places an order for qty batches of a SKU.
	OrderProduct(ctx context.Context, sku string, qty int64) error
}

// APIError signals an upstream supplier failure, e.g. an out-of-stock SKU
// during order placement.
type APIError struct {
	Supplier string
	Op       string
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supplier %s: %s: %v", e.Supplier, e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Registry maps supplier internal names to API implementations.
type Registry struct {
	mu   sync.RWMutex
	apis map[string]API
}

func NewRegistry() *Registry {
	return &Registry{apis: make(map[string]API)}
}

// Register binds an API implementation to a supplier internal name.
func (r *Registry) Register(internalName string, api API) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apis[internalName] = api
}

// Get returns the API for a supplier internal name.
func (r *Registry) Get(internalName string) (API, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	api, ok := r.apis[internalName]
	if !ok {
		return nil, fmt.Errorf("no supplier API registered for %q", internalName)
	}
	return api, nil
}
