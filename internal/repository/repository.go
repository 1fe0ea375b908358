// Package repository defines the persistence boundary of the shop core.
// Implementations live in the postgres and memory subpackages.
package repository

import "context"

// Repos bundles all repositories bound to the same underlying handle, either
// the shared pool or a single transaction.
type Repos struct {
	Products     ProductRepository
	Transactions TransactionRepository
	Suppliers    SupplierRepository
	Deliveries   DeliveryRepository
	Stocktakes   StocktakeRepository
}

// TxRunner executes a function inside one atomic transaction, passing
// repositories bound to that transaction. If fn returns an error, nothing is
// applied.
type TxRunner interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}
