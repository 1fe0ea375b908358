package domain

// Reference kinds for ledger transactions. A transaction records where it
// originated as a (kind, id) pair instead of a typed foreign key, so the
// ledger stays independent of the referencing entity.
const (
	RefKindNone          = ""
	RefKindDeliveryItem  = "delivery_item"
	RefKindStocktakeItem = "stocktake_item"
)

// Ref is a tagged reference to the entity a transaction originated from.
type Ref struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// DeliveryItemRef builds a reference to a delivery item.
func DeliveryItemRef(id int64) Ref {
	return Ref{Kind: RefKindDeliveryItem, ID: id}
}

// StocktakeItemRef builds a reference to a stocktake item.
func StocktakeItemRef(id int64) Ref {
	return Ref{Kind: RefKindStocktakeItem, ID: id}
}
