package domain

import "strings"

// Transaction types.
const (
	TrxTypeInventory  = "INVENTORY"  // restock from a delivery
	TrxTypePurchase   = "PURCHASE"   // customer purchase, negative qty
	TrxTypeCorrection = "CORRECTION" // stocktake reconciliation
)

// Transaction statuses. PENDING is the only non-terminal status.
const (
	TrxStatusPending   = "PENDING"
	TrxStatusFinalized = "FINALIZED"
	TrxStatusCanceled  = "CANCELED"
)

var trxTypes = map[string]bool{
	TrxTypeInventory:  true,
	TrxTypePurchase:   true,
	TrxTypeCorrection: true,
}

// ParseTrxType returns the canonical transaction type for a label
// (case-insensitive).
func ParseTrxType(label string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(label))
	return t, trxTypes[t]
}

// TrxStatusTerminal reports whether a status allows no further transitions.
func TrxStatusTerminal(status string) bool {
	return status == TrxStatusFinalized || status == TrxStatusCanceled
}
