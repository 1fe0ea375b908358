package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item in the shop. Qty is a cache of the summed
// finalized transaction quantities; the ledger is the source of truth.
type Product struct {
	ID                  int64      `json:"id" db:"id"`
	Code                string     `json:"code" db:"code"`
	Name                string     `json:"name" db:"name"`
	Category            string     `json:"category" db:"category"`
	Qty                 int64      `json:"qty" db:"qty"`
	OutOfStockForecast  *time.Time `json:"out_of_stock_forecast" db:"out_of_stock_forecast"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// ProductPatch enumerates the updatable product fields. Nil means unchanged.
type ProductPatch struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	Category *string `json:"category"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}

// ProductTransaction is a single quantity-affecting ledger entry. Only
// finalized transactions count toward the product quantity.
type ProductTransaction struct {
	ID          int64     `json:"id" db:"id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	TrxType     string    `json:"trx_type" db:"trx_type"`
	Qty         int64     `json:"qty" db:"qty"`
	Status      string    `json:"status" db:"status"`
	RefKind     string    `json:"ref_kind" db:"ref_kind"`
	RefID       int64     `json:"ref_id" db:"ref_id"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// DailyQuantity is a per-calendar-day sum of transaction quantities.
type DailyQuantity struct {
	Day time.Time `json:"day" db:"day"`
	Qty int64     `json:"qty" db:"qty"`
}

// Supplier is an external product source. DeliversOn is the fixed weekly
// delivery weekday used by refill planning.
type Supplier struct {
	ID           int64        `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	InternalName string       `json:"internal_name" db:"internal_name"`
	DeliversOn   time.Weekday `json:"delivers_on" db:"delivers_on"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// SupplierProduct is a locally cached supplier catalog row, keyed by
// (supplier, SKU). Qty is the batch size: one purchased unit of the supplier
// product yields Qty base units of the linked shop product. Price is the
// price of one batch.
type SupplierProduct struct {
	ID         int64           `json:"id" db:"id"`
	SupplierID int64           `json:"supplier_id" db:"supplier_id"`
	ProductID  *int64          `json:"product_id" db:"product_id"`
	SKU        string          `json:"sku" db:"sku"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Qty        int64           `json:"qty" db:"qty"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// UnitPrice is the price of a single base unit.
func (sp *SupplierProduct) UnitPrice() decimal.Decimal {
	if sp.Qty <= 0 {
		return sp.Price
	}
	return sp.Price.Div(decimal.NewFromInt(sp.Qty))
}

// Delivery tracks one supplier report from import to processing. Locked is
// set once the delivery has been turned into ledger transactions.
type Delivery struct {
	ID         int64     `json:"id" db:"id"`
	SupplierID int64     `json:"supplier_id" db:"supplier_id"`
	Report     string    `json:"report" db:"report"`
	Locked     bool      `json:"locked" db:"locked"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DeliveryItem is one line of a populated delivery, already normalized to
// base units.
type DeliveryItem struct {
	ID                int64           `json:"id" db:"id"`
	DeliveryID        int64           `json:"delivery_id" db:"delivery_id"`
	SupplierProductID int64           `json:"supplier_product_id" db:"supplier_product_id"`
	Qty               int64           `json:"qty" db:"qty"`
	Price             decimal.Decimal `json:"price" db:"price"`
}

// Stocktake is one counting round over the whole catalog.
type Stocktake struct {
	ID        int64     `json:"id" db:"id"`
	Locked    bool      `json:"locked" db:"locked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StocktakeChunk is a slice of the catalog assigned to a single counter.
// OwnerID is independent of the lock state: it is set on assignment and
// cleared when the chunk is finalized.
type StocktakeChunk struct {
	ID          int64  `json:"id" db:"id"`
	StocktakeID int64  `json:"stocktake_id" db:"stocktake_id"`
	Locked      bool   `json:"locked" db:"locked"`
	OwnerID     *int64 `json:"owner_id" db:"owner_id"`
}

// StocktakeItem holds the counted quantity for one product in a chunk.
type StocktakeItem struct {
	ID        int64 `json:"id" db:"id"`
	ChunkID   int64 `json:"chunk_id" db:"chunk_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Qty       int64 `json:"qty" db:"qty"`
}

// BaseStockLevel is the per-product reorder threshold used by refill planning.
type BaseStockLevel struct {
	ID        int64 `json:"id" db:"id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Level     int64 `json:"level" db:"level"`
}

// StockOverview summarizes the stock situation for the dashboard.
type StockOverview struct {
	TotalProducts     int        `json:"total_products"`
	OutOfStock        int        `json:"out_of_stock"`
	BelowBaseLevel    int        `json:"below_base_level"`
	ForecastInHorizon int        `json:"forecast_in_horizon"`
	HorizonDays       int        `json:"horizon_days"`
	GeneratedAt       time.Time  `json:"generated_at"`
}
