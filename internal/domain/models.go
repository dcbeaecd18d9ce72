package domain

import "time"

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

type ExpiryState string

const (
	ExpiryStateOK           ExpiryState = "ok"
	ExpiryStateExpiringSoon ExpiryState = "expiring_soon"
	ExpiryStateExpired      ExpiryState = "expired"
)

type ProductType string

const (
	ProductTypeMedicine    ProductType = "Medicine"
	ProductTypeNonMedicine ProductType = "Non-Medicine"
)

type Product struct {
	ID                   string      `json:"product_id"`
	Name                 string      `json:"name"`
	Category             string      `json:"category,omitempty"`
	Barcode              string      `json:"barcode,omitempty"`
	Brand                string      `json:"brand,omitempty"`
	SRP                  float64     `json:"srp"`
	ProductType          ProductType `json:"product_type"`
	RequiresPrescription bool        `json:"requires_prescription"`
	Bulk                 bool        `json:"bulk"`
	Archived             bool        `json:"archived"`
	TotalQuantity        int         `json:"total_quantity"`
}

// Batch is one received stock lot of a product. Quantities only decrease
// through consumption confirmed by the upstream API; nothing in this module
// decrements a batch locally.
type Batch struct {
	Reference         string     `json:"batch_reference"`
	ProductID         string     `json:"product_id"`
	AvailableQuantity int        `json:"available_quantity"`
	UnitCost          float64    `json:"unit_cost"`
	SRP               *float64   `json:"srp,omitempty"`
	Expiry            *time.Time `json:"expiration_date,omitempty"`
	EnteredAt         time.Time  `json:"entered_at"`
	EnteredBy         string     `json:"entered_by,omitempty"`
}

// ProductOverview is the warehouse listing row: the product plus the derived
// fields the screens show (status, oldest batch expiry). OldestExpiry is nil
// when no batch carries a usable expiration date. ExpiryDegraded marks rows
// whose per-product batch lookup failed during the fallback path.
type ProductOverview struct {
	Product
	StockStatus    StockStatus `json:"stock_status"`
	ExpiryState    ExpiryState `json:"expiry_state"`
	OldestExpiry   *time.Time  `json:"oldest_expiry,omitempty"`
	DaysToExpiry   *int        `json:"days_to_expiry,omitempty"`
	ExpiryDegraded bool        `json:"expiry_degraded,omitempty"`
}

type Supplier struct {
	ID       string `json:"supplier_id"`
	Name     string `json:"name"`
	Contact  string `json:"contact,omitempty"`
	Address  string `json:"address,omitempty"`
	Archived bool   `json:"archived"`
}

type AlertCategory string

const (
	AlertLowStock   AlertCategory = "low_stock"
	AlertOutOfStock AlertCategory = "out_of_stock"
	AlertExpiring   AlertCategory = "expiring"
	AlertExpired    AlertCategory = "expired"
)

// Alert is one emitted notification. Delta is the number of products that
// newly crossed the category threshold since the previous poll, not the
// category total.
type Alert struct {
	ID        string        `json:"id" db:"id"`
	Category  AlertCategory `json:"category" db:"category"`
	Delta     int           `json:"delta" db:"delta"`
	Message   string        `json:"message" db:"message"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	Read      bool          `json:"read" db:"read"`
}
