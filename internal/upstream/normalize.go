package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pharmafront/internal/domain"
)

// The upstream serializer is loose about scalar types: identifiers and
// quantities may arrive as JSON numbers or strings, booleans as 0/1 or
// "0"/"1". The flex* types absorb that at the boundary so the rest of the
// module only sees canonical Go values.

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(string(b))
	return nil
}

type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	// Quantities occasionally arrive as "5.00".
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", raw, err)
	}
	*n = flexInt(int(f))
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", raw, err)
	}
	*f = flexFloat(v)
	return nil
}

type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.ToLower(strings.TrimSpace(string(b))), `"`)
	switch raw {
	case "1", "true", "yes":
		*v = true
	case "", "0", "false", "no", "null":
		*v = false
	default:
		return fmt.Errorf("parse boolean %q", raw)
	}
	return nil
}

const placeholderDate = "0000-00-00"

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// parseDate turns an upstream date string into a calendar date (midnight
// UTC). The backend's zero-date placeholder '0000-00-00', empty strings and
// nulls all mean "no date", never a real date.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || strings.HasPrefix(raw, placeholderDate) {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// resolveExpiry picks the expiry from the legacy field variants, most
// specific first: the batch-level expiration_date, then the server-computed
// oldest_batch_expiration, then the product-level expiration fallback.
func resolveExpiry(batchLevel, oldestBatch, productLevel string) *time.Time {
	for _, candidate := range []string{batchLevel, oldestBatch, productLevel} {
		if parsed := parseDate(candidate); parsed != nil {
			return parsed
		}
	}
	return nil
}

type wireBatch struct {
	BatchReference    flexString `json:"batch_reference"`
	ProductID         flexString `json:"product_id"`
	AvailableQuantity flexInt    `json:"available_quantity"`
	UnitCost          flexFloat  `json:"unit_cost"`
	SRP               *flexFloat `json:"srp"`
	ExpirationDate    string     `json:"expiration_date"`
	Expiration        string     `json:"expiration"`
	EntryDate         string     `json:"entry_date"`
	EntryTime         string     `json:"entry_time"`
	EntryBy           flexString `json:"entry_by"`
}

func (w wireBatch) toDomain() domain.Batch {
	batch := domain.Batch{
		Reference:         string(w.BatchReference),
		ProductID:         string(w.ProductID),
		AvailableQuantity: int(w.AvailableQuantity),
		UnitCost:          float64(w.UnitCost),
		Expiry:            resolveExpiry(w.ExpirationDate, "", w.Expiration),
		EnteredAt:         parseEntryTimestamp(w.EntryDate, w.EntryTime),
		EnteredBy:         string(w.EntryBy),
	}
	if w.SRP != nil {
		srp := float64(*w.SRP)
		batch.SRP = &srp
	}
	return batch
}

func parseEntryTimestamp(entryDate, entryTime string) time.Time {
	entryDate = strings.TrimSpace(entryDate)
	entryTime = strings.TrimSpace(entryTime)
	if entryDate != "" && entryTime != "" {
		if parsed, err := time.Parse("2006-01-02 15:04:05", entryDate+" "+entryTime); err == nil {
			return parsed.UTC()
		}
	}
	if parsed := parseDate(entryDate); parsed != nil {
		return *parsed
	}
	return time.Time{}
}

type wireProduct struct {
	ProductID             flexString `json:"product_id"`
	Name                  string     `json:"name"`
	Category              string     `json:"category"`
	Barcode               flexString `json:"barcode"`
	Brand                 string     `json:"brand"`
	SRP                   flexFloat  `json:"srp"`
	ProductType           string     `json:"product_type"`
	RequiresPrescription  flexBool   `json:"requires_prescription"`
	Bulk                  flexBool   `json:"bulk"`
	Archived              flexBool   `json:"archived"`
	Quantity              flexInt    `json:"quantity"`
	ExpirationDate        string     `json:"expiration_date"`
	OldestBatchExpiration string     `json:"oldest_batch_expiration"`
	Expiration            string     `json:"expiration"`
	OldestBatchQuantity   flexInt    `json:"oldest_batch_quantity"`
}

func (w wireProduct) toDomain() domain.Product {
	productType := domain.ProductType(strings.TrimSpace(w.ProductType))
	if productType == "" {
		productType = domain.ProductTypeNonMedicine
	}
	return domain.Product{
		ID:                   string(w.ProductID),
		Name:                 w.Name,
		Category:             w.Category,
		Barcode:              string(w.Barcode),
		Brand:                w.Brand,
		SRP:                  float64(w.SRP),
		ProductType:          productType,
		RequiresPrescription: bool(w.RequiresPrescription),
		Bulk:                 bool(w.Bulk),
		Archived:             bool(w.Archived),
		TotalQuantity:        int(w.Quantity),
	}
}

type wireSupplier struct {
	SupplierID flexString `json:"supplier_id"`
	Name       string     `json:"name"`
	Contact    flexString `json:"contact"`
	Address    string     `json:"address"`
	Archived   flexBool   `json:"archived"`
}

func (w wireSupplier) toDomain() domain.Supplier {
	return domain.Supplier{
		ID:       string(w.SupplierID),
		Name:     w.Name,
		Contact:  string(w.Contact),
		Address:  w.Address,
		Archived: bool(w.Archived),
	}
}
