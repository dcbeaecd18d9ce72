package upstream

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // "" means nil
	}{
		{"plain date", "2025-06-01", "2025-06-01"},
		{"datetime", "2025-06-01 13:45:00", "2025-06-01"},
		{"zero placeholder", "0000-00-00", ""},
		{"zero placeholder datetime", "0000-00-00 00:00:00", ""},
		{"empty", "", ""},
		{"null literal", "null", ""},
		{"garbage", "soon", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.raw)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("parseDate(%q) = %v, want nil", tt.raw, got)
				}
				return
			}
			if got == nil || got.Format("2006-01-02") != tt.want {
				t.Fatalf("parseDate(%q) = %v, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveExpiryPriority(t *testing.T) {
	t.Run("batch level wins", func(t *testing.T) {
		got := resolveExpiry("2025-03-01", "2025-04-01", "2025-05-01")
		if got == nil || got.Format("2006-01-02") != "2025-03-01" {
			t.Fatalf("got %v, want batch-level date", got)
		}
	})

	t.Run("placeholder skipped in favor of fallback", func(t *testing.T) {
		got := resolveExpiry("0000-00-00", "", "2025-06-01")
		if got == nil || got.Format("2006-01-02") != "2025-06-01" {
			t.Fatalf("got %v, want product-level fallback", got)
		}
	})

	t.Run("server precomputed before product level", func(t *testing.T) {
		got := resolveExpiry("", "2025-04-01", "2025-05-01")
		if got == nil || got.Format("2006-01-02") != "2025-04-01" {
			t.Fatalf("got %v, want oldest-batch date", got)
		}
	})

	t.Run("all absent", func(t *testing.T) {
		if got := resolveExpiry("0000-00-00", "", ""); got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	})
}

func TestWireBatchLooseScalars(t *testing.T) {
	raw := `{
		"batch_reference": "BR-1",
		"product_id": 42,
		"available_quantity": "15.00",
		"unit_cost": "1.25",
		"expiration_date": "0000-00-00",
		"expiration": "2025-06-01",
		"entry_date": "2025-01-03",
		"entry_time": "14:30:00",
		"entry_by": 9
	}`
	var wire wireBatch
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	batch := wire.toDomain()
	if batch.ProductID != "42" {
		t.Fatalf("product id = %q", batch.ProductID)
	}
	if batch.AvailableQuantity != 15 {
		t.Fatalf("quantity = %d", batch.AvailableQuantity)
	}
	if batch.Expiry == nil || batch.Expiry.Format("2006-01-02") != "2025-06-01" {
		t.Fatalf("expiry = %v, want placeholder skipped", batch.Expiry)
	}
	want := time.Date(2025, 1, 3, 14, 30, 0, 0, time.UTC)
	if !batch.EnteredAt.Equal(want) {
		t.Fatalf("entered at = %v, want %v", batch.EnteredAt, want)
	}
	if batch.EnteredBy != "9" {
		t.Fatalf("entered by = %q", batch.EnteredBy)
	}
}

func TestWireProductBooleanVariants(t *testing.T) {
	raw := `{
		"product_id": "p1",
		"name": "Paracetamol",
		"product_type": "Medicine",
		"requires_prescription": "1",
		"bulk": 0,
		"archived": false,
		"quantity": 30,
		"srp": "12.50"
	}`
	var wire wireProduct
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	product := wire.toDomain()
	if !product.RequiresPrescription {
		t.Fatal("requires_prescription \"1\" must parse true")
	}
	if product.Bulk || product.Archived {
		t.Fatalf("bulk/archived = %v/%v, want false", product.Bulk, product.Archived)
	}
	if product.SRP != 12.5 {
		t.Fatalf("srp = %v", product.SRP)
	}
}

func TestWireProductDefaultsType(t *testing.T) {
	var wire wireProduct
	if err := json.Unmarshal([]byte(`{"product_id": "p1", "name": "X"}`), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := wire.toDomain().ProductType; got != "Non-Medicine" {
		t.Fatalf("product type = %q, want Non-Medicine default", got)
	}
}
