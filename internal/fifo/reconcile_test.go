package fifo

import (
	"testing"
	"time"

	"pharmafront/internal/domain"
)

func date(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func TestReconcileOrdersOldestFirst(t *testing.T) {
	batchA := domain.Batch{Reference: "A", Expiry: date("2025-01-10"), AvailableQuantity: 5}
	batchB := domain.Batch{Reference: "B", Expiry: date("2025-02-01"), AvailableQuantity: 10}

	rec := Reconcile([]domain.Batch{batchB, batchA})

	if got := []string{rec.Ordered[0].Reference, rec.Ordered[1].Reference}; got[0] != "A" || got[1] != "B" {
		t.Fatalf("order = %v, want [A B]", got)
	}
	if rec.Current == nil || rec.Current.Reference != "A" {
		t.Fatalf("current = %+v, want batch A", rec.Current)
	}
	if rec.TotalAvailable != 15 {
		t.Fatalf("total = %d, want 15", rec.TotalAvailable)
	}
}

func TestReconcileSkipsExhaustedBatch(t *testing.T) {
	batchA := domain.Batch{Reference: "A", Expiry: date("2025-01-10"), AvailableQuantity: 0}
	batchB := domain.Batch{Reference: "B", Expiry: date("2025-02-01"), AvailableQuantity: 10}

	rec := Reconcile([]domain.Batch{batchA, batchB})

	if rec.Current == nil || rec.Current.Reference != "B" {
		t.Fatalf("current = %+v, want batch B", rec.Current)
	}
	// Exhausted batches stay in the ordered history.
	if len(rec.Ordered) != 2 || rec.Ordered[0].Reference != "A" {
		t.Fatalf("ordered = %+v, want A first", rec.Ordered)
	}
	if rec.TotalAvailable != 10 {
		t.Fatalf("total = %d, want 10", rec.TotalAvailable)
	}
}

func TestReconcileNilExpiryLast(t *testing.T) {
	noExpiry := domain.Batch{Reference: "N", AvailableQuantity: 3}
	dated := domain.Batch{Reference: "D", Expiry: date("2030-12-31"), AvailableQuantity: 2}

	rec := Reconcile([]domain.Batch{noExpiry, dated})

	if rec.Ordered[0].Reference != "D" || rec.Ordered[1].Reference != "N" {
		t.Fatalf("ordered = [%s %s], want [D N]", rec.Ordered[0].Reference, rec.Ordered[1].Reference)
	}
	if rec.Current.Reference != "D" {
		t.Fatalf("current = %s, want D", rec.Current.Reference)
	}
}

func TestReconcileEntryDateTiebreak(t *testing.T) {
	early := domain.Batch{Reference: "early", Expiry: date("2025-06-01"), AvailableQuantity: 1,
		EnteredAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	late := domain.Batch{Reference: "late", Expiry: date("2025-06-01"), AvailableQuantity: 1,
		EnteredAt: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}

	rec := Reconcile([]domain.Batch{late, early})

	if rec.Ordered[0].Reference != "early" {
		t.Fatalf("ordered first = %s, want early", rec.Ordered[0].Reference)
	}
}

func TestReconcileTotalMatchesSum(t *testing.T) {
	batches := []domain.Batch{
		{Reference: "1", AvailableQuantity: 4},
		{Reference: "2", AvailableQuantity: 0, Expiry: date("2024-01-01")},
		{Reference: "3", AvailableQuantity: 7, Expiry: date("2026-01-01")},
	}
	sum := 0
	for _, b := range batches {
		sum += b.AvailableQuantity
	}
	if rec := Reconcile(batches); rec.TotalAvailable != sum {
		t.Fatalf("total = %d, want %d", rec.TotalAvailable, sum)
	}
}

func TestReconcileEmpty(t *testing.T) {
	rec := Reconcile(nil)
	if rec.Current != nil || rec.TotalAvailable != 0 || len(rec.Ordered) != 0 {
		t.Fatalf("unexpected reconciliation for empty input: %+v", rec)
	}
}

func TestStockStatusFor(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      domain.StockStatus
	}{
		{"zero is out of stock", 0, 10, domain.StockStatusOutOfStock},
		{"zero with zero threshold", 0, 0, domain.StockStatusOutOfStock},
		{"at threshold is low", 10, 10, domain.StockStatusLowStock},
		{"below threshold is low", 3, 10, domain.StockStatusLowStock},
		{"above threshold is in stock", 11, 10, domain.StockStatusInStock},
		{"one with zero threshold", 1, 0, domain.StockStatusInStock},
		{"negative is out of stock", -1, 10, domain.StockStatusOutOfStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockStatusFor(tt.quantity, tt.threshold); got != tt.want {
				t.Errorf("StockStatusFor(%d, %d) = %s, want %s", tt.quantity, tt.threshold, got, tt.want)
			}
		})
	}
}
