// Package fifo derives the oldest-first consumption view of a product's
// batches and classifies stock and expiry state against configured
// thresholds. Everything here is a pure function over already-fetched data;
// the upstream API remains the system of record.
package fifo

import (
	"sort"

	"pharmafront/internal/domain"
)

// Reconciliation is the FIFO view of one product's batches.
type Reconciliation struct {
	// Ordered holds all batches, exhausted ones included, sorted by
	// expiry ascending with nil expiries last, entry time as tiebreak.
	Ordered []domain.Batch `json:"ordered_batches"`
	// Current is the next batch to deplete: the first ordered batch with
	// available quantity, or nil when everything is exhausted.
	Current *domain.Batch `json:"current_batch,omitempty"`
	// TotalAvailable sums available quantity over all batches.
	TotalAvailable int `json:"total_available"`
}

// Reconcile orders batches for FIFO consumption. Exhausted batches keep
// their place in the ordered history; they are only skipped when picking the
// current batch.
func Reconcile(batches []domain.Batch) Reconciliation {
	ordered := make([]domain.Batch, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return batchBefore(ordered[i], ordered[j])
	})

	rec := Reconciliation{Ordered: ordered}
	for i := range ordered {
		rec.TotalAvailable += ordered[i].AvailableQuantity
		if rec.Current == nil && ordered[i].AvailableQuantity > 0 {
			rec.Current = &ordered[i]
		}
	}
	return rec
}

// batchBefore is the FIFO order: earlier expiry first, nil expiry last,
// earlier entry as tiebreak.
func batchBefore(a, b domain.Batch) bool {
	switch {
	case a.Expiry == nil && b.Expiry == nil:
		return a.EnteredAt.Before(b.EnteredAt)
	case a.Expiry == nil:
		return false
	case b.Expiry == nil:
		return true
	case a.Expiry.Equal(*b.Expiry):
		return a.EnteredAt.Before(b.EnteredAt)
	default:
		return a.Expiry.Before(*b.Expiry)
	}
}

// StockStatusFor classifies a total quantity. Zero is always out of stock,
// checked before the threshold comparison so a threshold of zero cannot
// reclassify an empty product.
func StockStatusFor(totalAvailable, lowStockThreshold int) domain.StockStatus {
	if totalAvailable <= 0 {
		return domain.StockStatusOutOfStock
	}
	if totalAvailable <= lowStockThreshold {
		return domain.StockStatusLowStock
	}
	return domain.StockStatusInStock
}
