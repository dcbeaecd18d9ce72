// Package notify recomputes the warehouse notification snapshot on a fixed
// interval and raises alerts only for newly-crossed thresholds, so items
// that stay below a threshold across polls are not re-announced every tick.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"pharmafront/internal/domain"
	"pharmafront/internal/fifo"
)

// Item is one product reference inside a snapshot category. For the expiry
// categories it also names the triggering batch.
type Item struct {
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Quantity       int        `json:"quantity"`
	BatchReference string     `json:"batch_reference,omitempty"`
	Expiry         *time.Time `json:"expiry,omitempty"`
	DaysToExpiry   int        `json:"days_to_expiry,omitempty"`
}

// Snapshot is the full notification state at one poll tick. The four lists
// are disjoint by category; a batch lands in Expiring or Expired, never
// both.
type Snapshot struct {
	TakenAt    time.Time `json:"taken_at"`
	Expiring   []Item    `json:"expiring"`
	Expired    []Item    `json:"expired"`
	LowStock   []Item    `json:"low_stock"`
	OutOfStock []Item    `json:"out_of_stock"`
}

func (s Snapshot) count(category domain.AlertCategory) int {
	switch category {
	case domain.AlertExpiring:
		return len(s.Expiring)
	case domain.AlertExpired:
		return len(s.Expired)
	case domain.AlertLowStock:
		return len(s.LowStock)
	case domain.AlertOutOfStock:
		return len(s.OutOfStock)
	}
	return 0
}

// Thresholds are the externally supplied classification settings, read-only
// here.
type Thresholds struct {
	LowStockThreshold int
	ExpiryWarningDays int
}

// BuildSnapshot derives a fresh snapshot from the current product and batch
// data. Archived products are skipped. The derivation is stateless; diffing
// against the previous snapshot happens in the aggregator.
func BuildSnapshot(products []domain.Product, batchesByProduct map[string][]domain.Batch, th Thresholds, today time.Time) Snapshot {
	snap := Snapshot{TakenAt: today}
	for _, product := range products {
		if product.Archived {
			continue
		}
		batches := batchesByProduct[product.ID]
		rec := fifo.Reconcile(batches)

		total := rec.TotalAvailable
		if len(batches) == 0 {
			// No batch data for this product; fall back to the
			// quantity the product row itself reported.
			total = product.TotalQuantity
		}

		switch fifo.StockStatusFor(total, th.LowStockThreshold) {
		case domain.StockStatusOutOfStock:
			snap.OutOfStock = append(snap.OutOfStock, Item{
				ProductID: product.ID, ProductName: product.Name, Quantity: total,
			})
		case domain.StockStatusLowStock:
			snap.LowStock = append(snap.LowStock, Item{
				ProductID: product.ID, ProductName: product.Name, Quantity: total,
			})
		}

		expiry := fifo.ClassifyExpiry(batches, today, th.ExpiryWarningDays)
		if expiry.Batch == nil {
			continue
		}
		item := Item{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       expiry.Batch.AvailableQuantity,
			BatchReference: expiry.Batch.Reference,
			Expiry:         expiry.Expiry,
			DaysToExpiry:   expiry.DaysToExpiry,
		}
		switch expiry.State {
		case domain.ExpiryStateExpired:
			snap.Expired = append(snap.Expired, item)
		case domain.ExpiryStateExpiringSoon:
			snap.Expiring = append(snap.Expiring, item)
		}
	}
	return snap
}

// Gates switch alert emission per concern. Classification still runs and
// the snapshot still carries the data when a gate is off; only the alert is
// suppressed.
type Gates struct {
	ExpiryAlerts   bool
	LowStockAlerts bool
}

var alertMessages = map[domain.AlertCategory]string{
	domain.AlertLowStock:   "%d product(s) now have low stock",
	domain.AlertOutOfStock: "%d product(s) are now out of stock",
	domain.AlertExpiring:   "%d product(s) have batches expiring soon",
	domain.AlertExpired:    "%d product(s) have newly expired batches",
}

// Diff compares two consecutive snapshots and returns one alert per
// category whose count strictly increased. The message reports the delta,
// not the new total.
func Diff(prev, next Snapshot, gates Gates) []domain.Alert {
	categories := []struct {
		category domain.AlertCategory
		enabled  bool
	}{
		{domain.AlertOutOfStock, gates.LowStockAlerts},
		{domain.AlertLowStock, gates.LowStockAlerts},
		{domain.AlertExpired, gates.ExpiryAlerts},
		{domain.AlertExpiring, gates.ExpiryAlerts},
	}

	var alerts []domain.Alert
	for _, c := range categories {
		if !c.enabled {
			continue
		}
		delta := next.count(c.category) - prev.count(c.category)
		if delta <= 0 {
			continue
		}
		alerts = append(alerts, domain.Alert{
			ID:        uuid.New().String(),
			Category:  c.category,
			Delta:     delta,
			Message:   fmt.Sprintf(alertMessages[c.category], delta),
			CreatedAt: next.TakenAt,
		})
	}
	return alerts
}
