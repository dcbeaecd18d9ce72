package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"pharmafront/internal/units"
	"pharmafront/internal/upstream"
)

// NewBatchReference builds a client-generated batch reference:
// BR-<date>-<time with milliseconds>-<3 random digits>. The random suffix
// keeps rapid successive entries from colliding; it is a heuristic, not a
// guarantee, since the upstream contract offers no server-issued reference.
func NewBatchReference(now time.Time) string {
	return fmt.Sprintf("BR-%s-%s%03d-%03d",
		now.Format("20060102"),
		now.Format("150405"),
		now.Nanosecond()/1e6,
		rand.IntN(1000))
}

// StockEntryInput is a warehouse stock-entry form submission. Quantity may
// be given directly or as a bulk configuration; when both are present the
// explicit quantity wins and the bulk fields are stored as entered.
type StockEntryInput struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Bulk      units.BulkConfig `json:"bulk"`
	UnitCost  float64          `json:"unit_cost"`
	SRP       *float64         `json:"srp,omitempty"`
	Expiry    *time.Time       `json:"expiration_date,omitempty"`
	EnteredBy string           `json:"entered_by"`
}

// StockEntry submits one batch entry upstream and returns the generated
// batch reference. Nothing is recorded locally; the upstream response is
// the only confirmation.
func (s *Service) StockEntry(ctx context.Context, input StockEntryInput) (string, error) {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = units.ToTotalPieces(input.Bulk)
	}
	if quantity <= 0 {
		return "", errors.New("quantity is required: give a piece count or a complete bulk configuration")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return "", errors.New("product_id is required")
	}
	if input.UnitCost < 0 {
		return "", errors.New("unit_cost cannot be negative")
	}

	reference := NewBatchReference(s.now())
	err := s.api.CreateBatch(ctx, upstream.BatchEntry{
		ProductID:      input.ProductID,
		BatchReference: reference,
		Quantity:       quantity,
		UnitCost:       input.UnitCost,
		SRP:            input.SRP,
		Expiry:         input.Expiry,
		EnteredBy:      input.EnteredBy,
	})
	if err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, productsCacheKey)
	return reference, nil
}

// StockAdjustmentInput corrects a batch's quantity with a reason, proxied
// to the upstream; the local view never changes until the upstream
// confirms.
type StockAdjustmentInput struct {
	ProductID      string `json:"product_id"`
	BatchReference string `json:"batch_reference"`
	NewQuantity    int    `json:"new_quantity"`
	Reason         string `json:"reason"`
	AdjustedBy     string `json:"adjusted_by"`
}

func (s *Service) AdjustStock(ctx context.Context, input StockAdjustmentInput) error {
	if strings.TrimSpace(input.BatchReference) == "" {
		return errors.New("batch_reference is required")
	}
	if input.NewQuantity < 0 {
		return errors.New("new_quantity cannot be negative")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return errors.New("reason is required")
	}
	err := s.api.AdjustStock(ctx, upstream.StockAdjustment{
		ProductID:      input.ProductID,
		BatchReference: input.BatchReference,
		NewQuantity:    input.NewQuantity,
		Reason:         input.Reason,
		AdjustedBy:     input.AdjustedBy,
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productsCacheKey)
	return nil
}

// ImportRowError reports one rejected row of a bulk import.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Submitted int              `json:"submitted"`
	Failed    []ImportRowError `json:"failed,omitempty"`
}

// ImportStockEntries submits a parsed spreadsheet of stock entries row by
// row, collecting per-row failures instead of aborting the upload.
func (s *Service) ImportStockEntries(ctx context.Context, entries []StockEntryInput) (ImportResult, error) {
	if len(entries) == 0 {
		return ImportResult{}, errors.New("import file has no data rows")
	}
	var result ImportResult
	for i, entry := range entries {
		if _, err := s.StockEntry(ctx, entry); err != nil {
			result.Failed = append(result.Failed, ImportRowError{Row: i + 2, Message: err.Error()})
			continue
		}
		result.Submitted++
	}
	return result, nil
}
