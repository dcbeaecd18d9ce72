package fifo

import (
	"time"

	"pharmafront/internal/domain"
)

// ExpiryInfo is the expiry classification of a product's earliest-expiring
// batch. Batch is nil when no batch carries a usable expiration date, in
// which case the state is OK and the screens show "N/A".
type ExpiryInfo struct {
	State        domain.ExpiryState `json:"state"`
	Expiry       *time.Time         `json:"expiry,omitempty"`
	DaysToExpiry int                `json:"days_to_expiry"`
	DaysOverdue  int                `json:"days_overdue,omitempty"`
	Batch        *domain.Batch      `json:"batch,omitempty"`
}

// DaysBetween counts calendar days from today to the given date, ignoring
// time-of-day on both sides. A batch expiring tomorrow always reads as 1,
// never 0, regardless of clock time.
func DaysBetween(today, date time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t) / (24 * time.Hour))
}

// ClassifyExpiry finds the earliest non-nil expiry among the batches and
// buckets it: expired (past), expiring soon (within warningDays), otherwise
// OK. Classification always runs; alert gating happens in the notifier.
func ClassifyExpiry(batches []domain.Batch, today time.Time, warningDays int) ExpiryInfo {
	var earliest *domain.Batch
	for i := range batches {
		if batches[i].Expiry == nil {
			continue
		}
		if earliest == nil || batches[i].Expiry.Before(*earliest.Expiry) {
			earliest = &batches[i]
		}
	}
	if earliest == nil {
		return ExpiryInfo{State: domain.ExpiryStateOK}
	}

	days := DaysBetween(today, *earliest.Expiry)
	info := ExpiryInfo{
		Expiry:       earliest.Expiry,
		DaysToExpiry: days,
		Batch:        earliest,
	}
	switch {
	case days < 0:
		info.State = domain.ExpiryStateExpired
		info.DaysOverdue = -days
	case days <= warningDays:
		info.State = domain.ExpiryStateExpiringSoon
	default:
		info.State = domain.ExpiryStateOK
	}
	return info
}

// ClassifyExpiryDate classifies a single already-resolved expiry date, used
// for listing rows where only the oldest-batch expiry is known.
func ClassifyExpiryDate(expiry *time.Time, today time.Time, warningDays int) (domain.ExpiryState, *int) {
	if expiry == nil {
		return domain.ExpiryStateOK, nil
	}
	days := DaysBetween(today, *expiry)
	switch {
	case days < 0:
		return domain.ExpiryStateExpired, &days
	case days <= warningDays:
		return domain.ExpiryStateExpiringSoon, &days
	default:
		return domain.ExpiryStateOK, &days
	}
}
