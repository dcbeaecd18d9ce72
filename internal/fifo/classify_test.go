package fifo

import (
	"testing"
	"time"

	"pharmafront/internal/domain"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		date  time.Time
		want  int
	}{
		{
			name:  "tomorrow is one day even late at night",
			today: time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC),
			date:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			want:  1,
		},
		{
			name:  "same day is zero",
			today: time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC),
			date:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			want:  0,
		},
		{
			name:  "yesterday is minus one",
			today: time.Date(2025, 1, 5, 0, 30, 0, 0, time.UTC),
			date:  time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
			want:  -1,
		},
		{
			name:  "five days out",
			today: time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
			date:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			want:  5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.today, tt.date); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassifyExpiry(t *testing.T) {
	today := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("expiring soon picks earliest batch only", func(t *testing.T) {
		batchA := domain.Batch{Reference: "A", Expiry: date("2025-01-10"), AvailableQuantity: 5}
		batchB := domain.Batch{Reference: "B", Expiry: date("2025-02-01"), AvailableQuantity: 10}

		info := ClassifyExpiry([]domain.Batch{batchB, batchA}, today, 7)

		if info.State != domain.ExpiryStateExpiringSoon {
			t.Fatalf("state = %s, want expiring_soon", info.State)
		}
		if info.DaysToExpiry != 5 {
			t.Fatalf("days = %d, want 5", info.DaysToExpiry)
		}
		if info.Batch == nil || info.Batch.Reference != "A" {
			t.Fatalf("batch = %+v, want A", info.Batch)
		}
	})

	t.Run("expired with overdue days", func(t *testing.T) {
		expired := domain.Batch{Reference: "old", Expiry: date("2025-01-01"), AvailableQuantity: 2}

		info := ClassifyExpiry([]domain.Batch{expired}, today, 7)

		if info.State != domain.ExpiryStateExpired {
			t.Fatalf("state = %s, want expired", info.State)
		}
		if info.DaysOverdue != 4 {
			t.Fatalf("overdue = %d, want 4", info.DaysOverdue)
		}
	})

	t.Run("beyond warning window is ok", func(t *testing.T) {
		far := domain.Batch{Reference: "far", Expiry: date("2025-06-01"), AvailableQuantity: 2}
		if info := ClassifyExpiry([]domain.Batch{far}, today, 7); info.State != domain.ExpiryStateOK {
			t.Fatalf("state = %s, want ok", info.State)
		}
	})

	t.Run("no batches is ok not an error", func(t *testing.T) {
		info := ClassifyExpiry(nil, today, 7)
		if info.State != domain.ExpiryStateOK || info.Expiry != nil || info.Batch != nil {
			t.Fatalf("info = %+v, want bare ok", info)
		}
	})

	t.Run("all nil expiries is ok", func(t *testing.T) {
		info := ClassifyExpiry([]domain.Batch{{Reference: "N", AvailableQuantity: 3}}, today, 7)
		if info.State != domain.ExpiryStateOK || info.Expiry != nil {
			t.Fatalf("info = %+v, want bare ok", info)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		batches := []domain.Batch{{Reference: "A", Expiry: date("2025-01-10"), AvailableQuantity: 5}}
		first := ClassifyExpiry(batches, today, 7)
		second := ClassifyExpiry(batches, today, 7)
		if first.State != second.State || first.DaysToExpiry != second.DaysToExpiry {
			t.Fatalf("classification not idempotent: %+v vs %+v", first, second)
		}
	})
}

func TestClassifyExpiryDate(t *testing.T) {
	today := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	state, days := ClassifyExpiryDate(nil, today, 7)
	if state != domain.ExpiryStateOK || days != nil {
		t.Fatalf("nil expiry: state=%s days=%v, want ok/nil", state, days)
	}

	state, days = ClassifyExpiryDate(date("2025-01-03"), today, 7)
	if state != domain.ExpiryStateExpired || days == nil || *days != -2 {
		t.Fatalf("expired: state=%s days=%v", state, days)
	}

	state, days = ClassifyExpiryDate(date("2025-01-12"), today, 7)
	if state != domain.ExpiryStateExpiringSoon || *days != 7 {
		t.Fatalf("boundary: state=%s days=%v, want expiring_soon/7", state, days)
	}

	state, days = ClassifyExpiryDate(date("2025-01-13"), today, 7)
	if state != domain.ExpiryStateOK || *days != 8 {
		t.Fatalf("just beyond window: state=%s days=%v, want ok/8", state, days)
	}
}
