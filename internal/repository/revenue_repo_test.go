package repository

import (
	"testing"
	"time"
)

func TestTruncatePeriod(t *testing.T) {
	// Thursday 2025-08-14 18:30 in IST is 13:00 UTC the same day
	ist := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2025, 8, 14, 18, 30, 0, 0, ist)

	tests := []struct {
		groupBy string
		want    string
	}{
		{PeriodWeek, "2025-08-11"},
		{PeriodMonth, "2025-08-01"},
		{PeriodQuarter, "2025-07-01"},
		{PeriodYear, "2025-01-01"},
		{"", "2025-08-01"},
	}
	for _, tt := range tests {
		if got := TruncatePeriod(at, tt.groupBy).Format(PeriodLayout); got != tt.want {
			t.Errorf("TruncatePeriod(%q): got %s, want %s", tt.groupBy, got, tt.want)
		}
	}

	// Sunday rolls back to the Monday before it
	sunday := time.Date(2025, 8, 17, 10, 0, 0, 0, time.UTC)
	if got := TruncatePeriod(sunday, PeriodWeek).Format(PeriodLayout); got != "2025-08-11" {
		t.Errorf("sunday week: got %s", got)
	}
}
