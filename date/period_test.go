package date

import (
	"testing"
	"time"
)

func TestNewRange(t *testing.T) {
	d := New(2024, time.February, 10)
	testCases := []struct {
		period   Period
		from, to string
		label    string
	}{
		{Daily, "2024-02-10", "2024-02-10", "10"},
		{Monthly, "2024-02-01", "2024-02-29", "Feb"},
		{Yearly, "2024-01-01", "2024-12-31", "2024"},
	}
	for _, tc := range testCases {
		got := NewRange(d, tc.period)
		if got.From.String() != tc.from || got.To.String() != tc.to {
			t.Errorf("NewRange(%v, %d) = %v..%v, want %s..%s", d, tc.period, got.From, got.To, tc.from, tc.to)
		}
		if l := tc.period.Label(got.From); l != tc.label {
			t.Errorf("Label(%v) = %q, want %q", got.From, l, tc.label)
		}
	}
}

func TestRangeContainsAndDays(t *testing.T) {
	r := NewRange(New(2024, time.February, 10), Monthly)
	if !r.Contains(New(2024, time.February, 29)) {
		t.Error("February 2024 should contain the 29th")
	}
	if r.Contains(New(2024, time.March, 1)) {
		t.Error("February 2024 should not contain March 1st")
	}
	n := 0
	for range r.Days() {
		n++
	}
	if n != 29 {
		t.Errorf("Days() yielded %d days, want 29", n)
	}
}

func TestSplit(t *testing.T) {
	year := NewRange(New(2025, time.June, 1), Yearly)
	months := year.Split(Monthly)
	if len(months) != 12 {
		t.Fatalf("Split(Monthly) = %d ranges, want 12", len(months))
	}
	if got := months[1]; got.From != New(2025, time.February, 1) || got.To != New(2025, time.February, 28) {
		t.Errorf("February = %v..%v", got.From, got.To)
	}

	days := NewRange(New(2025, time.March, 14), Monthly).Split(Daily)
	if len(days) != 31 || days[30].From != New(2025, time.March, 31) {
		t.Errorf("Split(Daily) of March = %d ranges", len(days))
	}

	clipped := Range{From: New(2025, time.January, 20), To: New(2025, time.March, 5)}.Split(Monthly)
	if len(clipped) != 3 || clipped[0].From != New(2025, time.January, 20) || clipped[2].To != New(2025, time.March, 5) {
		t.Errorf("clipped Split = %v", clipped)
	}
}
