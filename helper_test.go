package flagship

import (
	"testing"
	"time"
)

// t0 is a fixed clock for tests.
var t0 = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

// USD is a helper for tests to create money from a const.
func USD[T float64 | int](v T) Money { return M(v) }

// assertMoney fails the test if got is not exactly want.
func assertMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %v (%s), want %v (%s)", name, got, got.Decimal(), want, want.Decimal())
	}
}

// mustApply applies cmds or fails the test.
func mustApply(t *testing.T, st State, cmds ...Command) State {
	t.Helper()
	next, err := Apply(st, cmds...)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	return next
}

// newIPhone returns a command adding an iPhone with a fixed id.
func newIPhone(id string, price float64) AddDevice {
	return AddDevice{
		ID:            id,
		Brand:         IPhone,
		Model:         "15 Pro",
		Storage:       Storage256GB,
		IMEI:          "35" + id,
		PurchasePrice: M(price),
		PurchasedFrom: "Chorsu market",
		At:            t0,
	}
}
