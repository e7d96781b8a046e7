package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRoundAmountHalfUp(t *testing.T) {
	if got := RoundAmount(dec("10.005")); !got.Equal(dec("10.01")) {
		t.Errorf("RoundAmount(10.005) = %s, want 10.01", got)
	}
	if got := RoundAmount(dec("10.004")); !got.Equal(dec("10.00")) {
		t.Errorf("RoundAmount(10.004) = %s, want 10.00", got)
	}
}

func TestRoundUnitPrice(t *testing.T) {
	if got := RoundUnitPrice(dec("0.12345675")); !got.Equal(dec("0.123457")) {
		t.Errorf("RoundUnitPrice = %s, want 0.123457", got)
	}
}

func TestWithinPriceTolerance(t *testing.T) {
	if !WithinPriceTolerance(dec("100"), dec("100.9")) {
		t.Error("100.9 should be within 1% of 100")
	}
	if WithinPriceTolerance(dec("100"), dec("101.1")) {
		t.Error("101.1 should be outside 1% of 100")
	}
	// Gross mismatch, the reconciliation case: computed 150 vs provided 1000.
	if WithinPriceTolerance(dec("150"), dec("1000")) {
		t.Error("1000 should be outside 1% of 150")
	}
	if !WithinPriceTolerance(decimal.Zero, decimal.Zero) {
		t.Error("zero should match zero")
	}
	if WithinPriceTolerance(decimal.Zero, dec("0.01")) {
		t.Error("zero reference should not match non-zero price")
	}
}

func TestSafeDivZeroDivisor(t *testing.T) {
	if got := SafeDiv(dec("5"), decimal.Zero); !got.IsZero() {
		t.Errorf("SafeDiv by zero = %s, want 0", got)
	}
	if got := SafeDiv(dec("6"), dec("2")); !got.Equal(dec("3")) {
		t.Errorf("SafeDiv(6,2) = %s, want 3", got)
	}
}

func TestSafePercent(t *testing.T) {
	if got := SafePercent(dec("25"), dec("200")); !got.Equal(dec("12.5")) {
		t.Errorf("SafePercent(25,200) = %s, want 12.5", got)
	}
	if got := SafePercent(dec("25"), decimal.Zero); !got.IsZero() {
		t.Errorf("SafePercent with zero whole = %s, want 0", got)
	}
}
