package model

import "testing"

func TestMoneyAdd(t *testing.T) {
	a := NewMoney(3000, "EUR")
	b := NewMoney(1500, "EUR")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Amount != 4500 || sum.Currency != "EUR" {
		t.Errorf("expected 4500 EUR, got %v", sum)
	}
}

func TestMoneyAdd_CurrencyMismatch(t *testing.T) {
	a := NewMoney(3000, "EUR")
	b := NewMoney(1500, "USD")

	if _, err := a.Add(b); err == nil {
		t.Error("expected currency mismatch error")
	}
	if _, err := a.Sub(b); err == nil {
		t.Error("expected currency mismatch error")
	}
	if _, err := a.LessThan(b); err == nil {
		t.Error("expected currency mismatch error")
	}
}

func TestMoneySub(t *testing.T) {
	a := NewMoney(3000, "EUR")
	b := NewMoney(4500, "EUR")

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff.Amount != -1500 {
		t.Errorf("expected -1500, got %d", diff.Amount)
	}
	if !diff.IsNegative() {
		t.Error("expected negative result")
	}
}

func TestMoneyNeg(t *testing.T) {
	m := NewMoney(2000, "EUR").Neg()
	if m.Amount != -2000 || m.Currency != "EUR" {
		t.Errorf("expected -2000 EUR, got %v", m)
	}
	if !NewMoney(0, "EUR").IsZero() {
		t.Error("expected zero amount to be zero")
	}
}

func TestMoneyLessThan(t *testing.T) {
	a := NewMoney(100, "EUR")
	b := NewMoney(200, "EUR")

	less, err := a.LessThan(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !less {
		t.Error("expected 100 < 200")
	}

	less, err = b.LessThan(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if less {
		t.Error("expected 200 not < 100")
	}
}
