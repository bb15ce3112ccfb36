package emi_test

import (
	"testing"

	"github.com/fintechfusion/loan-officer/internal/service/emi"
)

func TestCalculateMatchesClosedForm(t *testing.T) {
	got, err := emi.Calculate(300000, 14.0, 36)
	if err != nil {
		t.Fatalf("Calculate err: %v", err)
	}
	if got != 10253 {
		t.Fatalf("unexpected EMI: got %d want 10253", got)
	}
}

func TestCalculateStrictlyDecreasingInTenure(t *testing.T) {
	prev := int64(0)
	for i, months := range []int{60, 48, 36, 24, 12} {
		got, err := emi.Calculate(300000, 14.0, months)
		if err != nil {
			t.Fatalf("Calculate(%d months) err: %v", months, err)
		}
		if i > 0 && got <= prev {
			t.Fatalf("EMI not strictly decreasing in tenure: %d months gives %d, shorter gave %d", months, prev, got)
		}
		prev = got
	}
}

func TestCalculateZeroRate(t *testing.T) {
	got, err := emi.Calculate(120000, 0, 12)
	if err != nil {
		t.Fatalf("Calculate err: %v", err)
	}
	if got != 10000 {
		t.Fatalf("zero-rate EMI should be P/n: got %d want 10000", got)
	}
}

func TestCalculateInvalidTenure(t *testing.T) {
	if _, err := emi.Calculate(300000, 14.0, 0); err == nil {
		t.Fatal("expected error for zero tenure")
	}
}

func TestMaxAffordableInvertsFormula(t *testing.T) {
	income := int64(45000)
	principal := emi.MaxAffordable(income, 14.0, 36, 0.45)
	if principal <= 0 {
		t.Fatalf("expected positive principal, got %d", principal)
	}

	installment, err := emi.Calculate(principal, 14.0, 36)
	if err != nil {
		t.Fatalf("Calculate err: %v", err)
	}
	allowed := int64(float64(income) * 0.45)
	// Truncation keeps the EMI at or a rupee under the allowance.
	if installment > allowed+1 {
		t.Fatalf("EMI %d for suggested principal breaches allowance %d", installment, allowed)
	}
}

func TestNextStep(t *testing.T) {
	ladder := []int{12, 24, 36, 48, 60}

	next, ok := emi.NextStep(ladder, 12)
	if !ok || next != 24 {
		t.Fatalf("NextStep(12): got %d/%v want 24/true", next, ok)
	}

	next, ok = emi.NextStep(ladder, 30)
	if !ok || next != 36 {
		t.Fatalf("NextStep(30): got %d/%v want 36/true", next, ok)
	}

	if _, ok := emi.NextStep(ladder, 60); ok {
		t.Fatal("expected no step beyond the cap")
	}
}
