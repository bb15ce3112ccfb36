// Package emi implements equated-monthly-installment math on exact decimals.
package emi

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidTenure is returned when months is not positive.
var ErrInvalidTenure = errors.New("tenure months must be positive")

// Calculate returns the EMI for a principal in whole rupees at a nominal
// annual rate over the given tenure, rounded to the nearest rupee:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1),  r = annualRate/12/100
//
// A zero rate degenerates to straight division P/n.
func Calculate(principal int64, annualRate float64, months int) (int64, error) {
	if months <= 0 {
		return 0, ErrInvalidTenure
	}

	p := decimal.NewFromInt(principal)
	n := decimal.NewFromInt(int64(months))

	r := decimal.NewFromFloat(annualRate).Div(decimal.NewFromInt(1200))
	if r.IsZero() {
		return p.Div(n).Round(0).IntPart(), nil
	}

	one := decimal.NewFromInt(1)
	factor := one.Add(r).Pow(n)
	installment := p.Mul(r).Mul(factor).Div(factor.Sub(one))
	return installment.Round(0).IntPart(), nil
}

// MaxAffordable inverts the EMI formula: the largest principal whose EMI
// stays within maxRatio of the monthly income at the given rate and tenure.
func MaxAffordable(monthlyIncome int64, annualRate float64, months int, maxRatio float64) int64 {
	if monthlyIncome <= 0 || months <= 0 || maxRatio <= 0 {
		return 0
	}

	allowed := decimal.NewFromInt(monthlyIncome).Mul(decimal.NewFromFloat(maxRatio))
	n := decimal.NewFromInt(int64(months))

	r := decimal.NewFromFloat(annualRate).Div(decimal.NewFromInt(1200))
	if r.IsZero() {
		return allowed.Mul(n).RoundDown(0).IntPart()
	}

	one := decimal.NewFromInt(1)
	factor := one.Add(r).Pow(n)
	principal := allowed.Mul(factor.Sub(one)).Div(r.Mul(factor))
	// Truncate so the suggested principal never breaches the ratio.
	return principal.RoundDown(0).IntPart()
}

// NextStep returns the first ladder rung strictly above the current tenure.
// ok is false when the tenure already sits at or beyond the cap.
func NextStep(ladder []int, current int) (next int, ok bool) {
	for _, rung := range ladder {
		if rung > current {
			return rung, true
		}
	}
	return current, false
}
