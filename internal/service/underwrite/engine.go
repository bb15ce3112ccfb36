// Package underwrite holds the rule-based eligibility engine.
package underwrite

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintechfusion/loan-officer/internal/config"
	"github.com/fintechfusion/loan-officer/internal/model/loan"
	"github.com/fintechfusion/loan-officer/internal/service/emi"
)

// ErrIncompleteApplication signals a contract violation: Evaluate was invoked
// before income, amount, tenure and EMI were all captured. The orchestrator
// must guarantee the precondition, so this is fatal to the request.
var ErrIncompleteApplication = errors.New("underwrite: incomplete profile or application")

// ScoreFunc derives a credit score from monthly income. It stands in for a
// real bureau lookup and is injectable so one can be substituted without
// touching the rule flow.
type ScoreFunc func(monthlyIncome int64) int

// DefaultScore is the placeholder derivation: 620 base plus 2 points per
// thousand rupees of income, capped at 800. Monotonic in income.
func DefaultScore(monthlyIncome int64) int {
	if monthlyIncome <= 0 {
		return 0
	}
	score := 620 + int(monthlyIncome/1000)*2
	if score > 800 {
		score = 800
	}
	return score
}

// Engine evaluates a finished application against the affordability and
// eligibility rules. It is deterministic and side-effect-free.
type Engine struct {
	policy config.UnderwritingConfig
	score  ScoreFunc
}

// NewEngine builds an engine for the given thresholds. A nil score function
// falls back to DefaultScore.
func NewEngine(policy config.UnderwritingConfig, score ScoreFunc) *Engine {
	if score == nil {
		score = DefaultScore
	}
	return &Engine{policy: policy, score: score}
}

// Evaluate runs the four rules in fixed order. Every rule is checked, so a
// rejected applicant sees all blocking reasons at once, not just the first.
func (e *Engine) Evaluate(profile loan.Profile, app loan.Application) (loan.Decision, error) {
	if profile.MonthlyIncome <= 0 || app.Amount <= 0 || app.TenureMonths <= 0 || app.EMI <= 0 {
		return loan.Decision{}, ErrIncompleteApplication
	}

	income := profile.MonthlyIncome
	score := e.score(income)
	dti := float64(app.EMI) / float64(income)
	maxByMultiple := int64(e.policy.MaxLoanMultiple) * income * 12

	var reasons []string

	if income < e.policy.MinMonthlyIncome {
		reasons = append(reasons, fmt.Sprintf(
			"Monthly income ₹%s is below the minimum required ₹%s.",
			loan.FormatINR(income), loan.FormatINR(e.policy.MinMonthlyIncome)))
	}

	if score < e.policy.MinCreditScore {
		reasons = append(reasons, fmt.Sprintf(
			"Derived credit score %d is below the required minimum of %d.",
			score, e.policy.MinCreditScore))
	}

	affordable := decimal.NewFromInt(app.EMI).LessThanOrEqual(
		decimal.NewFromFloat(e.policy.MaxEMIRatio).Mul(decimal.NewFromInt(income)))
	if !affordable {
		reasons = append(reasons, fmt.Sprintf(
			"EMI-to-income ratio is %.1f%% which exceeds our limit of %.0f%%.",
			dti*100, e.policy.MaxEMIRatio*100))
	}

	if app.Amount > maxByMultiple {
		reasons = append(reasons, fmt.Sprintf(
			"Requested amount ₹%s is higher than the maximum allowed (~₹%s) based on your income.",
			loan.FormatINR(app.Amount), loan.FormatINR(maxByMultiple)))
	}

	if len(reasons) == 0 {
		return loan.Decision{
			Outcome:     loan.OutcomeApproved,
			CreditScore: score,
			DTI:         dti,
		}, nil
	}

	return loan.Decision{
		Outcome:     loan.OutcomeRejected,
		Reasons:     reasons,
		Alternative: e.suggestAlternative(income, app, affordable, maxByMultiple),
		CreditScore: score,
		DTI:         dti,
	}, nil
}

// suggestAlternative proposes a lower principal that would clear the
// affordability rule over the same tenure, when such an amount exists.
func (e *Engine) suggestAlternative(income int64, app loan.Application, affordable bool, maxByMultiple int64) string {
	if affordable {
		return ""
	}

	suggested := emi.MaxAffordable(income, app.AnnualRate, app.TenureMonths, e.policy.MaxEMIRatio)
	if suggested > maxByMultiple {
		suggested = maxByMultiple
	}
	if suggested <= 0 || suggested >= app.Amount {
		return ""
	}

	return fmt.Sprintf(
		"Based on your income, you could be eligible for a lower amount of around ₹%s for the same tenure (%d months).",
		loan.FormatINR(suggested), app.TenureMonths)
}
