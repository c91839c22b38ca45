package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastStatus classifies the projected end-of-project spend.
type ForecastStatus string

const (
	ForecastOnTrack    ForecastStatus = "on-track"
	ForecastAtRisk     ForecastStatus = "at-risk"
	ForecastOverBudget ForecastStatus = "over-budget"
)

// Forecast is a burn-rate extrapolation of project spend to the project end.
type Forecast struct {
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	DailyRate       decimal.Decimal `json:"dailyRate"`
	DaysPassed      int64           `json:"daysPassed"`
	DaysRemaining   int64           `json:"daysRemaining"`
	ProjectedTotal  decimal.Decimal `json:"projectedTotal"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variancePercent"`
	Status          ForecastStatus  `json:"status"`
}

var (
	varianceOver   = decimal.NewFromInt(-10)
	varianceSafe   = decimal.NewFromInt(5)
	defaultHorizon = 90 * 24 * time.Hour
)

// ForecastSpend extrapolates spend to the project end from the observed
// daily burn rate.
//
// A zero start falls back to now (at least one day is always assumed to have
// passed), a zero end falls back to now + 90 days. When the budget is zero
// the variance percentage is reported as zero, which lands in "at-risk" per
// the thresholds below.
//
// The thresholds look asymmetric on purpose: "at-risk" captures both a mild
// overrun and narrow headroom (variancePercent in [-10, 5)).
func ForecastSpend(now, start, end time.Time, budget, totalSpent decimal.Decimal) Forecast {
	if start.IsZero() {
		start = now
	}

	if end.IsZero() {
		end = now.Add(defaultHorizon)
	}

	daysPassed := int64(now.Sub(start).Hours() / 24)
	if daysPassed < 1 {
		daysPassed = 1
	}

	daysRemaining := int64(end.Sub(now).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	dailyRate := totalSpent.Div(decimal.NewFromInt(daysPassed))
	projected := totalSpent.Add(dailyRate.Mul(decimal.NewFromInt(daysRemaining)))
	variance := budget.Sub(projected)

	variancePercent := decimal.Zero
	if budget.IsPositive() {
		variancePercent = variance.Div(budget).Mul(oneHundred)
	}

	var status ForecastStatus
	switch {
	case variancePercent.LessThan(varianceOver):
		status = ForecastOverBudget
	case variancePercent.LessThan(varianceSafe):
		status = ForecastAtRisk
	default:
		status = ForecastOnTrack
	}

	return Forecast{
		TotalSpent:      totalSpent,
		DailyRate:       dailyRate,
		DaysPassed:      daysPassed,
		DaysRemaining:   daysRemaining,
		ProjectedTotal:  projected,
		Variance:        variance,
		VariancePercent: variancePercent,
		Status:          status,
	}
}
