package ledger

import (
	"github.com/shopspring/decimal"
)

// Severity is the ordered classification of a 0-100 risk score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityFor buckets a 0-100 score into a severity. The buckets are closed
// and non-overlapping: >= 75 critical, >= 50 high, >= 25 medium, < 25 low.
func SeverityFor(score int) Severity {
	switch {
	case score >= 75:
		return SeverityCritical
	case score >= 50:
		return SeverityHigh
	case score >= 25:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ScheduleRisk is the schedule factor input.
type ScheduleRisk struct {
	// Percentage of tasks past their due date, 0-100.
	OverdueRatioPercent decimal.Decimal `json:"overdueRatioPercent"`
}

// SafetyRisk is the safety factor input.
type SafetyRisk struct {
	CriticalIncidents int `json:"criticalIncidents"`
	OpenIncidents     int `json:"openIncidents"`
}

// ComplianceRisk is the compliance factor input.
type ComplianceRisk struct {
	ExpiredPermits    int `json:"expiredPermits"`
	FailedInspections int `json:"failedInspections"`
	PendingPermits    int `json:"pendingPermits"`
}

// RiskFactors collects the four factor inputs for the composite score.
// A nil factor means the data is missing for the project and the factor
// does not participate in the average.
type RiskFactors struct {
	BudgetUsagePercent *decimal.Decimal `json:"budgetUsagePercent"`
	Schedule           *ScheduleRisk    `json:"schedule"`
	Safety             *SafetyRisk      `json:"safety"`
	Compliance         *ComplianceRisk  `json:"compliance"`
}

// FactorPoints is the contribution of a single factor to the composite.
type FactorPoints struct {
	Factor string `json:"factor"`
	Points int    `json:"points"`
}

// CompositeRisk is the aggregated project risk.
type CompositeRisk struct {
	Score    int            `json:"score"`
	Severity Severity       `json:"severity"`
	Factors  []FactorPoints `json:"factors"`
}

// ComputeCompositeRisk combines the present risk factors into one 0-100
// score.
//
// Each present factor contributes 0-25 points. The composite is the sum of
// contributed points divided by the number of present factors, not by a
// fixed four: a project missing schedule data is not penalized for the
// absence, but each remaining factor weighs more.
//
// Weather risk is tracked as a fifth, independent category and is never
// folded into this composite.
func ComputeCompositeRisk(factors RiskFactors) CompositeRisk {
	var points []FactorPoints

	if factors.BudgetUsagePercent != nil {
		points = append(points, FactorPoints{"budget", budgetPoints(*factors.BudgetUsagePercent)})
	}

	if factors.Schedule != nil {
		points = append(points, FactorPoints{"schedule", schedulePoints(factors.Schedule.OverdueRatioPercent)})
	}

	if factors.Safety != nil {
		points = append(points, FactorPoints{"safety", safetyPoints(*factors.Safety)})
	}

	if factors.Compliance != nil {
		points = append(points, FactorPoints{"compliance", compliancePoints(*factors.Compliance)})
	}

	if len(points) == 0 {
		return CompositeRisk{Score: 0, Severity: SeverityLow}
	}

	sum := 0
	for _, p := range points {
		sum += p.Points
	}

	score := int(decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(points)))).
		Round(0).
		IntPart())

	return CompositeRisk{
		Score:    score,
		Severity: SeverityFor(score),
		Factors:  points,
	}
}

var (
	usage80  = decimal.NewFromInt(80)
	usage90  = decimal.NewFromInt(90)
	usage100 = decimal.NewFromInt(100)

	ratio10 = decimal.NewFromInt(10)
	ratio20 = decimal.NewFromInt(20)
	ratio30 = decimal.NewFromInt(30)
)

func budgetPoints(usagePercent decimal.Decimal) int {
	switch {
	case usagePercent.GreaterThan(usage100):
		return 25
	case usagePercent.GreaterThan(usage90):
		return 20
	case usagePercent.GreaterThan(usage80):
		return 10
	default:
		return 5
	}
}

func schedulePoints(overdueRatioPercent decimal.Decimal) int {
	switch {
	case overdueRatioPercent.GreaterThan(ratio30):
		return 25
	case overdueRatioPercent.GreaterThan(ratio20):
		return 20
	case overdueRatioPercent.GreaterThan(ratio10):
		return 10
	default:
		return 5
	}
}

func safetyPoints(safety SafetyRisk) int {
	switch {
	case safety.CriticalIncidents > 0:
		return 25
	case safety.OpenIncidents > 3:
		return 15
	case safety.OpenIncidents > 0:
		return 10
	default:
		return 5
	}
}

func compliancePoints(compliance ComplianceRisk) int {
	switch {
	case compliance.ExpiredPermits > 0 || compliance.FailedInspections > 0:
		return 25
	case compliance.PendingPermits > 2:
		return 15
	case compliance.PendingPermits > 0:
		return 10
	default:
		return 5
	}
}
