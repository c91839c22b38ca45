// Package ledger implements the pure computations of the financial engine:
// budget reconciliation, invoice math, composite risk scoring and spend
// forecasting. All functions operate on in-memory snapshots and perform no
// I/O; callers fetch the snapshot and recompute from scratch after any
// change instead of patching derived values incrementally.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HealthStatus classifies how much of an allocation group's budget is used.
type HealthStatus string

const (
	HealthOnTrack  HealthStatus = "on-track"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"

	// HealthUndefined is reported when the group has no budgeted amount,
	// since a percentage of zero is not meaningful.
	HealthUndefined HealthStatus = "undefined"
)

// Allocation is the reconciliation view of a budget allocation.
type Allocation struct {
	ProjectID uuid.UUID
	Category  string
	Budgeted  decimal.Decimal
	Notes     string
}

// Expense is the reconciliation view of an expense.
type Expense struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Category  string
	Amount    decimal.Decimal
	Date      time.Time
}

// CategoryLedger is the reconciled state of one (project, category) group.
type CategoryLedger struct {
	ProjectID uuid.UUID        `json:"projectId"`
	Category  string           `json:"category"`
	Budgeted  decimal.Decimal  `json:"budgeted"`
	Spent     decimal.Decimal  `json:"spent"`
	Remaining decimal.Decimal  `json:"remaining"`
	Notes     string           `json:"notes"`
	Expenses  int              `json:"expenses"`
	Status    HealthStatus     `json:"status"`
	Percent   *decimal.Decimal `json:"percentUsed"` // nil when nothing is budgeted
}

var (
	percentWarning  = decimal.NewFromInt(75)
	percentCritical = decimal.NewFromInt(90)
	oneHundred      = decimal.NewFromInt(100)
)

// Reconcile matches expenses against allocations.
//
// Allocations sharing a (projectID, category) pair are additive and form one
// group. Expenses are matched by exact, case-sensitive category comparison.
// Expenses that match no group are returned in the unlinked bucket; they are
// reported, but not reconciled against any allocation.
//
// Spent sums all matching expenses regardless of their approval status.
// Approval gates the audit trail, not the running total: a rejected expense
// still spent the money.
func Reconcile(allocations []Allocation, expenses []Expense) (ledgers []CategoryLedger, unlinked []Expense) {
	type groupKey struct {
		projectID uuid.UUID
		category  string
	}

	groups := make(map[groupKey]*CategoryLedger)

	for _, allocation := range allocations {
		key := groupKey{allocation.ProjectID, allocation.Category}

		group, ok := groups[key]
		if !ok {
			group = &CategoryLedger{
				ProjectID: allocation.ProjectID,
				Category:  allocation.Category,
				Budgeted:  decimal.Zero,
				Spent:     decimal.Zero,
			}
			groups[key] = group
		}

		group.Budgeted = group.Budgeted.Add(allocation.Budgeted)
		if notes := strings.TrimSpace(allocation.Notes); notes != "" {
			if group.Notes != "" {
				group.Notes += "; "
			}
			group.Notes += notes
		}
	}

	for _, expense := range expenses {
		group, ok := groups[groupKey{expense.ProjectID, expense.Category}]
		if !ok {
			unlinked = append(unlinked, expense)
			continue
		}

		group.Spent = group.Spent.Add(expense.Amount)
		group.Expenses++
	}

	ledgers = make([]CategoryLedger, 0, len(groups))
	for _, group := range groups {
		group.Remaining = group.Budgeted.Sub(group.Spent)

		if group.Budgeted.IsPositive() {
			percent := group.Spent.Div(group.Budgeted).Mul(oneHundred)
			group.Percent = &percent
			group.Status = healthStatus(percent)
		} else {
			group.Status = HealthUndefined
		}

		ledgers = append(ledgers, *group)
	}

	sort.Slice(ledgers, func(i, j int) bool {
		if ledgers[i].ProjectID != ledgers[j].ProjectID {
			return ledgers[i].ProjectID.String() < ledgers[j].ProjectID.String()
		}
		return ledgers[i].Category < ledgers[j].Category
	})

	return ledgers, unlinked
}

func healthStatus(percentUsed decimal.Decimal) HealthStatus {
	switch {
	case percentUsed.GreaterThanOrEqual(percentCritical):
		return HealthCritical
	case percentUsed.GreaterThanOrEqual(percentWarning):
		return HealthWarning
	default:
		return HealthOnTrack
	}
}
