package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle state of a project. It has no influence on
// any financial computation, it only drives display and filtering.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Project is the highest level of organization. All other resources
// reference it directly.
type Project struct {
	DefaultModel
	Name string `gorm:"uniqueIndex"`
	Note string

	// Budget is the monetary baseline for the project. It is nullable:
	// a project without a baseline still reconciles per category, but its
	// forecast variance is reported against zero.
	Budget *decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	StartDate *time.Time
	EndDate   *time.Time
	Status    ProjectStatus
}

func (p *Project) BeforeSave(_ *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Note = strings.TrimSpace(p.Note)

	if p.Name == "" {
		return ErrNameRequired
	}

	if p.Status == "" {
		p.Status = ProjectActive
	}

	if p.Budget != nil && p.Budget.IsNegative() {
		return ErrAmountNegative
	}

	return nil
}

// Plan returns the planning inputs for the spend forecast. The start
// defaults to the creation instant when no explicit start is set; a missing
// end stays zero and is defaulted by the forecaster (now + 90 days). A
// missing budget is a zero baseline.
func (p Project) Plan() (start, end time.Time, budget decimal.Decimal) {
	start = p.CreatedAt
	if p.StartDate != nil {
		start = *p.StartDate
	}

	if p.EndDate != nil {
		end = *p.EndDate
	}

	budget = decimal.Zero
	if p.Budget != nil {
		budget = *p.Budget
	}

	return start, end, budget
}
