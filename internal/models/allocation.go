package models

import (
	"strings"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetAllocation is a planned amount for a (project, category) pair.
//
// Multiple allocations may share the same pair; they are additive within it.
// The reconciliation engine groups them by exactly that key.
type BudgetAllocation struct {
	DefaultModel
	ProjectID      uuid.UUID
	Project        Project `json:"-"`
	Category       string
	BudgetedAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Notes          string
}

func (a *BudgetAllocation) BeforeSave(_ *gorm.DB) error {
	a.Category = strings.TrimSpace(a.Category)
	a.Notes = strings.TrimSpace(a.Notes)

	if a.Category == "" {
		return ErrCategoryRequired
	}

	if a.BudgetedAmount.IsNegative() {
		return ErrAmountNegative
	}

	return nil
}

func (a *BudgetAllocation) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	// The project has to exist
	return tx.First(&Project{}, a.ProjectID).Error
}

// LedgerView converts the allocation for the reconciliation engine.
func (a BudgetAllocation) LedgerView() ledger.Allocation {
	return ledger.Allocation{
		ProjectID: a.ProjectID,
		Category:  a.Category,
		Budgeted:  a.BudgetedAmount,
		Notes:     a.Notes,
	}
}
