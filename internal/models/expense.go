package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseStatus is the approval state of an expense.
//
// The state machine is pending -> approved or pending -> rejected, both
// terminal. Corrections require deleting and recreating the expense.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
)

// Expense is a recorded cost against a project category.
//
// Expenses are created in pending state by any project member and are never
// deleted automatically. Approval status has no effect on reconciliation
// totals, see ledger.Reconcile.
type Expense struct {
	DefaultModel
	ProjectID   uuid.UUID
	Project     Project `json:"-"`
	Category    string
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Vendor      string
	Description string
	Date        time.Time

	// ReceiptRef references a receipt image in the blob store. It stays
	// empty when no receipt was uploaded or when the upload failed; an
	// expense without a receipt is still reconciled.
	ReceiptRef string

	Status     ExpenseStatus
	ApprovedBy *uuid.UUID
	ApprovedAt *time.Time
}

func (e *Expense) BeforeSave(_ *gorm.DB) error {
	e.Category = strings.TrimSpace(e.Category)
	e.Vendor = strings.TrimSpace(e.Vendor)
	e.Description = strings.TrimSpace(e.Description)

	if e.Category == "" {
		return ErrCategoryRequired
	}

	if e.Amount.IsNegative() {
		return ErrAmountNegative
	}

	if e.Status == "" {
		e.Status = ExpensePending
	}

	if e.Date.IsZero() {
		e.Date = time.Now().In(time.UTC)
	} else {
		e.Date = e.Date.In(time.UTC)
	}

	return nil
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	_ = e.DefaultModel.BeforeCreate(tx)

	// The project has to exist
	return tx.First(&Project{}, e.ProjectID).Error
}

// AfterFind enforces UTC for the expense date, see DefaultModel.AfterFind.
func (e *Expense) AfterFind(tx *gorm.DB) error {
	err := e.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	e.Date = e.Date.In(time.UTC)
	return nil
}

// Transition drives the approval state machine.
//
// Only a pending expense can transition, and only a caller whose
// project-scoped role allows approval may request it. The pending guard is
// checked explicitly even though the UI never offers the action on decided
// expenses: without it, the store would happily re-stamp ApprovedBy and
// ApprovedAt on an already decided expense.
func (e *Expense) Transition(tx *gorm.DB, target ExpenseStatus, permissions Permissions) error {
	if target != ExpenseApproved && target != ExpenseRejected {
		return fmt.Errorf("%q is not a valid expense decision", target)
	}

	if !permissions.Role.CanApproveExpenses() {
		return fmt.Errorf("%w: only project owners and admins can approve or reject expenses", ErrForbidden)
	}

	if e.Status != ExpensePending {
		return ErrExpenseNotPending
	}

	now := time.Now().In(time.UTC)
	e.Status = target
	e.ApprovedBy = &permissions.UserID
	e.ApprovedAt = &now

	return tx.Model(e).Updates(map[string]any{
		"status":      target,
		"approved_by": permissions.UserID,
		"approved_at": now,
	}).Error
}

// AttachReceipt records the blob store reference for an uploaded receipt.
//
// The expense row exists before the blob is uploaded, so a failed upload
// leaves a complete expense without a receipt instead of rolling the row
// back. The reverse failure, a patched row pointing at a blob that was
// uploaded but whose reference update failed, leaves an orphaned blob;
// both outcomes are tolerated, neither blocks reconciliation.
func (e *Expense) AttachReceipt(tx *gorm.DB, ref string) error {
	e.ReceiptRef = ref
	return tx.Model(e).Updates(map[string]any{"receipt_ref": ref}).Error
}

// LedgerView converts the expense for the reconciliation engine.
func (e Expense) LedgerView() ledger.Expense {
	return ledger.Expense{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Category:  e.Category,
		Amount:    e.Amount,
		Date:      e.Date,
	}
}
