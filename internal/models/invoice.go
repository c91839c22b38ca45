package models

import (
	"strings"
	"time"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a client invoice for a project.
//
// TotalAmount is always Amount + TaxAmount. It is recomputed on every save
// and never mutated independently.
type Invoice struct {
	DefaultModel
	ProjectID     uuid.UUID `gorm:"uniqueIndex:invoice_project_number"`
	Project       Project   `json:"-"`
	InvoiceNumber string    `gorm:"uniqueIndex:invoice_project_number"`
	ClientName    string
	ClientEmail   string
	Amount        decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Subtotal before tax
	TaxRate       decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Tax rate in percent
	TaxAmount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TotalAmount   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Status        ledger.InvoiceStatus
	DueDate       *time.Time
	PaidDate      *time.Time
	Notes         string
}

func (i *Invoice) BeforeSave(_ *gorm.DB) error {
	i.ClientName = strings.TrimSpace(i.ClientName)
	i.ClientEmail = strings.TrimSpace(i.ClientEmail)
	i.Notes = strings.TrimSpace(i.Notes)

	if i.ClientName == "" {
		return ErrNameRequired
	}

	if i.Amount.IsNegative() || i.TaxRate.IsNegative() {
		return ErrAmountNegative
	}

	if i.Status == "" {
		i.Status = ledger.InvoiceDraft
	}

	// The totals are derived, never set by callers
	i.TaxAmount, i.TotalAmount = ledger.InvoiceTotals(i.Amount, i.TaxRate)

	return nil
}

// BeforeCreate generates the invoice number from the project name when none
// is given.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	_ = i.DefaultModel.BeforeCreate(tx)

	var project Project
	err := tx.First(&project, i.ProjectID).Error
	if err != nil {
		return err
	}

	if i.InvoiceNumber == "" {
		i.InvoiceNumber = ledger.InvoiceNumber(project.Name, time.Now())
	}

	return nil
}

// MarkSent transitions a draft invoice to sent.
//
// Sending an already sent invoice is a deterministic no-op so that a
// double-clicked "send" does not error. Sending a paid invoice is an error.
func (i *Invoice) MarkSent(tx *gorm.DB) error {
	switch i.Status {
	case ledger.InvoiceSent:
		return nil
	case ledger.InvoicePaid:
		return ErrInvoiceAlreadyPaid
	}

	i.Status = ledger.InvoiceSent
	return tx.Model(i).Updates(map[string]any{"status": ledger.InvoiceSent}).Error
}

// MarkPaid transitions an invoice to paid and records the payment date.
//
// The transition is allowed from any non-paid state: a draft invoice can be
// paid directly, skipping sent. Paying an already paid invoice is a no-op
// that keeps the original payment date.
func (i *Invoice) MarkPaid(tx *gorm.DB, paidDate time.Time) error {
	if i.Status == ledger.InvoicePaid {
		return nil
	}

	if paidDate.IsZero() {
		paidDate = time.Now().In(time.UTC)
	} else {
		paidDate = paidDate.In(time.UTC)
	}

	i.Status = ledger.InvoicePaid
	i.PaidDate = &paidDate

	return tx.Model(i).Updates(map[string]any{
		"status":    ledger.InvoicePaid,
		"paid_date": paidDate,
	}).Error
}

// LedgerView converts the invoice for the summary computation.
func (i Invoice) LedgerView() ledger.Invoice {
	view := ledger.Invoice{
		Total:  i.TotalAmount,
		Status: i.Status,
	}

	if i.DueDate != nil {
		view.DueDate = *i.DueDate
	}

	return view
}
