package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the stored invoice state. Transitions are forward-only:
// draft -> sent -> paid, with draft -> paid allowed as a shortcut.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Invoice is the summary view of an invoice.
type Invoice struct {
	Total   decimal.Decimal
	Status  InvoiceStatus
	DueDate time.Time // zero when the invoice has no due date
}

// Overdue reports whether the invoice is past due and unpaid.
//
// "overdue" exists in the stored status vocabulary of the surrounding
// product, but no engine ever writes it: it is derived at read time so that
// paying an invoice can never race with a scheduled status writer.
func (i Invoice) Overdue(now time.Time) bool {
	return !i.DueDate.IsZero() && i.DueDate.Before(now) && i.Status != InvoicePaid
}

// InvoiceSummary aggregates invoice totals for reporting.
type InvoiceSummary struct {
	TotalInvoiced decimal.Decimal `json:"totalInvoiced"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`

	// TotalPending uses the inclusive definition: drafts count as part of
	// "not yet collected" alongside sent invoices.
	TotalPending decimal.Decimal `json:"totalPending"`

	// TotalOverdue is the sum of unpaid invoices past due at query time,
	// see Invoice.Overdue.
	TotalOverdue decimal.Decimal `json:"totalOverdue"`
	OverdueCount int             `json:"overdueCount"`

	// Display carries the aggregates rendered with FormatAmount. Rounding
	// happens here and nowhere earlier.
	Display InvoiceSummaryDisplay `json:"display"`
}

// InvoiceSummaryDisplay is the human-readable rendering of the aggregates.
type InvoiceSummaryDisplay struct {
	TotalInvoiced string `json:"totalInvoiced" example:"1,830.00"`
	TotalPaid     string `json:"totalPaid" example:"1,130.00"`
	TotalPending  string `json:"totalPending" example:"700.00"`
	TotalOverdue  string `json:"totalOverdue" example:"500.00"`
}

// SummarizeInvoices computes the aggregate views over an invoice snapshot.
func SummarizeInvoices(now time.Time, invoices []Invoice) InvoiceSummary {
	summary := InvoiceSummary{
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalPending:  decimal.Zero,
		TotalOverdue:  decimal.Zero,
	}

	for _, invoice := range invoices {
		summary.TotalInvoiced = summary.TotalInvoiced.Add(invoice.Total)

		if invoice.Status == InvoicePaid {
			summary.TotalPaid = summary.TotalPaid.Add(invoice.Total)
		} else {
			summary.TotalPending = summary.TotalPending.Add(invoice.Total)
		}

		if invoice.Overdue(now) {
			summary.TotalOverdue = summary.TotalOverdue.Add(invoice.Total)
			summary.OverdueCount++
		}
	}

	summary.Display = InvoiceSummaryDisplay{
		TotalInvoiced: FormatAmount(summary.TotalInvoiced),
		TotalPaid:     FormatAmount(summary.TotalPaid),
		TotalPending:  FormatAmount(summary.TotalPending),
		TotalOverdue:  FormatAmount(summary.TotalOverdue),
	}

	return summary
}
