package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InvoiceTotals computes the tax and total for an invoice subtotal.
//
// The values are kept at full precision. Rounding happens only at
// presentation boundaries, see FormatAmount. Rounding each intermediate
// value would accumulate drift over many invoices.
func InvoiceTotals(amount, taxRatePercent decimal.Decimal) (taxAmount, totalAmount decimal.Decimal) {
	taxAmount = amount.Mul(taxRatePercent).Div(decimal.NewFromInt(100))
	totalAmount = amount.Add(taxAmount)
	return
}

// InvoiceNumber generates an invoice number for a project.
//
// The format is INV-<first 3 letters of the project name, uppercased, spaces
// stripped>-<last 6 digits of the millisecond timestamp>. Uniqueness is
// probabilistic: two invoices created for the same project within the same
// millisecond collide. The invoices table carries a unique index on
// (project_id, invoice_number) so that a collision surfaces as an error
// instead of a silent duplicate.
func InvoiceNumber(projectName string, now time.Time) string {
	prefix := []rune(strings.ToUpper(strings.ReplaceAll(projectName, " ", "")))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	millis := now.UnixMilli()
	return fmt.Sprintf("INV-%s-%06d", string(prefix), millis%1000000)
}

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount for human-readable output with two
// fraction digits. This is the only place where amounts are rounded.
func FormatAmount(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return displayPrinter.Sprintf("%.2f", f)
}
