package v1

import (
	"fmt"
	"time"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/buildsite/backend/internal/models"
	ez_uuid "github.com/buildsite/backend/internal/uuid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceEditable represents all user configurable parameters
type InvoiceEditable struct {
	ProjectID   uuid.UUID       `json:"projectId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`     // ID of the project the invoice belongs to
	ClientName  string          `json:"clientName" example:"Meridian Properties" default:""`          // Name of the client the invoice is addressed to
	ClientEmail string          `json:"clientEmail" example:"billing@meridian.example" default:""`    // Email of the client
	Amount      decimal.Decimal `json:"amount" example:"48000.00" default:"0"`                        // Subtotal before tax
	TaxRate     decimal.Decimal `json:"taxRate" example:"13" default:"0"`                             // Tax rate in percent
	DueDate     *time.Time      `json:"dueDate" example:"2024-05-31T00:00:00Z"`                       // Payment due date
	Notes       string          `json:"notes" example:"Progress billing #4" default:""`               // Notes about the invoice
}

func (editable InvoiceEditable) model() models.Invoice {
	return models.Invoice{
		ProjectID:   editable.ProjectID,
		ClientName:  editable.ClientName,
		ClientEmail: editable.ClientEmail,
		Amount:      editable.Amount,
		TaxRate:     editable.TaxRate,
		DueDate:     editable.DueDate,
		Notes:       editable.Notes,
	}
}

type InvoiceLinks struct {
	Self    string `json:"self" example:"https://example.com/v1/invoices/3b1ea324-d438-4419-882a-2fc91d71772f"`      // The invoice itself
	Project string `json:"project" example:"https://example.com/v1/projects/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`   // The project the invoice belongs to
	Send    string `json:"send" example:"https://example.com/v1/invoices/3b1ea324-d438-4419-882a-2fc91d71772f/send"` // Marks the invoice as sent
	Pay     string `json:"pay" example:"https://example.com/v1/invoices/3b1ea324-d438-4419-882a-2fc91d71772f/pay"`   // Marks the invoice as paid
}

type Invoice struct {
	models.DefaultModel
	InvoiceEditable
	InvoiceNumber string               `json:"invoiceNumber" example:"INV-HAR-583920"`            // Generated invoice number, unique per project
	TaxAmount     decimal.Decimal      `json:"taxAmount" example:"6240.00"`                       // Computed tax
	TotalAmount   decimal.Decimal      `json:"totalAmount" example:"54240.00"`                    // Computed total including tax
	Status        ledger.InvoiceStatus `json:"status" example:"draft"`                            // Lifecycle state
	PaidDate      *time.Time           `json:"paidDate" example:"2024-06-02T00:00:00Z"`           // Date the invoice was paid
	Overdue       bool                 `json:"overdue" example:"false"`                           // Whether the invoice is past due and unpaid, derived at read time
	Links         InvoiceLinks         `json:"links"`
}

func newInvoice(url string, model models.Invoice) Invoice {
	return Invoice{
		DefaultModel: model.DefaultModel,
		InvoiceEditable: InvoiceEditable{
			ProjectID:   model.ProjectID,
			ClientName:  model.ClientName,
			ClientEmail: model.ClientEmail,
			Amount:      model.Amount,
			TaxRate:     model.TaxRate,
			DueDate:     model.DueDate,
			Notes:       model.Notes,
		},
		InvoiceNumber: model.InvoiceNumber,
		TaxAmount:     model.TaxAmount,
		TotalAmount:   model.TotalAmount,
		Status:        model.Status,
		PaidDate:      model.PaidDate,
		Overdue:       model.LedgerView().Overdue(time.Now().In(time.UTC)),
		Links: InvoiceLinks{
			Self:    fmt.Sprintf("%s/v1/invoices/%s", url, model.ID),
			Project: fmt.Sprintf("%s/v1/projects/%s", url, model.ProjectID),
			Send:    fmt.Sprintf("%s/v1/invoices/%s/send", url, model.ID),
			Pay:     fmt.Sprintf("%s/v1/invoices/%s/pay", url, model.ID),
		},
	}
}

type InvoiceListResponse struct {
	Data       []Invoice   `json:"data"`                                                          // List of Invoices
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type InvoiceCreateResponse struct {
	Data  []InvoiceResponse `json:"data"`                                                          // List of the created Invoices or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (i *InvoiceCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	i.Data = append(i.Data, InvoiceResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type InvoiceResponse struct {
	Data  *Invoice `json:"data"`                                                          // Data for the Invoice
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type InvoiceQueryFilter struct {
	ProjectID ez_uuid.UUID         `form:"project"`                    // By ID of the project
	Status    ledger.InvoiceStatus `form:"status"`                     // By lifecycle state
	Offset    uint                 `form:"offset" filterField:"false"` // The offset of the first Invoice returned. Defaults to 0.
	Limit     int                  `form:"limit" filterField:"false"`  // Maximum number of Invoices to return. Defaults to 50.
}

func (f InvoiceQueryFilter) model() (models.Invoice, error) {
	return models.Invoice{
		ProjectID: f.ProjectID.UUID,
		Status:    f.Status,
	}, nil
}
