package v1

import (
	"fmt"
	"time"

	"github.com/buildsite/backend/internal/models"
	ez_uuid "github.com/buildsite/backend/internal/uuid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseEditable represents all user configurable parameters
type ExpenseEditable struct {
	ProjectID   uuid.UUID       `json:"projectId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the project the expense belongs to
	Category    string          `json:"category" example:"Concrete" default:""`                   // Cost category, must match the allocation category exactly to reconcile
	Amount      decimal.Decimal `json:"amount" example:"1830.50" default:"0"`                     // Amount of the expense
	Vendor      string          `json:"vendor" example:"Acme Ready-Mix" default:""`               // Vendor the expense was paid to
	Description string          `json:"description" example:"Pour for footing B3" default:""`     // Description of the expense
	Date        time.Time       `json:"date" example:"2024-04-02T00:00:00Z"`                      // Date of the expense, defaults to the creation time
}

func (editable ExpenseEditable) model() models.Expense {
	return models.Expense{
		ProjectID:   editable.ProjectID,
		Category:    editable.Category,
		Amount:      editable.Amount,
		Vendor:      editable.Vendor,
		Description: editable.Description,
		Date:        editable.Date,
	}
}

type ExpenseLinks struct {
	Self    string `json:"self" example:"https://example.com/v1/expenses/3b1ea324-d438-4419-882a-2fc91d71772f"`            // The expense itself
	Project string `json:"project" example:"https://example.com/v1/projects/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`         // The project the expense belongs to
	Receipt string `json:"receipt" example:"https://example.com/v1/expenses/3b1ea324-d438-4419-882a-2fc91d71772f/receipt"` // Receipt up- and download
}

type Expense struct {
	models.DefaultModel
	ExpenseEditable
	Status     models.ExpenseStatus `json:"status" example:"pending"`                                   // Approval state
	ReceiptRef string               `json:"receiptRef" example:"2f20ae2e-4019-4a2b-9a7a-23da4bd5ab2a.jpg"` // Reference of the uploaded receipt, empty when none was uploaded
	ApprovedBy *uuid.UUID           `json:"approvedBy" example:"d7114b38-bbe1-4b2f-b8bd-0cbb7d12a543"`  // User who decided the expense
	ApprovedAt *time.Time           `json:"approvedAt" example:"2024-04-05T09:12:44.491514Z"`           // Time the expense was decided
	Links      ExpenseLinks         `json:"links"`
}

func newExpense(url string, model models.Expense) Expense {
	return Expense{
		DefaultModel: model.DefaultModel,
		ExpenseEditable: ExpenseEditable{
			ProjectID:   model.ProjectID,
			Category:    model.Category,
			Amount:      model.Amount,
			Vendor:      model.Vendor,
			Description: model.Description,
			Date:        model.Date,
		},
		Status:     model.Status,
		ReceiptRef: model.ReceiptRef,
		ApprovedBy: model.ApprovedBy,
		ApprovedAt: model.ApprovedAt,
		Links: ExpenseLinks{
			Self:    fmt.Sprintf("%s/v1/expenses/%s", url, model.ID),
			Project: fmt.Sprintf("%s/v1/projects/%s", url, model.ProjectID),
			Receipt: fmt.Sprintf("%s/v1/expenses/%s/receipt", url, model.ID),
		},
	}
}

type ExpenseListResponse struct {
	Data       []Expense   `json:"data"`                                                          // List of Expenses
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type ExpenseCreateResponse struct {
	Data  []ExpenseResponse `json:"data"`                                                          // List of the created Expenses or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (e *ExpenseCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	e.Data = append(e.Data, ExpenseResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ExpenseResponse struct {
	Data  *Expense `json:"data"`                                                          // Data for the Expense
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ExpenseQueryFilter struct {
	ProjectID ez_uuid.UUID         `form:"project"`                    // By ID of the project
	Category  string               `form:"category"`                   // By cost category, exact match
	Status    models.ExpenseStatus `form:"status"`                     // By approval state
	Vendor    string               `form:"vendor" filterField:"false"` // By vendor, glob patterns like "Acme*" are supported
	Offset    uint                 `form:"offset" filterField:"false"` // The offset of the first Expense returned. Defaults to 0.
	Limit     int                  `form:"limit" filterField:"false"`  // Maximum number of Expenses to return. Defaults to 50.
}

func (f ExpenseQueryFilter) model() (models.Expense, error) {
	return models.Expense{
		ProjectID: f.ProjectID.UUID,
		Category:  f.Category,
		Status:    f.Status,
	}, nil
}
