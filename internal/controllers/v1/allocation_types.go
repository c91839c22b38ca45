package v1

import (
	"fmt"

	"github.com/buildsite/backend/internal/models"
	ez_uuid "github.com/buildsite/backend/internal/uuid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationEditable represents all user configurable parameters
type AllocationEditable struct {
	ProjectID      uuid.UUID       `json:"projectId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the project the allocation belongs to
	Category       string          `json:"category" example:"Concrete" default:""`                   // Cost category the amount is planned for
	BudgetedAmount decimal.Decimal `json:"budgetedAmount" example:"120000.00" default:"0"`           // Planned amount
	Notes          string          `json:"notes" example:"Includes rebar" default:""`                // Notes about the allocation
}

func (editable AllocationEditable) model() models.BudgetAllocation {
	return models.BudgetAllocation{
		ProjectID:      editable.ProjectID,
		Category:       editable.Category,
		BudgetedAmount: editable.BudgetedAmount,
		Notes:          editable.Notes,
	}
}

type AllocationLinks struct {
	Self    string `json:"self" example:"https://example.com/v1/allocations/3b1ea324-d438-4419-882a-2fc91d71772f"` // The allocation itself
	Project string `json:"project" example:"https://example.com/v1/projects/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // The project the allocation belongs to
}

type Allocation struct {
	models.DefaultModel
	AllocationEditable
	Links AllocationLinks `json:"links"`
}

func newAllocation(url string, model models.BudgetAllocation) Allocation {
	return Allocation{
		DefaultModel: model.DefaultModel,
		AllocationEditable: AllocationEditable{
			ProjectID:      model.ProjectID,
			Category:       model.Category,
			BudgetedAmount: model.BudgetedAmount,
			Notes:          model.Notes,
		},
		Links: AllocationLinks{
			Self:    fmt.Sprintf("%s/v1/allocations/%s", url, model.ID),
			Project: fmt.Sprintf("%s/v1/projects/%s", url, model.ProjectID),
		},
	}
}

type AllocationListResponse struct {
	Data       []Allocation `json:"data"`                                                          // List of Allocations
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type AllocationCreateResponse struct {
	Data  []AllocationResponse `json:"data"`                                                          // List of the created Allocations or their respective error
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (a *AllocationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	a.Data = append(a.Data, AllocationResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AllocationResponse struct {
	Data  *Allocation `json:"data"`                                                          // Data for the Allocation
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationQueryFilter struct {
	ProjectID ez_uuid.UUID `form:"project"`                    // By ID of the project
	Category  string       `form:"category"`                   // By cost category, exact match
	Offset    uint         `form:"offset" filterField:"false"` // The offset of the first Allocation returned. Defaults to 0.
	Limit     int          `form:"limit" filterField:"false"`  // Maximum number of Allocations to return. Defaults to 50.
}

func (f AllocationQueryFilter) model() (models.BudgetAllocation, error) {
	return models.BudgetAllocation{
		ProjectID: f.ProjectID.UUID,
		Category:  f.Category,
	}, nil
}
