package v1

import (
	"fmt"
	"time"

	"github.com/buildsite/backend/internal/models"
	"github.com/shopspring/decimal"
)

// ProjectEditable represents all user configurable parameters
type ProjectEditable struct {
	Name      string               `json:"name" example:"Harbor Bridge Retrofit" default:""`      // Name of the project
	Note      string               `json:"note" example:"Phase 2 starts in August" default:""`    // Notes about the project
	Budget    *decimal.Decimal     `json:"budget" example:"2500000.00"`                           // Overall monetary baseline, unset means no baseline
	StartDate *time.Time           `json:"startDate" example:"2024-03-01T00:00:00Z"`              // Planned start
	EndDate   *time.Time           `json:"endDate" example:"2024-12-20T00:00:00Z"`                // Planned end
	Status    models.ProjectStatus `json:"status" example:"active" default:"active"`              // Lifecycle state
}

func (editable ProjectEditable) model() models.Project {
	return models.Project{
		Name:      editable.Name,
		Note:      editable.Note,
		Budget:    editable.Budget,
		StartDate: editable.StartDate,
		EndDate:   editable.EndDate,
		Status:    editable.Status,
	}
}

type ProjectLinks struct {
	Self           string `json:"self" example:"https://example.com/v1/projects/3b1ea324-d438-4419-882a-2fc91d71772f"`                      // The project itself
	Members        string `json:"members" example:"https://example.com/v1/projects/3b1ea324-d438-4419-882a-2fc91d71772f/members"`           // Members of this project
	Allocations    string `json:"allocations" example:"https://example.com/v1/allocations?project=3b1ea324-d438-4419-882a-2fc91d71772f"`    // Budget allocations for this project
	Expenses       string `json:"expenses" example:"https://example.com/v1/expenses?project=3b1ea324-d438-4419-882a-2fc91d71772f"`          // Expenses for this project
	Invoices       string `json:"invoices" example:"https://example.com/v1/invoices?project=3b1ea324-d438-4419-882a-2fc91d71772f"`          // Invoices for this project
	Reconciliation string `json:"reconciliation" example:"https://example.com/v1/projects/3b1ea324-d438-4419-882a-2fc91d71772f/reconciliation"` // Budget reconciliation report
	Forecast       string `json:"forecast" example:"https://example.com/v1/projects/3b1ea324-d438-4419-882a-2fc91d71772f/forecast"`         // Spend forecast report
	Risk           string `json:"risk" example:"https://example.com/v1/projects/3b1ea324-d438-4419-882a-2fc91d71772f/risk"`                 // Risk report
}

type Project struct {
	models.DefaultModel
	ProjectEditable
	Links ProjectLinks `json:"links"`
}

func newProject(url string, model models.Project) Project {
	return Project{
		DefaultModel: model.DefaultModel,
		ProjectEditable: ProjectEditable{
			Name:      model.Name,
			Note:      model.Note,
			Budget:    model.Budget,
			StartDate: model.StartDate,
			EndDate:   model.EndDate,
			Status:    model.Status,
		},
		Links: ProjectLinks{
			Self:           fmt.Sprintf("%s/v1/projects/%s", url, model.ID),
			Members:        fmt.Sprintf("%s/v1/projects/%s/members", url, model.ID),
			Allocations:    fmt.Sprintf("%s/v1/allocations?project=%s", url, model.ID),
			Expenses:       fmt.Sprintf("%s/v1/expenses?project=%s", url, model.ID),
			Invoices:       fmt.Sprintf("%s/v1/invoices?project=%s", url, model.ID),
			Reconciliation: fmt.Sprintf("%s/v1/projects/%s/reconciliation", url, model.ID),
			Forecast:       fmt.Sprintf("%s/v1/projects/%s/forecast", url, model.ID),
			Risk:           fmt.Sprintf("%s/v1/projects/%s/risk", url, model.ID),
		},
	}
}

type ProjectListResponse struct {
	Data       []Project   `json:"data"`                                                          // List of Projects
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type ProjectCreateResponse struct {
	Data  []ProjectResponse `json:"data"`                                                          // List of the created Projects or their respective error
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (p *ProjectCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	p.Data = append(p.Data, ProjectResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ProjectResponse struct {
	Data  *Project `json:"data"`                                                          // Data for the Project
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ProjectQueryFilter struct {
	Name   string               `form:"name" filterField:"false"`   // By name
	Note   string               `form:"note" filterField:"false"`   // By note
	Status models.ProjectStatus `form:"status"`                     // By lifecycle state
	Search string               `form:"search" filterField:"false"` // By string in name or note
	Offset uint                 `form:"offset" filterField:"false"` // The offset of the first Project returned. Defaults to 0.
	Limit  int                  `form:"limit" filterField:"false"`  // Maximum number of Projects to return. Defaults to 50.
}

func (f ProjectQueryFilter) model() (models.Project, error) {
	return models.Project{
		Status: f.Status,
	}, nil
}
