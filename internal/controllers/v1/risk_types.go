package v1

import (
	"fmt"
	"time"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/buildsite/backend/internal/models"
	ez_uuid "github.com/buildsite/backend/internal/uuid"
	"github.com/google/uuid"
)

// RiskSampleEditable represents all user configurable parameters
type RiskSampleEditable struct {
	ProjectID  uuid.UUID           `json:"projectId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the project the sample belongs to
	RiskType   string              `json:"riskType" example:"weather" default:""`                    // Risk category of the sample
	Score      int                 `json:"score" example:"70" default:"0"`                           // Risk score between 0 and 100
	Factors    []models.RiskFactor `json:"factors"`                                                  // Structured findings backing the score
	ValidUntil *time.Time          `json:"validUntil" example:"2024-04-10T00:00:00Z"`                // Expiry of the sample, unset means it does not expire
	Active     bool                `json:"active" example:"true" default:"false"`                    // Whether the sample is active, dismissals set this to false
}

func (editable RiskSampleEditable) model() models.RiskSample {
	return models.RiskSample{
		ProjectID:  editable.ProjectID,
		RiskType:   editable.RiskType,
		Score:      editable.Score,
		Factors:    editable.Factors,
		ValidUntil: editable.ValidUntil,
		Active:     editable.Active,
	}
}

type RiskSampleLinks struct {
	Self    string `json:"self" example:"https://example.com/v1/risk-samples/3b1ea324-d438-4419-882a-2fc91d71772f"` // The sample itself
	Project string `json:"project" example:"https://example.com/v1/projects/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`  // The project the sample belongs to
}

type RiskSample struct {
	models.DefaultModel
	RiskSampleEditable
	Severity ledger.Severity `json:"severity" example:"high"` // Severity bucket derived from the score
	Links    RiskSampleLinks `json:"links"`
}

func newRiskSample(url string, model models.RiskSample) RiskSample {
	return RiskSample{
		DefaultModel: model.DefaultModel,
		RiskSampleEditable: RiskSampleEditable{
			ProjectID:  model.ProjectID,
			RiskType:   model.RiskType,
			Score:      model.Score,
			Factors:    model.Factors,
			ValidUntil: model.ValidUntil,
			Active:     model.Active,
		},
		Severity: model.Severity,
		Links: RiskSampleLinks{
			Self:    fmt.Sprintf("%s/v1/risk-samples/%s", url, model.ID),
			Project: fmt.Sprintf("%s/v1/projects/%s", url, model.ProjectID),
		},
	}
}

type RiskSampleListResponse struct {
	Data       []RiskSample `json:"data"`                                                          // List of RiskSamples
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type RiskSampleCreateResponse struct {
	Data  []RiskSampleResponse `json:"data"`                                                          // List of the created RiskSamples or their respective error
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (r *RiskSampleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, RiskSampleResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type RiskSampleResponse struct {
	Data  *RiskSample `json:"data"`                                                          // Data for the RiskSample
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RiskSampleUpdate is the set of fields that may be changed on an existing
// sample. Samples are immutable except for dismissal.
type RiskSampleUpdate struct {
	Active bool `json:"active" example:"false"` // Set to false to dismiss the sample
}

type RiskSampleQueryFilter struct {
	ProjectID ez_uuid.UUID `form:"project"`                    // By ID of the project
	RiskType  string       `form:"riskType"`                   // By risk category
	Active    bool         `form:"active"`                     // By active state
	Offset    uint         `form:"offset" filterField:"false"` // The offset of the first RiskSample returned. Defaults to 0.
	Limit     int          `form:"limit" filterField:"false"`  // Maximum number of RiskSamples to return. Defaults to 50.
}

func (f RiskSampleQueryFilter) model() (models.RiskSample, error) {
	return models.RiskSample{
		ProjectID: f.ProjectID.UUID,
		RiskType:  f.RiskType,
		Active:    f.Active,
	}, nil
}
