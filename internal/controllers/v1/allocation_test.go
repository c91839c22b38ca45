package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/buildsite/backend/internal/controllers/v1"
	"github.com/buildsite/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAllocationsCreate() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	a := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:      project.Data.ID,
		Category:       "Concrete",
		BudgetedAmount: decimal.NewFromInt(120000),
		Notes:          "Includes rebar",
	})

	assert.Equal(suite.T(), "Concrete", a.Data.Category)
	assert.True(suite.T(), a.Data.BudgetedAmount.Equal(decimal.NewFromInt(120000)))
}

func (suite *TestSuiteStandard) TestAllocationsCreateFails() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string // expected error of the first allocation, empty to skip
	}{
		{
			"No category",
			[]v1.AllocationEditable{{ProjectID: project.Data.ID}},
			http.StatusBadRequest,
			"a category must be set",
		},
		{
			"Negative amount",
			[]v1.AllocationEditable{{ProjectID: project.Data.ID, Category: "Concrete", BudgetedAmount: decimal.NewFromInt(-1)}},
			http.StatusBadRequest,
			"amounts must not be negative",
		},
		{
			"Non-existing project",
			[]v1.AllocationEditable{{ProjectID: uuid.New(), Category: "Concrete"}},
			http.StatusNotFound,
			"",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.errMsg != "" {
				var response v1.AllocationCreateResponse
				test.DecodeResponse(t, &r, &response)
				require.Len(t, response.Data, 1)
				assert.Equal(t, tt.errMsg, *response.Data[0].Error)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsGetFilter() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	other := createTestProject(suite.T(), v1.ProjectEditable{})

	_ = createTestAllocation(suite.T(), v1.AllocationEditable{ProjectID: project.Data.ID, Category: "Concrete"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{ProjectID: project.Data.ID, Category: "Electrical"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{ProjectID: other.Data.ID, Category: "Concrete"})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Project", fmt.Sprintf("project=%s", project.Data.ID), 2},
		{"Project and category", fmt.Sprintf("project=%s&category=Concrete", project.Data.ID), 1},
		{"Category", "category=Concrete", 2},
		{"Category case-sensitive", "category=concrete", 0},
		{"Non-existing project", fmt.Sprintf("project=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var re v1.AllocationListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/allocations?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &re)

			assert.Equal(t, tt.len, len(re.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsUpdate() {
	a := createTestAllocation(suite.T(), v1.AllocationEditable{Category: "Concrete"})

	r := test.Request(suite.T(), http.MethodPatch, a.Data.Links.Self, map[string]any{
		"budgetedAmount": "98000",
		"notes":          "Revised after tender",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.AllocationResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	assert.True(suite.T(), updated.Data.BudgetedAmount.Equal(decimal.NewFromInt(98000)))
	assert.Equal(suite.T(), "Revised after tender", updated.Data.Notes)
}

func (suite *TestSuiteStandard) TestAllocationsDelete() {
	a := createTestAllocation(suite.T(), v1.AllocationEditable{})

	r := test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
