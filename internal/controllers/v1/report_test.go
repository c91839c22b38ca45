package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/buildsite/backend/internal/controllers/v1"
	"github.com/buildsite/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestReconciliationReport() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:      project.Data.ID,
		Category:       "Concrete",
		BudgetedAmount: decimal.NewFromInt(1000),
	})

	// Two expenses in the allocated category, one of them rejected later,
	// one expense without a matching allocation
	_ = createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Concrete", Amount: decimal.NewFromInt(600)})
	rejected := createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Concrete", Amount: decimal.NewFromInt(350)})
	unlinked := createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Scaffolding", Amount: decimal.NewFromInt(99)})

	// Rejection gates the audit trail, not the running total: the rejected
	// expense still counts toward spent
	owner := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{Role: "owner"})
	r := test.Request(suite.T(), http.MethodPost, rejected.Data.Links.Self+"/reject", "", decisionHeaders(owner.Data.UserID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/reconciliation", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ReconciliationResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data.Ledgers, 1)
	group := response.Data.Ledgers[0]

	assert.Equal(suite.T(), "Concrete", group.Category)
	assert.True(suite.T(), group.Spent.Equal(decimal.NewFromInt(950)))
	assert.True(suite.T(), group.Remaining.Equal(decimal.NewFromInt(50)))
	assert.Equal(suite.T(), 2, group.Expenses)
	assert.Equal(suite.T(), "critical", string(group.Status), "95% usage must be critical")
	require.NotNil(suite.T(), group.Percent)
	assert.True(suite.T(), group.Percent.Equal(decimal.NewFromInt(95)))

	require.Len(suite.T(), response.Data.Unlinked, 1)
	assert.Equal(suite.T(), unlinked.Data.ID, response.Data.Unlinked[0].ID)
	assert.Equal(suite.T(), "Scaffolding", response.Data.Unlinked[0].Category)
}

func (suite *TestSuiteStandard) TestReconciliationReportZeroBudget() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID: project.Data.ID,
		Category:  "Concrete",
	})

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Concrete", Amount: decimal.NewFromInt(10)})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/reconciliation", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ReconciliationResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data.Ledgers, 1)
	assert.Equal(suite.T(), "undefined", string(response.Data.Ledgers[0].Status))
	assert.Nil(suite.T(), response.Data.Ledgers[0].Percent, "percent must not be reported for a zero budget")
}

func (suite *TestSuiteStandard) TestForecastReport() {
	budget := decimal.NewFromInt(10000)
	start := time.Now().In(time.UTC).Add(-10 * 24 * time.Hour)
	end := time.Now().In(time.UTC).Add(90 * 24 * time.Hour)

	project := createTestProject(suite.T(), v1.ProjectEditable{
		Budget:    &budget,
		StartDate: &start,
		EndDate:   &end,
	})

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Concrete", Amount: decimal.NewFromInt(5000)})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/forecast", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ForecastResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.TotalSpent.Equal(decimal.NewFromInt(5000)))
	assert.Equal(suite.T(), int64(10), response.Data.DaysPassed)

	// 500/day over ~99 remaining days projects far over the 10k budget
	assert.Equal(suite.T(), "over-budget", string(response.Data.Status))
	assert.True(suite.T(), response.Data.ProjectedTotal.GreaterThan(budget))
}

func (suite *TestSuiteStandard) TestForecastReportNoSpend() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/forecast", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ForecastResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.TotalSpent.IsZero())
	assert.True(suite.T(), response.Data.DailyRate.IsZero())
}

func (suite *TestSuiteStandard) TestRiskReport() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	// 95% budget usage -> 20 points
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:      project.Data.ID,
		Category:       "Concrete",
		BudgetedAmount: decimal.NewFromInt(1000),
	})
	_ = createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Concrete", Amount: decimal.NewFromInt(950)})

	// An active weather sample that must show up as its own category
	_ = createTestRiskSample(suite.T(), v1.RiskSampleEditable{
		ProjectID: project.Data.ID,
		RiskType:  "weather",
		Score:     70,
		Active:    true,
	})

	// Critical incident -> 25 points for safety. Composite is the average
	// over present factors: (20 + 25) / 2 -> 23, severity low.
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/projects/%s/risk?criticalIncidents=1", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RiskReportResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.Equal(suite.T(), 23, response.Data.Composite.Score)
	assert.Equal(suite.T(), "low", string(response.Data.Composite.Severity))
	require.Len(suite.T(), response.Data.Composite.Factors, 2)

	require.NotNil(suite.T(), response.Data.Weather, "the weather sample must be reported")
	assert.Equal(suite.T(), 70, response.Data.Weather.Score)
	assert.Equal(suite.T(), "weather", response.Data.Weather.RiskType)

	// Weather is never part of the composite
	for _, factor := range response.Data.Composite.Factors {
		assert.NotEqual(suite.T(), "weather", factor.Factor)
	}
}

func (suite *TestSuiteStandard) TestRiskReportAllFactors() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:      project.Data.ID,
		Category:       "Concrete",
		BudgetedAmount: decimal.NewFromInt(1000),
	})
	_ = createTestExpense(suite.T(), v1.ExpenseEditable{ProjectID: project.Data.ID, Category: "Concrete", Amount: decimal.NewFromInt(1100)})

	// budget > 100% -> 25, overdue 35% -> 25, critical incident -> 25,
	// expired permit -> 25. Average: 25, severity medium.
	query := "overdueRatio=35&criticalIncidents=1&expiredPermits=1"
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/projects/%s/risk?%s", project.Data.ID, query), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RiskReportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), 25, response.Data.Composite.Score)
	assert.Equal(suite.T(), "medium", string(response.Data.Composite.Severity))
	require.Len(suite.T(), response.Data.Composite.Factors, 4)
	assert.Nil(suite.T(), response.Data.Weather)
}

func (suite *TestSuiteStandard) TestRiskReportNoData() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/projects/%s/risk", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RiskReportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), 0, response.Data.Composite.Score)
	assert.Equal(suite.T(), "low", string(response.Data.Composite.Severity))
	assert.Empty(suite.T(), response.Data.Composite.Factors)
}

func (suite *TestSuiteStandard) TestRiskReportDismissedWeather() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	sample := createTestRiskSample(suite.T(), v1.RiskSampleEditable{
		ProjectID: project.Data.ID,
		RiskType:  "weather",
		Score:     70,
		Active:    true,
	})

	r := test.Request(suite.T(), http.MethodPatch, sample.Data.Links.Self, map[string]any{"active": false})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/projects/%s/risk", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RiskReportResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Nil(suite.T(), response.Data.Weather, "dismissed samples must not be reported")
}

func (suite *TestSuiteStandard) TestInvoiceSummaryReport() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	// 1000 + 13% = 1130, paid
	paid := createTestInvoice(suite.T(), v1.InvoiceEditable{
		ProjectID: project.Data.ID,
		Amount:    decimal.NewFromInt(1000),
		TaxRate:   decimal.NewFromInt(13),
	})
	r := test.Request(suite.T(), http.MethodPost, paid.Data.Links.Pay, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// 500, sent and overdue
	due := time.Now().In(time.UTC).Add(-24 * time.Hour)
	sent := createTestInvoice(suite.T(), v1.InvoiceEditable{
		ProjectID: project.Data.ID,
		Amount:    decimal.NewFromInt(500),
		DueDate:   &due,
	})
	r = test.Request(suite.T(), http.MethodPost, sent.Data.Links.Send, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// 200, draft. Drafts count as pending.
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{
		ProjectID: project.Data.ID,
		Amount:    decimal.NewFromInt(200),
	})

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/invoices/summary", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.InvoiceSummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.True(suite.T(), response.Data.TotalInvoiced.Equal(decimal.NewFromInt(1830)))
	assert.True(suite.T(), response.Data.TotalPaid.Equal(decimal.NewFromInt(1130)))
	assert.True(suite.T(), response.Data.TotalPending.Equal(decimal.NewFromInt(700)))
	assert.True(suite.T(), response.Data.TotalOverdue.Equal(decimal.NewFromInt(500)))
	assert.Equal(suite.T(), 1, response.Data.OverdueCount)

	assert.Equal(suite.T(), "1,830.00", response.Data.Display.TotalInvoiced)
	assert.Equal(suite.T(), "700.00", response.Data.Display.TotalPending)
}

func (suite *TestSuiteStandard) TestReportsNotFound() {
	paths := []string{"reconciliation", "forecast", "risk", "invoices/summary"}

	for _, path := range paths {
		suite.T().Run(path, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/%s", uuid.New(), path), "")
			test.AssertHTTPStatus(t, &r, http.StatusNotFound)
		})
	}
}
