package v1

import (
	"net/http"
	"time"

	"github.com/buildsite/backend/internal/httputil"
	"github.com/buildsite/backend/internal/ledger"
	"github.com/buildsite/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// UnlinkedExpense is an expense that matched no allocation group during
// reconciliation.
type UnlinkedExpense struct {
	ID       uuid.UUID       `json:"id" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the expense
	Category string          `json:"category" example:"Scaffolding"`                    // Category the expense was booked under
	Amount   decimal.Decimal `json:"amount" example:"1250.00"`                          // Amount of the expense
	Date     time.Time       `json:"date" example:"2024-03-14T00:00:00Z"`               // Date of the expense
}

// ReconciliationReport matches the spend of a project against its budget
// allocations.
type ReconciliationReport struct {
	Ledgers  []ledger.CategoryLedger `json:"ledgers"`  // Reconciled (project, category) groups
	Unlinked []UnlinkedExpense       `json:"unlinked"` // Expenses that matched no allocation
}

type ReconciliationResponse struct {
	Data  *ReconciliationReport `json:"data"`                                                          // The reconciliation report
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ForecastResponse struct {
	Data  *ledger.Forecast `json:"data"`                                                          // The spend forecast
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RiskReport combines the composite score with the independently tracked
// weather category.
type RiskReport struct {
	Composite ledger.CompositeRisk `json:"composite"` // Aggregated four-factor risk
	Weather   *RiskSample          `json:"weather"`   // Latest active weather sample, omitted when none exists
}

type RiskReportResponse struct {
	Data  *RiskReport `json:"data"`                                                          // The risk report
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type InvoiceSummaryResponse struct {
	Data  *ledger.InvoiceSummary `json:"data"`                                                          // The invoice summary
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RiskReportQuery carries the factor inputs that live in external systems.
// A factor participates in the composite only when at least one of its
// parameters is set, an absent factor is missing data, not zero risk.
type RiskReportQuery struct {
	OverdueRatio      float64 `form:"overdueRatio"`      // Percentage of tasks past their due date, 0-100
	CriticalIncidents int     `form:"criticalIncidents"` // Number of critical safety incidents
	OpenIncidents     int     `form:"openIncidents"`     // Number of open safety incidents
	ExpiredPermits    int     `form:"expiredPermits"`    // Number of expired permits
	FailedInspections int     `form:"failedInspections"` // Number of failed inspections
	PendingPermits    int     `form:"pendingPermits"`    // Number of pending permits
}

// @Summary		Reconciliation report
// @Description	Matches the project's expenses against its budget allocations per category
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	ReconciliationResponse
// @Failure		400	{object}	ReconciliationResponse
// @Failure		404	{object}	ReconciliationResponse
// @Failure		500	{object}	ReconciliationResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/projects/{id}/reconciliation [get]
func GetReconciliationReport(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReconciliationResponse{
			Error: &s,
		})
		return
	}

	var project models.Project
	err = models.DB.First(&project, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReconciliationResponse{
			Error: &s,
		})
		return
	}

	var allocations []models.BudgetAllocation
	err = models.DB.Where(&models.BudgetAllocation{ProjectID: project.ID}).Find(&allocations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReconciliationResponse{
			Error: &s,
		})
		return
	}

	var expenses []models.Expense
	err = models.DB.Where(&models.Expense{ProjectID: project.ID}).Find(&expenses).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReconciliationResponse{
			Error: &s,
		})
		return
	}

	allocationViews := make([]ledger.Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		allocationViews = append(allocationViews, allocation.LedgerView())
	}

	expenseViews := make([]ledger.Expense, 0, len(expenses))
	for _, expense := range expenses {
		expenseViews = append(expenseViews, expense.LedgerView())
	}

	ledgers, unlinked := ledger.Reconcile(allocationViews, expenseViews)

	report := ReconciliationReport{
		Ledgers:  ledgers,
		Unlinked: make([]UnlinkedExpense, 0, len(unlinked)),
	}

	for _, expense := range unlinked {
		report.Unlinked = append(report.Unlinked, UnlinkedExpense{
			ID:       expense.ID,
			Category: expense.Category,
			Amount:   expense.Amount,
			Date:     expense.Date,
		})
	}

	c.JSON(http.StatusOK, ReconciliationResponse{Data: &report})
}

// @Summary		Spend forecast
// @Description	Extrapolates the project's spend to the project end from the observed burn rate
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	ForecastResponse
// @Failure		400	{object}	ForecastResponse
// @Failure		404	{object}	ForecastResponse
// @Failure		500	{object}	ForecastResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/projects/{id}/forecast [get]
func GetForecastReport(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ForecastResponse{
			Error: &s,
		})
		return
	}

	var project models.Project
	err = models.DB.First(&project, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ForecastResponse{
			Error: &s,
		})
		return
	}

	totalSpent, err := projectSpend(project.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ForecastResponse{
			Error: &s,
		})
		return
	}

	start, end, budget := project.Plan()
	forecast := ledger.ForecastSpend(time.Now().In(time.UTC), start, end, budget, totalSpent)

	c.JSON(http.StatusOK, ForecastResponse{Data: &forecast})
}

// @Summary		Risk report
// @Description	Aggregates the project's risk factors into a composite score. The budget factor is derived from the stored financials, the schedule, safety and compliance inputs are passed by the systems that track them. Weather risk is reported as its own category and is never folded into the composite.
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	RiskReportResponse
// @Failure		400	{object}	RiskReportResponse
// @Failure		404	{object}	RiskReportResponse
// @Failure		500	{object}	RiskReportResponse
// @Param			id					path	URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			overdueRatio		query	number	false	"Percentage of tasks past their due date, 0-100"
// @Param			criticalIncidents	query	int		false	"Number of critical safety incidents"
// @Param			openIncidents		query	int		false	"Number of open safety incidents"
// @Param			expiredPermits		query	int		false	"Number of expired permits"
// @Param			failedInspections	query	int		false	"Number of failed inspections"
// @Param			pendingPermits		query	int		false	"Number of pending permits"
// @Router			/v1/projects/{id}/risk [get]
func GetRiskReport(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskReportResponse{
			Error: &s,
		})
		return
	}

	var project models.Project
	err = models.DB.First(&project, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskReportResponse{
			Error: &s,
		})
		return
	}

	var query RiskReportQuery

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&query)

	_, setFields := httputil.GetURLFields(c.Request.URL, query)

	factors := ledger.RiskFactors{}

	usage, err := budgetUsagePercent(project.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskReportResponse{
			Error: &s,
		})
		return
	}
	factors.BudgetUsagePercent = usage

	if slices.Contains(setFields, "OverdueRatio") {
		factors.Schedule = &ledger.ScheduleRisk{
			OverdueRatioPercent: decimal.NewFromFloat(query.OverdueRatio),
		}
	}

	if slices.Contains(setFields, "CriticalIncidents") || slices.Contains(setFields, "OpenIncidents") {
		factors.Safety = &ledger.SafetyRisk{
			CriticalIncidents: query.CriticalIncidents,
			OpenIncidents:     query.OpenIncidents,
		}
	}

	if slices.Contains(setFields, "ExpiredPermits") || slices.Contains(setFields, "FailedInspections") || slices.Contains(setFields, "PendingPermits") {
		factors.Compliance = &ledger.ComplianceRisk{
			ExpiredPermits:    query.ExpiredPermits,
			FailedInspections: query.FailedInspections,
			PendingPermits:    query.PendingPermits,
		}
	}

	report := RiskReport{
		Composite: ledger.ComputeCompositeRisk(factors),
	}

	weather, err := models.LatestWeatherSample(models.DB, project.ID, time.Now().In(time.UTC))
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RiskReportResponse{
			Error: &s,
		})
		return
	}

	if weather != nil {
		sample := newRiskSample(c.GetString(string(models.DBContextURL)), *weather)
		report.Weather = &sample
	}

	c.JSON(http.StatusOK, RiskReportResponse{Data: &report})
}

// @Summary		Invoice summary
// @Description	Aggregates the project's invoice totals. Pending uses the inclusive definition, drafts count alongside sent invoices.
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	InvoiceSummaryResponse
// @Failure		400	{object}	InvoiceSummaryResponse
// @Failure		404	{object}	InvoiceSummaryResponse
// @Failure		500	{object}	InvoiceSummaryResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/projects/{id}/invoices/summary [get]
func GetInvoiceSummaryReport(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceSummaryResponse{
			Error: &s,
		})
		return
	}

	var project models.Project
	err = models.DB.First(&project, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceSummaryResponse{
			Error: &s,
		})
		return
	}

	var invoices []models.Invoice
	err = models.DB.Where(&models.Invoice{ProjectID: project.ID}).Find(&invoices).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceSummaryResponse{
			Error: &s,
		})
		return
	}

	views := make([]ledger.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		views = append(views, invoice.LedgerView())
	}

	summary := ledger.SummarizeInvoices(time.Now().In(time.UTC), views)
	c.JSON(http.StatusOK, InvoiceSummaryResponse{Data: &summary})
}

// projectSpend sums all expenses of the project regardless of their
// approval status.
func projectSpend(projectID uuid.UUID) (decimal.Decimal, error) {
	var expenses []models.Expense
	err := models.DB.Where(&models.Expense{ProjectID: projectID}).Find(&expenses).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, expense := range expenses {
		total = total.Add(expense.Amount)
	}

	return total, nil
}

// budgetUsagePercent derives the budget factor input from the stored
// financials. It is nil when nothing is budgeted since a percentage of zero
// is not meaningful, the factor is then absent from the composite.
func budgetUsagePercent(projectID uuid.UUID) (*decimal.Decimal, error) {
	var allocations []models.BudgetAllocation
	err := models.DB.Where(&models.BudgetAllocation{ProjectID: projectID}).Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	budgeted := decimal.Zero
	for _, allocation := range allocations {
		budgeted = budgeted.Add(allocation.BudgetedAmount)
	}

	if !budgeted.IsPositive() {
		return nil, nil
	}

	spent, err := projectSpend(projectID)
	if err != nil {
		return nil, err
	}

	usage := spent.Div(budgeted).Mul(decimal.NewFromInt(100))
	return &usage, nil
}
