package models_test

import (
	"strings"
	"time"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/buildsite/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestInvoiceTotalsAreDerived() {
	project := suite.createTestProject(models.Project{})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(1000),
		TaxRate:   decimal.NewFromInt(13),
		// Caller-set totals are ignored and recomputed
		TaxAmount:   decimal.NewFromInt(9999),
		TotalAmount: decimal.NewFromInt(9999),
	})

	suite.Assert().True(invoice.TaxAmount.Equal(decimal.NewFromInt(130)), "tax is %s", invoice.TaxAmount)
	suite.Assert().True(invoice.TotalAmount.Equal(decimal.NewFromInt(1130)), "total is %s", invoice.TotalAmount)
	suite.Assert().Equal(ledger.InvoiceDraft, invoice.Status)
}

func (suite *TestSuiteStandard) TestInvoiceNumberGenerated() {
	project := suite.createTestProject(models.Project{Name: "River Tower"})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(500),
	})

	suite.Assert().True(strings.HasPrefix(invoice.InvoiceNumber, "INV-RIV-"), "invoice number is %s", invoice.InvoiceNumber)
}

func (suite *TestSuiteStandard) TestInvoiceNumberKept() {
	project := suite.createTestProject(models.Project{})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID:     project.ID,
		InvoiceNumber: "INV-CUSTOM-000001",
		Amount:        decimal.NewFromInt(500),
	})

	suite.Assert().Equal("INV-CUSTOM-000001", invoice.InvoiceNumber)
}

func (suite *TestSuiteStandard) TestInvoiceNumberUniquePerProject() {
	project := suite.createTestProject(models.Project{})

	_ = suite.createTestInvoice(models.Invoice{
		ProjectID:     project.ID,
		InvoiceNumber: "INV-DUP-000001",
		Amount:        decimal.NewFromInt(500),
	})

	err := models.DB.Create(&models.Invoice{
		ProjectID:     project.ID,
		InvoiceNumber: "INV-DUP-000001",
		ClientName:    "Test Client",
		Amount:        decimal.NewFromInt(700),
	}).Error

	suite.Assert().ErrorIs(err, models.ErrInvoiceNumberNotUnique)
}

func (suite *TestSuiteStandard) TestInvoiceRequiresClientName() {
	project := suite.createTestProject(models.Project{})

	err := models.DB.Create(&models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(500),
	}).Error

	suite.Assert().ErrorIs(err, models.ErrNameRequired)
}

func (suite *TestSuiteStandard) TestInvoiceMarkSent() {
	project := suite.createTestProject(models.Project{})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(500),
	})

	suite.Require().NoError(invoice.MarkSent(models.DB))
	suite.Assert().Equal(ledger.InvoiceSent, invoice.Status)

	// Sending twice is a no-op
	suite.Require().NoError(invoice.MarkSent(models.DB))

	var reloaded models.Invoice
	suite.Require().NoError(models.DB.First(&reloaded, invoice.ID).Error)
	suite.Assert().Equal(ledger.InvoiceSent, reloaded.Status)
}

func (suite *TestSuiteStandard) TestInvoiceMarkSentAfterPaid() {
	project := suite.createTestProject(models.Project{})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(500),
	})

	suite.Require().NoError(invoice.MarkPaid(models.DB, time.Time{}))

	err := invoice.MarkSent(models.DB)
	suite.Assert().ErrorIs(err, models.ErrInvoiceAlreadyPaid)
}

func (suite *TestSuiteStandard) TestInvoiceMarkPaidFromDraft() {
	project := suite.createTestProject(models.Project{})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(500),
	})

	paidDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(invoice.MarkPaid(models.DB, paidDate))

	var reloaded models.Invoice
	suite.Require().NoError(models.DB.First(&reloaded, invoice.ID).Error)
	suite.Assert().Equal(ledger.InvoicePaid, reloaded.Status)
	suite.Require().NotNil(reloaded.PaidDate)
	suite.Assert().True(reloaded.PaidDate.Equal(paidDate))
}

func (suite *TestSuiteStandard) TestInvoiceMarkPaidIdempotent() {
	project := suite.createTestProject(models.Project{})

	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(500),
	})

	first := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(invoice.MarkPaid(models.DB, first))

	// Paying again keeps the original payment date
	suite.Require().NoError(invoice.MarkPaid(models.DB, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))

	var reloaded models.Invoice
	suite.Require().NoError(models.DB.First(&reloaded, invoice.ID).Error)
	suite.Require().NotNil(reloaded.PaidDate)
	suite.Assert().True(reloaded.PaidDate.Equal(first))
}

func (suite *TestSuiteStandard) TestInvoiceLedgerView() {
	project := suite.createTestProject(models.Project{})

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	invoice := suite.createTestInvoice(models.Invoice{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(1000),
		TaxRate:   decimal.NewFromInt(13),
		DueDate:   &due,
	})

	view := invoice.LedgerView()
	suite.Assert().True(view.Total.Equal(decimal.NewFromInt(1130)))
	suite.Assert().True(view.DueDate.Equal(due))
	suite.Assert().True(view.Overdue(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}
