package models_test

import (
	"time"

	"github.com/buildsite/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestProjectDefaults() {
	project := suite.createTestProject(models.Project{Name: "  Harbor Bridge  "})

	suite.Assert().Equal("Harbor Bridge", project.Name)
	suite.Assert().Equal(models.ProjectActive, project.Status)
	suite.Assert().Nil(project.Budget)
}

func (suite *TestSuiteStandard) TestProjectNameRequired() {
	err := models.DB.Create(&models.Project{Name: "   "}).Error
	suite.Assert().ErrorIs(err, models.ErrNameRequired)
}

func (suite *TestSuiteStandard) TestProjectNameUnique() {
	_ = suite.createTestProject(models.Project{Name: "Harbor Bridge"})

	err := models.DB.Create(&models.Project{Name: "Harbor Bridge"}).Error
	suite.Assert().Error(err)
}

func (suite *TestSuiteStandard) TestProjectNegativeBudget() {
	budget := decimal.NewFromInt(-1)
	err := models.DB.Create(&models.Project{Name: "Harbor Bridge", Budget: &budget}).Error
	suite.Assert().ErrorIs(err, models.ErrAmountNegative)
}

func (suite *TestSuiteStandard) TestProjectPlanDefaults() {
	project := suite.createTestProject(models.Project{})

	start, end, budget := project.Plan()
	suite.Assert().Equal(project.CreatedAt, start, "start must fall back to the creation time")
	suite.Assert().True(end.IsZero(), "end must stay zero when unset")
	suite.Assert().True(budget.IsZero())
}

func (suite *TestSuiteStandard) TestProjectPlanExplicit() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(250000)

	project := suite.createTestProject(models.Project{
		StartDate: &start,
		EndDate:   &end,
		Budget:    &amount,
	})

	gotStart, gotEnd, gotBudget := project.Plan()
	suite.Assert().True(gotStart.Equal(start))
	suite.Assert().True(gotEnd.Equal(end))
	suite.Assert().True(gotBudget.Equal(amount))
}
