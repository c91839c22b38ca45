package v1_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "github.com/buildsite/backend/internal/controllers/v1"
	"github.com/buildsite/backend/internal/models"
	"github.com/buildsite/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestRiskSamplesCreate() {
	s := createTestRiskSample(suite.T(), v1.RiskSampleEditable{
		RiskType: "safety",
		Score:    80,
		Factors: []models.RiskFactor{
			{Name: "fall-protection", Detail: "Two open incidents at the crane pad"},
		},
		Active: true,
	})

	assert.Equal(suite.T(), "critical", string(s.Data.Severity), "severity is not derived from the score")
	assert.True(suite.T(), s.Data.Active)
	require.Len(suite.T(), s.Data.Factors, 1)
	assert.Equal(suite.T(), "fall-protection", s.Data.Factors[0].Name)
}

func (suite *TestSuiteStandard) TestRiskSamplesCreateFails() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Score too high", []v1.RiskSampleEditable{{ProjectID: project.Data.ID, RiskType: "safety", Score: 101}}, http.StatusBadRequest},
		{"No risk type", []v1.RiskSampleEditable{{ProjectID: project.Data.ID}}, http.StatusBadRequest},
		{"Non-existing project", []v1.RiskSampleEditable{{ProjectID: uuid.New(), RiskType: "safety"}}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/risk-samples", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestRiskSamplesGetFilter() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	_ = createTestRiskSample(suite.T(), v1.RiskSampleEditable{ProjectID: project.Data.ID, RiskType: "weather", Active: true})
	_ = createTestRiskSample(suite.T(), v1.RiskSampleEditable{ProjectID: project.Data.ID, RiskType: "safety", Active: true})
	_ = createTestRiskSample(suite.T(), v1.RiskSampleEditable{ProjectID: project.Data.ID, RiskType: "safety"})
	_ = createTestRiskSample(suite.T(), v1.RiskSampleEditable{RiskType: "weather", Active: true})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Project", fmt.Sprintf("project=%s", project.Data.ID), 3},
		{"Risk type", fmt.Sprintf("project=%s&riskType=weather", project.Data.ID), 1},
		{"Active", fmt.Sprintf("project=%s&active=true", project.Data.ID), 2},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var re v1.RiskSampleListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/risk-samples?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &re)

			assert.Equal(t, tt.len, len(re.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestRiskSamplesDismiss() {
	s := createTestRiskSample(suite.T(), v1.RiskSampleEditable{Active: true})

	r := test.Request(suite.T(), http.MethodPatch, s.Data.Links.Self, map[string]any{"active": false})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var dismissed v1.RiskSampleResponse
	test.DecodeResponse(suite.T(), &r, &dismissed)
	assert.False(suite.T(), dismissed.Data.Active)

	// Everything but the active flag is untouched
	assert.Equal(suite.T(), s.Data.Score, dismissed.Data.Score)
	assert.Equal(suite.T(), s.Data.RiskType, dismissed.Data.RiskType)
}

func (suite *TestSuiteStandard) TestRiskSamplesDelete() {
	s := createTestRiskSample(suite.T(), v1.RiskSampleEditable{})

	r := test.Request(suite.T(), http.MethodDelete, s.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, s.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestRiskAnalyze() {
	validUntil := time.Now().In(time.UTC).Add(48 * time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(suite.T(), "/analyze", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"riskType": "weather",
			"score": 70,
			"factors": [{"name": "storm-front", "detail": "Gale warning for Thursday"}],
			"validUntil": %q
		}`, validUntil.Format(time.RFC3339))
	}))
	defer server.Close()

	suite.T().Setenv("ANALYSIS_URL", server.URL)

	project := createTestProject(suite.T(), v1.ProjectEditable{})

	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/projects/%s/risk/analyze", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.RiskSampleResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "weather", response.Data.RiskType)
	assert.Equal(suite.T(), 70, response.Data.Score)
	assert.Equal(suite.T(), "high", string(response.Data.Severity))
	assert.True(suite.T(), response.Data.Active, "analysis results must be stored as active samples")
	require.Len(suite.T(), response.Data.Factors, 1)
	assert.Equal(suite.T(), "storm-front", response.Data.Factors[0].Name)

	// The sample is persisted
	var list v1.RiskSampleListResponse
	listRecorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/risk-samples?project=%s", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &listRecorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &listRecorder, &list)
	assert.Len(suite.T(), list.Data, 1)
}

func (suite *TestSuiteStandard) TestRiskAnalyzeNotConfigured() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/projects/%s/risk/analyze", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestRiskAnalyzeServiceDown() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	suite.T().Setenv("ANALYSIS_URL", server.URL)

	project := createTestProject(suite.T(), v1.ProjectEditable{})

	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/projects/%s/risk/analyze", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadGateway)

	// A failed analysis must not create a sample
	var list v1.RiskSampleListResponse
	listRecorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/risk-samples?project=%s", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &listRecorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &listRecorder, &list)
	assert.Len(suite.T(), list.Data, 0)
}
