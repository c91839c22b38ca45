package v1_test

import (
	"net/http"
	"testing"

	"github.com/buildsite/backend/internal/router"
	"github.com/buildsite/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestGetRoot() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response router.RootResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "http://example.com/v1", response.Links.V1)
	assert.Equal(suite.T(), "http://example.com/version", response.Links.Version)
	assert.Equal(suite.T(), "http://example.com/healthz", response.Links.Healthz)
}

func (suite *TestSuiteStandard) TestGetV1() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response router.V1Response
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "http://example.com/v1/projects", response.Links.Projects)
	assert.Equal(suite.T(), "http://example.com/v1/risk-samples", response.Links.RiskSamples)
}

func (suite *TestSuiteStandard) TestGetVersion() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/version", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response router.VersionResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "0.0.0", response.Data.Version)
}

func (suite *TestSuiteStandard) TestGetHealth() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/healthz", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestGetHealthDBClosed() {
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/healthz", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusServiceUnavailable)
}

func (suite *TestSuiteStandard) TestOptions() {
	tests := []struct {
		path  string
		allow string
	}{
		{"http://example.com/", "OPTIONS, GET"},
		{"http://example.com/version", "OPTIONS, GET"},
		{"http://example.com/healthz", "OPTIONS, GET"},
		{"http://example.com/v1", "OPTIONS, GET"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.path, func(t *testing.T) {
			r := test.Request(t, http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestMethodNotAllowed() {
	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/version", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusMethodNotAllowed)
}
