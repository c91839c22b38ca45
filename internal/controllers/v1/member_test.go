package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/buildsite/backend/internal/controllers/v1"
	"github.com/buildsite/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestMembersCreate() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	userID := uuid.New()

	m := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{
		UserID: userID,
		Role:   "admin",
	})

	assert.Equal(suite.T(), userID, m.Data.UserID)
	assert.Equal(suite.T(), "admin", string(m.Data.Role))
	assert.Equal(suite.T(), project.Data.ID, m.Data.ProjectID)
}

func (suite *TestSuiteStandard) TestMembersRoleDefaultsToViewer() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})

	m := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})
	assert.Equal(suite.T(), "viewer", string(m.Data.Role))
}

func (suite *TestSuiteStandard) TestMembersCreateFails() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	existing := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})

	tests := []struct {
		name      string
		projectID string
		body      any
		status    int
		errMsg    string // expected error of the first member, empty to skip
	}{
		{
			"Invalid role",
			project.Data.ID.String(),
			[]v1.MemberEditable{{UserID: uuid.New(), Role: "supervisor"}},
			http.StatusBadRequest,
			"the role must be one of owner, admin, member, viewer",
		},
		{
			"Duplicate membership",
			project.Data.ID.String(),
			[]v1.MemberEditable{{UserID: existing.Data.UserID}},
			http.StatusBadRequest,
			"this user is already a member of the project",
		},
		{
			"Non-existing project",
			uuid.New().String(),
			[]v1.MemberEditable{{UserID: uuid.New()}},
			http.StatusNotFound,
			"",
		},
		{
			"No body",
			project.Data.ID.String(),
			"",
			http.StatusBadRequest,
			"",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/projects/%s/members", tt.projectID), tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.errMsg != "" {
				var response v1.MemberCreateResponse
				test.DecodeResponse(t, &r, &response)
				require.Len(t, response.Data, 1)
				assert.Equal(t, tt.errMsg, *response.Data[0].Error)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestMembersGetForProject() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	other := createTestProject(suite.T(), v1.ProjectEditable{})

	_ = createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{Role: "owner"})
	_ = createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})
	_ = createTestMember(suite.T(), other.Data.ID, v1.MemberEditable{})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/members", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var members v1.MemberListResponse
	test.DecodeResponse(suite.T(), &r, &members)

	require.Len(suite.T(), members.Data, 2, "Member list has wrong length")
	assert.Equal(suite.T(), "owner", string(members.Data[0].Role), "members are not sorted by creation")
}

func (suite *TestSuiteStandard) TestMembersGetSingle() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	m := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing Member", m.Data.ID.String(), http.StatusOK},
		{"No Member with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/members/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestMembersUpdateRole() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	m := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})

	r := test.Request(suite.T(), http.MethodPatch, m.Data.Links.Self, map[string]any{"role": "member"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.MemberResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	assert.Equal(suite.T(), "member", string(updated.Data.Role))
	assert.Equal(suite.T(), m.Data.UserID, updated.Data.UserID, "user must not change on update")
}

func (suite *TestSuiteStandard) TestMembersUpdateInvalidRole() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	m := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})

	r := test.Request(suite.T(), http.MethodPatch, m.Data.Links.Self, map[string]any{"role": "supervisor"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMembersDelete() {
	project := createTestProject(suite.T(), v1.ProjectEditable{})
	m := createTestMember(suite.T(), project.Data.ID, v1.MemberEditable{})

	r := test.Request(suite.T(), http.MethodDelete, m.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, m.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
