package v1

import (
	"fmt"

	"github.com/buildsite/backend/internal/models"
	"github.com/google/uuid"
)

// MemberEditable represents all user configurable parameters
type MemberEditable struct {
	UserID uuid.UUID   `json:"userId" example:"d7114b38-bbe1-4b2f-b8bd-0cbb7d12a543"` // ID of the user the membership is for
	Role   models.Role `json:"role" example:"admin" default:"viewer"`                 // Role of the user within the project
}

func (editable MemberEditable) model(projectID uuid.UUID) models.ProjectMember {
	return models.ProjectMember{
		ProjectID: projectID,
		UserID:    editable.UserID,
		Role:      editable.Role,
	}
}

type MemberLinks struct {
	Self    string `json:"self" example:"https://example.com/v1/members/3b1ea324-d438-4419-882a-2fc91d71772f"`     // The membership itself
	Project string `json:"project" example:"https://example.com/v1/projects/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // The project the membership belongs to
}

type Member struct {
	models.DefaultModel
	MemberEditable
	ProjectID uuid.UUID   `json:"projectId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the project
	Links     MemberLinks `json:"links"`
}

func newMember(url string, model models.ProjectMember) Member {
	return Member{
		DefaultModel: model.DefaultModel,
		MemberEditable: MemberEditable{
			UserID: model.UserID,
			Role:   model.Role,
		},
		ProjectID: model.ProjectID,
		Links: MemberLinks{
			Self:    fmt.Sprintf("%s/v1/members/%s", url, model.ID),
			Project: fmt.Sprintf("%s/v1/projects/%s", url, model.ProjectID),
		},
	}
}

type MemberListResponse struct {
	Data       []Member    `json:"data"`                                                          // List of Members
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type MemberCreateResponse struct {
	Data  []MemberResponse `json:"data"`                                                          // List of the created Members or their respective error
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (m *MemberCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	m.Data = append(m.Data, MemberResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type MemberResponse struct {
	Data  *Member `json:"data"`                                                          // Data for the Member
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// MemberUpdate is the set of fields that may be changed on an existing
// membership. The user a membership is for never changes, memberships are
// deleted and recreated instead.
type MemberUpdate struct {
	Role models.Role `json:"role" example:"member"` // Role of the user within the project
}
