package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's role within a single project. Roles are strictly
// project-scoped: there is no global flag that substitutes for a membership
// row.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}

	return false
}

// CanApproveExpenses reports whether the role may drive the expense
// approval state machine.
func (r Role) CanApproveExpenses() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ProjectMember is a user's membership row for one project.
type ProjectMember struct {
	DefaultModel
	ProjectID uuid.UUID `gorm:"uniqueIndex:member_project_user"`
	Project   Project   `json:"-"`
	UserID    uuid.UUID `gorm:"uniqueIndex:member_project_user"`
	Role      Role
}

func (m *ProjectMember) BeforeSave(_ *gorm.DB) error {
	if m.Role == "" {
		m.Role = RoleViewer
	}

	if !m.Role.Valid() {
		return ErrRoleInvalid
	}

	return nil
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	_ = m.DefaultModel.BeforeCreate(tx)

	// The project has to exist
	return tx.First(&Project{}, m.ProjectID).Error
}

// Permissions is the capability view of a membership row, resolved once per
// request at the call boundary and passed down explicitly. It is a value,
// not a global: two requests by the same user against different projects
// resolve independently.
type Permissions struct {
	UserID uuid.UUID
	Role   Role
}

// ResolvePermissions looks up the caller's membership row for the project.
// A caller without a membership row gets ErrNoProjectMembership, which maps
// to a "forbidden" response, not a "not found" one: the existence of the
// project is already established by the handler.
func ResolvePermissions(tx *gorm.DB, projectID, userID uuid.UUID) (Permissions, error) {
	var member ProjectMember
	err := tx.Where(&ProjectMember{ProjectID: projectID, UserID: userID}).First(&member).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return Permissions{}, fmt.Errorf("%w: %s", ErrForbidden, ErrNoProjectMembership)
		}

		return Permissions{}, err
	}

	return Permissions{UserID: userID, Role: member.Role}, nil
}
