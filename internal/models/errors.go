package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	// ErrForbidden marks authorization failures. It is never downgraded to
	// a silent no-op: callers must surface it with a distinct status.
	ErrForbidden = errors.New("you are not allowed to perform this action")
)

// Validation errors, rejected before any write.
var (
	ErrAmountNegative   = errors.New("amounts must not be negative")
	ErrCategoryRequired = errors.New("a category must be set")
	ErrNameRequired     = errors.New("a name must be set")
	ErrRoleInvalid      = errors.New("the role must be one of owner, admin, member, viewer")
	ErrScoreOutOfRange  = errors.New("risk scores must be between 0 and 100")
)

// State machine errors.
var (
	ErrExpenseNotPending   = errors.New("only pending expenses can be approved or rejected")
	ErrInvoiceAlreadyPaid  = errors.New("the invoice has already been paid")
	ErrNoProjectMembership = errors.New("you are not a member of this project")
)

// Constraint violations translated by the create/update callbacks.
var (
	ErrProjectNameNotUnique   = errors.New("a project with this name already exists")
	ErrMemberNotUnique        = errors.New("this user is already a member of the project")
	ErrInvoiceNumberNotUnique = errors.New("this invoice number is already in use for the project")
)
