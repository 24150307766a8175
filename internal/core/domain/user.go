package domain

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ValidRole reports whether role is one of the supported roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// TerminationDetails records who approved a termination and when it took
// effect. Present if and only if the user is terminated.
type TerminationDetails struct {
	ApprovedBy      string    `json:"approved_by"`
	TerminationDate time.Time `json:"termination_date"`
}

// User models an account owned by a tenant.
type User struct {
	ID                 string              `json:"id"`
	UserName           string              `json:"user_name"`
	Email              string              `json:"email"`
	PasswordHash       string              `json:"-"`
	TenantID           string              `json:"tenant_id"`
	Role               string              `json:"role"`
	IsTerminated       bool                `json:"is_terminated"`
	TerminationDetails *TerminationDetails `json:"termination_details,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// ActiveAdmin reports whether the user can currently exercise admin
// privileges.
func (u *User) ActiveAdmin() bool {
	return u.Role == RoleAdmin && !u.IsTerminated
}
