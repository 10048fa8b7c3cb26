package admin

import (
	"time"

	"github.com/google/uuid"
)

// Roles a clinic account can hold.
const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
	RoleSecretary    = "secretary"
)

var validRoles = map[string]bool{
	RoleAdmin:        true,
	RoleProfessional: true,
	RoleSecretary:    true,
}

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// SystemUser maps to the system_user table. One login account for a clinic
// staff member. Professionals get an account linked to their professional
// record, secretaries and administrators are accounts only.
type SystemUser struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	DisplayName    string     `db:"display_name" json:"display_name"`
	Email          *string    `db:"email" json:"email,omitempty"`
	ProfessionalID *uuid.UUID `db:"professional_id" json:"professional_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the account may sign in.
func (u *SystemUser) Active() bool {
	return u.Status == StatusActive
}

// UserRoleAssignment maps to the user_role_assignment table.
type UserRoleAssignment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	RoleName    string     `db:"role_name" json:"role_name"`
	Active      bool       `db:"active" json:"active"`
	GrantedByID *uuid.UUID `db:"granted_by_id" json:"granted_by_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
