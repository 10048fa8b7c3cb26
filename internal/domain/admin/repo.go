package admin

import (
	"context"

	"github.com/google/uuid"
)

// SystemUserRepository defines the persistence interface for system users.
type SystemUserRepository interface {
	Create(ctx context.Context, user *SystemUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*SystemUser, error)
	GetByUsername(ctx context.Context, username string) (*SystemUser, error)
	Update(ctx context.Context, user *SystemUser) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*SystemUser, int, error)
	AssignRole(ctx context.Context, assignment *UserRoleAssignment) error
	GetRoles(ctx context.Context, userID uuid.UUID) ([]*UserRoleAssignment, error)
	RemoveRole(ctx context.Context, assignmentID uuid.UUID) error
}
