package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	users SystemUserRepository
}

func NewService(users SystemUserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) CreateUser(ctx context.Context, u *SystemUser) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return fmt.Errorf("display_name is required")
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Status != StatusActive && u.Status != StatusInactive {
		return fmt.Errorf("invalid status %q", u.Status)
	}
	if existing, err := s.users.GetByUsername(ctx, u.Username); err == nil && existing != nil {
		return fmt.Errorf("username %q already taken", u.Username)
	}
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*SystemUser, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, u *SystemUser) error {
	if strings.TrimSpace(u.DisplayName) == "" {
		return fmt.Errorf("display_name is required")
	}
	if u.Status != StatusActive && u.Status != StatusInactive {
		return fmt.Errorf("invalid status %q", u.Status)
	}
	return s.users.Update(ctx, u)
}

// DeactivateUser marks the account inactive instead of removing it, so role
// history and audit trails stay intact.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Status = StatusInactive
	return s.users.Update(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*SystemUser, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) AssignRole(ctx context.Context, userID uuid.UUID, roleName string, grantedBy *uuid.UUID) (*UserRoleAssignment, error) {
	if !validRoles[roleName] {
		return nil, fmt.Errorf("invalid role %q", roleName)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.users.GetRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.RoleName == roleName {
			return a, nil
		}
	}

	assignment := &UserRoleAssignment{
		UserID:      userID,
		RoleName:    roleName,
		Active:      true,
		GrantedByID: grantedBy,
	}
	if err := s.users.AssignRole(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *Service) GetRoles(ctx context.Context, userID uuid.UUID) ([]*UserRoleAssignment, error) {
	return s.users.GetRoles(ctx, userID)
}

func (s *Service) RemoveRole(ctx context.Context, assignmentID uuid.UUID) error {
	return s.users.RemoveRole(ctx, assignmentID)
}
