package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
	"enrollwall/internal/repository"
)

// RoleGuard confirms that a user exists and holds a role before an operation proceeds.
type RoleGuard interface {
	RequireRole(ctx context.Context, userID uint, role model.Role) error
}

type roleGuard struct {
	users repository.UserRepository
}

// NewRoleGuard creates a guard reading users straight from the store.
func NewRoleGuard(users repository.UserRepository) RoleGuard {
	return &roleGuard{users: users}
}

// RequireRole fails with ErrRoleMismatch when the user is absent or has another role.
func (g *roleGuard) RequireRole(ctx context.Context, userID uint, role model.Role) error {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return roleMismatch(role)
		}
		return fmt.Errorf("find user %d: %w", userID, err)
	}
	if user.Role != role {
		return roleMismatch(role)
	}
	return nil
}

func roleMismatch(role model.Role) error {
	return apperrors.Domain(apperrors.ErrRoleMismatch, role.Title()+" not found.")
}
