package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
)

func TestRoleGuard_RequireRole(t *testing.T) {
	ctx := context.Background()
	dbDown := errors.New("connection refused")

	tests := []struct {
		name    string
		user    *model.User
		findErr error
		role    model.Role
		wantErr error
		wantMsg string
	}{
		{name: "matching role", user: &model.User{ID: 1, Role: model.RoleStudent}, role: model.RoleStudent},
		{name: "different role", user: &model.User{ID: 1, Role: model.RoleAdmin}, role: model.RoleStudent, wantErr: apperrors.ErrRoleMismatch, wantMsg: "Student not found."},
		{name: "absent user", findErr: gorm.ErrRecordNotFound, role: model.RoleTutor, wantErr: apperrors.ErrRoleMismatch, wantMsg: "Tutor not found."},
		{name: "store failure", findErr: dbDown, role: model.RoleTutor, wantErr: dbDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			if tt.user != nil {
				users.On("FindByID", ctx, uint(1)).Return(tt.user, nil)
			} else {
				users.On("FindByID", ctx, uint(1)).Return(nil, tt.findErr)
			}

			err := NewRoleGuard(users).RequireRole(ctx, 1, tt.role)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
			}
			users.AssertExpectations(t)
		})
	}
}
