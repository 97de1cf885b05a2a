package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"enrollwall/internal/auth"
	"enrollwall/internal/cache"
	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
	"enrollwall/internal/repository"
)

const (
	msgUserNotFound    = "User not found."
	msgEmailRegistered = "Email already registered."
)

// UserInput carries the writable user fields. An empty Password on update
// keeps the current digest.
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      model.Role
	Password  string
}

// UserService registers and maintains users.
type UserService interface {
	CreateUser(ctx context.Context, in UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
}

type userService struct {
	repo    repository.UserRepository
	courses repository.CourseRepository
	hasher  auth.PasswordHasher
	cache   *cache.Client
}

// NewUserService builds a UserService with repository, hasher and cache.
func NewUserService(repo repository.UserRepository, courses repository.CourseRepository, hasher auth.PasswordHasher, cache *cache.Client) UserService {
	return &userService{repo: repo, courses: courses, hasher: hasher, cache: cache}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword rejects passwords bcrypt cannot hash as a validation error.
func (s *userService) hashPassword(plain string) (string, error) {
	digest, err := s.hasher.Hash(plain)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.Domain(apperrors.ErrValidation, "password must not exceed 72 bytes")
	}
	return digest, err
}

func (s *userService) CreateUser(ctx context.Context, in UserInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.Domain(apperrors.ErrValidation, fmt.Sprintf("invalid role %q", in.Role))
	}
	if in.Password == "" {
		return nil, apperrors.Domain(apperrors.ErrValidation, "password is required")
	}

	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        normalizeEmail(in.Email),
		Role:         in.Role,
		PasswordHash: digest,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateWriteErr(err, msgEmailRegistered)
	}

	slog.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in UserInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.Domain(apperrors.ErrValidation, fmt.Sprintf("invalid role %q", in.Role))
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadErr(err, msgUserNotFound)
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = normalizeEmail(in.Email)
	user.Role = in.Role
	if in.Password != "" {
		digest, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = digest
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateWriteErr(err, msgEmailRegistered)
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))

	slog.InfoContext(ctx, "user updated", "user_id", user.ID)
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	// Courses tutored by the user lose their tutor; their cached copies go stale.
	tutored, err := s.courses.ListByTutor(ctx, id)
	if err != nil {
		return fmt.Errorf("list tutored courses: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateReadErr(err, msgUserNotFound)
	}

	keys := []string{userCacheKey(id)}
	for _, c := range tutored {
		keys = append(keys, courseCacheKey(c.ID))
	}
	_ = s.cache.Delete(ctx, keys...)

	slog.InfoContext(ctx, "user deleted", "user_id", id, "courses_untutored", len(tutored))
	return nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(msgUserNotFound)
		}
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, userCacheKey(id), user, entityCacheTTL)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	return s.repo.List(ctx, repository.UserFilter{Role: role})
}
