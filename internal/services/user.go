package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventcalendar/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type userService struct {
	userRepo       domain.UserRepository
	contextTimeout time.Duration
	logger         *slog.Logger
}

// NewUserService creates the admin-facing UserService.
func NewUserService(userRepo domain.UserRepository, timeout time.Duration, logger *slog.Logger) domain.UserService {
	return &userService{userRepo: userRepo, contextTimeout: timeout, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *userService) SetRole(ctx context.Context, actor domain.Principal, id string, role domain.Role) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "Role must be admin or user")
	}
	if actor.UserID == id && role != domain.RoleAdmin {
		return nil, domain.NewValidationError("role", "You cannot remove your own admin role")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	u, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.logger.InfoContext(ctx, "user role changed", "userID", id, "role", role, "by", actor.UserID)
	return u, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor domain.Principal, id string, in domain.UserUpdate) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := domain.ValidateUserUpdate(in); err != nil {
		return nil, err
	}
	if actor.UserID == id {
		if in.Role != nil && *in.Role != domain.RoleAdmin {
			return nil, domain.NewValidationError("role", "You cannot remove your own admin role")
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, domain.NewValidationError("isActive", "You cannot deactivate your own account")
		}
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUserUpdate(u, in)
	if err := saveUser(ctx, s.userRepo, u); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user updated", "userID", id, "by", actor.UserID)
	return u, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if actor.UserID == id {
		return domain.NewValidationError("id", "You cannot delete your own account")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.ErrNotFound
		case errors.Is(err, domain.ErrUserHasEvents):
			return domain.NewValidationError("id", "Cannot delete a user who has created events; deactivate the account instead")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "userID", id, "by", actor.UserID)
	return nil
}

func (s *userService) ToggleActive(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if actor.UserID == id {
		return nil, domain.NewValidationError("isActive", "You cannot deactivate your own account")
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	if err := saveUser(ctx, s.userRepo, u); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user active flag toggled", "userID", id, "active", u.IsActive, "by", actor.UserID)
	return u, nil
}

func (s *userService) Stats(ctx context.Context) (*domain.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}
