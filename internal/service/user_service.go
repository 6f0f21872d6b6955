package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/admp-api/internal/models"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
)

// CreateUserRequest registers a new portal account.
type CreateUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// UpdateProfileRequest edits the caller's own display name and email.
// Role and department are deliberately absent; only an administrator
// creating a fresh account assigns those.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserService manages portal accounts. Account creation is an
// administrator-only operation and emits an Admin activity entry.
type UserService struct {
	store     identityStore
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(store identityStore, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{store: store, activity: activity, validator: validate, logger: logger, now: time.Now}
}

// List returns every registered account.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	return users, nil
}

// Create registers a new account. Emails are unique under normalization;
// a clash yields CONFLICT.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actor models.User) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, email, role and department are required")
	}
	role := models.UserRole(req.Role)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	dept := models.Department(req.Department)
	if !dept.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	email := NormalizeEmail(req.Email)
	user := models.User{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Role:        role,
		Department:  dept,
		CreatedDate: s.now().UTC(),
	}

	// Uniqueness is checked inside the mutation so a concurrent create of
	// the same email cannot slip past the scan.
	err := s.store.MutateUsers(ctx, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if NormalizeEmail(u.Email) == email {
				return nil, appErrors.Clone(appErrors.ErrConflict, "an account already exists for that email")
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, storeFailure(err, "failed to persist user")
	}

	if err := s.activity.Record(ctx, models.ActivityAdmin, actor.Name, fmt.Sprintf("Created %s account for %s", role, user.Email)); err != nil {
		s.logger.Warn("failed to record account creation", zap.Error(err))
	}

	return &user, nil
}

// UpdateProfile applies name and email edits to the actor's own account and
// keeps the persisted session slot in step. Role and department never change
// through this path.
func (s *UserService) UpdateProfile(ctx context.Context, req UpdateProfileRequest, actor models.User) (*models.User, error) {
	var user models.User
	err := s.store.MutateUsers(ctx, func(users []models.User) ([]models.User, error) {
		idx := -1
		for i := range users {
			if users[i].ID == actor.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}

		user = users[idx]
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
			}
			user.Name = name
		}
		if req.Email != nil {
			email := NormalizeEmail(*req.Email)
			if err := s.validator.Var(email, "required,email"); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email address")
			}
			for i, u := range users {
				if i != idx && NormalizeEmail(u.Email) == email {
					return nil, appErrors.Clone(appErrors.ErrConflict, "an account already exists for that email")
				}
			}
			user.Email = email
		}

		users[idx] = user
		return users, nil
	})
	if err != nil {
		return nil, storeFailure(err, "failed to persist user")
	}

	// Keep the persisted session marker consistent with the edited account.
	if current, err := s.store.GetSession(ctx); err == nil && current != nil && current.ID == user.ID {
		if err := s.store.SetSession(ctx, user); err != nil {
			s.logger.Warn("failed to refresh session after profile edit", zap.Error(err))
		}
	}

	return &user, nil
}
