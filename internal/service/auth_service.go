package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/admp-api/internal/models"
	appErrors "github.com/campusdocs/admp-api/pkg/errors"
)

// Bootstrap accounts seeded on first run.
const (
	bootstrapAdminEmail     = "admin@college.edu"
	bootstrapPrincipalEmail = "principal@college.edu"
)

type identityStore interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	MutateUsers(ctx context.Context, fn func(users []models.User) ([]models.User, error)) error
	GetSession(ctx context.Context) (*models.User, error)
	SetSession(ctx context.Context, user models.User) error
	ClearSession(ctx context.Context) error
}

type activityRecorder interface {
	Record(ctx context.Context, action, userName, details string) error
}

// SessionTokenConfig defines configuration for issued session tokens.
type SessionTokenConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService resolves who is acting: bootstrap seeding, email login,
// logout and current-session lookup. Login performs no credential
// verification; the email is the whole identity claim.
type AuthService struct {
	store     identityStore
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionTokenConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store identityStore, activity activityRecorder, validate *validator.Validate, logger *zap.Logger, config SessionTokenConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{store: store, activity: activity, validator: validate, logger: logger, config: config, now: time.Now}
}

// Bootstrap seeds the two well-known privileged accounts when the users
// collection is empty. Idempotent: any existing user makes it a no-op.
func (s *AuthService) Bootstrap(ctx context.Context) error {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	if len(users) > 0 {
		return nil
	}

	now := s.now().UTC()
	seeded := []models.User{
		{
			ID:          "admin-1",
			Name:        "System Administrator",
			Email:       bootstrapAdminEmail,
			Role:        models.RoleAdmin,
			Department:  models.DeptCSE,
			CreatedDate: now,
		},
		{
			ID:          "principal-1",
			Name:        "Dr. Principal",
			Email:       bootstrapPrincipalEmail,
			Role:        models.RolePrincipal,
			Department:  models.DeptCSE,
			CreatedDate: now,
		},
	}

	// Re-check emptiness under the store's writer lock so a racing
	// bootstrap never overwrites accounts seeded in between.
	err = s.store.MutateUsers(ctx, func(current []models.User) ([]models.User, error) {
		if len(current) > 0 {
			return current, nil
		}
		return seeded, nil
	})
	if err != nil {
		return storeFailure(err, "failed to seed bootstrap accounts")
	}
	s.logger.Info("bootstrap accounts seeded", zap.Int("count", len(seeded)))
	return nil
}

// NormalizeEmail applies the login matching policy: trimmed, lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login resolves the first user whose normalized email matches, persists the
// resolved user as the current session, records a login activity entry and
// issues a session token. An unmatched email yields NOT_FOUND.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}

	email := NormalizeEmail(req.Email)
	var user *models.User
	for i := range users {
		if NormalizeEmail(users[i].Email) == email {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no account exists for that email")
	}

	if err := s.store.SetSession(ctx, *user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	if err := s.activity.Record(ctx, models.ActivityLogin, user.Name, fmt.Sprintf("User %s logged in", user.Email)); err != nil {
		s.logger.Warn("failed to record login activity", zap.Error(err))
	}

	token, expiresAt, err := s.generateSessionToken(*user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		User:        *user,
		IssuedAt:    s.now().UTC(),
	}, nil
}

// Logout clears the persisted session marker and records a logout entry.
// The reference behaviour left logout unaudited; the trail is complete here.
func (s *AuthService) Logout(ctx context.Context, actor models.User) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	if err := s.activity.Record(ctx, models.ActivityLogout, actor.Name, fmt.Sprintf("User %s logged out", actor.Email)); err != nil {
		s.logger.Warn("failed to record logout activity", zap.Error(err))
	}
	return nil
}

// CurrentSession returns the persisted current-session user, or nil when the
// slot is absent.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.User, error) {
	user, err := s.store.GetSession(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return user, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}

	return claims, nil
}

func (s *AuthService) generateSessionToken(user models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.SessionClaims{
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
