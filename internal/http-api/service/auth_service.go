package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minPasswordLength = 6

// Claims is the session token payload.
type Claims struct {
	UserID int64       `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput is a self-service sign up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// RevocationStore remembers logged-out token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// CreateAdmin is for operators; it skips the self-registration role rule.
	CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, *models.User, error)
	Verify(ctx context.Context, token string) (*Identity, error)
	Authorize(id *Identity, op Operation) error
	Logout(ctx context.Context, id *Identity) error
}

// AuthConfig holds the knobs of the access control gate.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	StoreTimeout time.Duration
	Now          func() time.Time
}

func AuthConfigFrom(cfg *config.Config) AuthConfig {
	return AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.JWTExpiry,
		BcryptCost:   cfg.BcryptCost,
		StoreTimeout: cfg.StoreTimeout,
	}
}

type authService struct {
	users   repository.UserRepository
	revoked RevocationStore
	policy  Policy
	cfg     AuthConfig
	logger  *slog.Logger

	// compared against when the email is unknown so both failures cost one bcrypt run
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	revoked RevocationStore,
	cfg AuthConfig,
	logger *slog.Logger,
) (AuthService, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &authService{
		users:     users,
		revoked:   revoked,
		policy:    DefaultPolicy(),
		cfg:       cfg,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

func (s *authService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// Register creates a librarian or student account.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.SelfRegistrable() {
		return nil, ErrRoleNotAllowed
	}
	return s.createUser(ctx, in)
}

func (s *authService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, RegisterInput{Name: name, Email: email, Password: password, Role: models.RoleAdmin})
}

func (s *authService) createUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Validationf("name is required")
	}
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, Validationf("invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, Validationf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Role:         in.Role,
		PasswordHash: hash,
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translate("register", err, nil, ErrEmailInUse)
	}

	s.logger.Info("user_registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate checks the credentials and issues a session token.
func (s *authService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	storeCtx, cancel := s.storeCtx(ctx)
	user, err := s.users.FindByEmail(storeCtx, email)
	cancel()
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", nil, translate("authenticate", err, nil, nil)
		}
		// User not found, still run one compare so timing does not reveal it
		_ = auth.VerifyPassword(s.dummyHash, password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("user_authenticated", "user_id", user.ID, "role", user.Role)
	return token, user, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := s.cfg.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and resolves the caller.
func (s *authService) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.cfg.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !claims.Role.Valid() || claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if s.revoked != nil {
		ctx, cancel := s.storeCtx(ctx)
		defer cancel()
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, translate("check token revocation", err, nil, nil)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *authService) Authorize(id *Identity, op Operation) error {
	return s.policy.Authorize(id, op)
}

// Logout revokes the caller's token until it expires.
func (s *authService) Logout(ctx context.Context, id *Identity) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if s.revoked == nil {
		return nil
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.revoked.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return translate("logout", err, nil, nil)
	}
	s.logger.Info("user_logged_out", "user_id", id.UserID)
	return nil
}
