package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/platform/logger"
	"github.com/phrazzld/tasksplit/internal/service/auth"
	"github.com/phrazzld/tasksplit/internal/store"
)

// AuthResult is a user together with a freshly issued access token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService issues and checks bearer tokens.
type AuthService interface {
	// Login verifies the credentials and issues a token.
	// Returns ErrInvalidCredentials for an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// RegisterAdmin creates an admin and issues a token.
	// Returns ErrRegistrationClosed when registration is disabled.
	RegisterAdmin(ctx context.Context, name, email, password string) (*AuthResult, error)

	// Authenticate validates a token and loads its user. A token whose user
	// no longer exists fails with auth.ErrInvalidToken.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	users             store.UserStore
	jwt               auth.JWTService
	passwords         auth.PasswordVerifier
	allowRegistration bool
	logger            *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users store.UserStore,
	jwt auth.JWTService,
	passwords auth.PasswordVerifier,
	allowRegistration bool,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthServiceImpl{
		users:             users,
		jwt:               jwt,
		passwords:         passwords,
		allowRegistration: allowRegistration,
		logger:            logger.With("component", "auth_service"),
	}
}

// Login implements AuthService.Login.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Spend the same bcrypt work as a real comparison.
			_ = s.passwords.Compare(auth.DummyHash(), password)
			log.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", "error", err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// RegisterAdmin implements AuthService.RegisterAdmin.
func (s *AuthServiceImpl) RegisterAdmin(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationClosed
	}

	admin, err := domain.NewAdmin(name, email, password)
	if err != nil {
		return nil, invalid(err)
	}

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("admin registered", "user_id", admin.ID)
	return s.issue(ctx, admin)
}

// Authenticate implements AuthService.Authenticate.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}

	claims, err := s.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: user no longer exists", auth.ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthServiceImpl) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
