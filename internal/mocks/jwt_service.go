package mocks

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
// Without overrides it issues "token-<uuid>" and accepts exactly that form.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

const mockTokenPrefix = "token-"

// TokenFor returns the token the default mock issues for userID.
func TokenFor(userID uuid.UUID) string {
	return mockTokenPrefix + userID.String()
}

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return TokenFor(userID), nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}

	raw, ok := strings.CutPrefix(tokenString, mockTokenPrefix)
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id, TokenType: auth.TokenTypeAccess, Subject: raw}, nil
}
