package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

type authUserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService issues and verifies the HS256 API tokens.
type AuthService struct {
	users      authUserStore
	secret     []byte
	expiration time.Duration
	logger     *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users authUserStore, secret string, expiration time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), expiration: expiration, logger: logger}
}

// Login verifies admin credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.ErrInvalidCredentials
		}
		return "", appErrors.Internal(err, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", appErrors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": user.Username,
		"iat": now.Unix(),
		"exp": now.Add(s.expiration).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", appErrors.Internal(err, "failed to sign token")
	}

	s.logger.Info("admin logged in", zap.String("username", user.Username))
	return token, nil
}

// ValidateToken checks the signature and expiry of an API token. The claims
// body is opaque; any payload signed with the shared secret is accepted.
func (s *AuthService) ValidateToken(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return appErrors.ErrForbidden
	}
	return nil
}
