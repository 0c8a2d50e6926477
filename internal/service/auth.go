package service

import (
	"fmt"
	"log/slog"

	"github.com/pokerledger/tracker/internal/auth"
	"github.com/pokerledger/tracker/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the admin credential and issues admin tokens.
type AuthService struct {
	passwordHash []byte
	jwtMgr       *auth.JWTManager
	logger       *slog.Logger
}

// NewAuthService creates an AuthService. passwordHash takes precedence; a
// plain password is hashed once here so it is never compared in clear.
// With neither set every login fails.
func NewAuthService(passwordHash, password string, jwtMgr *auth.JWTManager, logger *slog.Logger) (*AuthService, error) {
	s := &AuthService{jwtMgr: jwtMgr, logger: logger}

	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		s.passwordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.passwordHash = hash
	default:
		logger.Warn("no admin credential configured; logins are disabled")
	}
	return s, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string `json:"token"`
}

// Login checks the admin password and returns a signed token.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	if s.passwordHash == nil || input.Password == "" {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	token, err := s.jwtMgr.GenerateToken()
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &LoginResult{Token: token}, nil
}
