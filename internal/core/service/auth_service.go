package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kata-academy/useradmin/internal/core/domain"
	"github.com/kata-academy/useradmin/internal/core/ports"
)

// AuthService implements the login flow: principal lookup, credential check,
// and session token issuance.
type AuthService struct {
	principals ports.PrincipalService
	hasher     ports.PasswordHasher
	jwtSecret  string
	tokenTTL   time.Duration
}

func NewAuthService(principals ports.PrincipalService, hasher ports.PasswordHasher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{principals: principals, hasher: hasher, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login authenticates a username/password pair and returns a signed session
// token together with the authenticated principal. Both an unknown username
// and a bad password fail with domain.ErrInvalidCredentials; callers must not
// be able to tell the two apart.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Principal, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	principal, err := s.principals.LoadPrincipal(ctx, username)
	if err != nil {
		if err == domain.ErrPrincipalNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Matches(password, principal.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(principal)
	if err != nil {
		return "", nil, err
	}

	return token, principal, nil
}

func (s *AuthService) generateToken(principal *domain.Principal) (string, error) {
	claims := jwt.MapClaims{
		"sub":         principal.Username,
		"authorities": principal.Authorities,
		"jti":         uuid.NewString(),
		"exp":         time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
