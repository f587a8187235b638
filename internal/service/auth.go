package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/inventory/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// operatorSubject is the sub claim of every token. There is one operator
// credential, not per-user accounts.
const operatorSubject = "operator"

// AuthService exchanges the operator password for short-lived JWTs and
// validates them.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService. An empty passwordHash disables
// authentication.
func NewAuthService(passwordHash, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
	}
}

// Enabled reports whether a token is required for writes.
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// HashPassword returns the bcrypt hash of password for use as
// auth.password_hash.
func HashPassword(password string, cost int) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the operator password and returns a signed JWT.
func (s *AuthService) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("%w: authentication is not configured", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	token, err := s.generateJWT()
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}
	return token, nil
}

// ValidateToken parses and validates a JWT token string.
func (s *AuthService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub != operatorSubject {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *AuthService) generateJWT() (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": operatorSubject,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
