// Package auth issues and verifies the identity tokens that gate the
// API, plus the bcrypt password helpers used at registration and login.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fornello/pizzeria/app/models"
)

// ErrNoSecret is returned when a TokenManager is used without a
// configured signing secret.
var ErrNoSecret = errors.New("auth: signing secret is not configured")

// ErrInvalidToken is returned for malformed, forged, or otherwise
// unverifiable tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims holds the typed JWT payload: who the caller is and what they
// may do. Tokens carry no expiry — verification is purely a signature
// check.
type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies identity tokens with a single shared
// secret. The secret is injected at construction, never read from
// ambient state, so tests can run with distinct secrets.
type TokenManager struct {
	secret []byte
}

// NewTokenManager builds a TokenManager around secret. An empty secret
// is allowed here; Generate and Validate report ErrNoSecret instead,
// so the failure surfaces on the request that needs the token.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// GenerateToken creates a signed HS256 token for the given identity.
func (m *TokenManager) GenerateToken(userID, email string, role models.Role) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateToken parses and verifies a token string, returning its
// claims. Any structural or signature problem yields ErrInvalidToken.
func (m *TokenManager) ValidateToken(t string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
