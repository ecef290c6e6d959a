// Package auth validates the HS256 bearer tokens issued by the company
// SSO proxy and guards the admin endpoints behind an email allow-list.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
)

// Claims are the token claims we care about. The SSO proxy puts the
// authenticated user's corporate email in the "email" claim.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService validates bearer tokens.
type TokenService struct {
	signingKey []byte
}

func NewTokenService(signingKey string) *TokenService {
	return &TokenService{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token string, returning its claims.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no email claim")
	}
	return claims, nil
}

// GenerateToken signs a token for the given email. Used by the local
// dev command and by tests; production tokens come from the SSO proxy.
func (s *TokenService) GenerateToken(email string, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return newToken.SignedString(s.signingKey)
}
