package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventlisting/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type jwtTokens struct {
	secret []byte
}

// NewJWT returns an HS256 token issuer/verifier backed by the given secret.
// The returned value implements both domain.TokenIssuer and
// domain.TokenVerifier.
func NewJWT(secret string) *jwtTokens {
	return &jwtTokens{secret: []byte(secret)}
}

var _ domain.TokenIssuer = (*jwtTokens)(nil)
var _ domain.TokenVerifier = (*jwtTokens)(nil)

func (j *jwtTokens) Issue(userID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates the token, returning the subject (user ID).
func (j *jwtTokens) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return j.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*jwtClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}
