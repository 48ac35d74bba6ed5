package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator issues tokens for API clients of the bar endpoints.
type Generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator creates a generator signing with secret; tokens expire after expiration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken creates an HS256 token whose subject is clientID.
func (g *Generator) GenerateToken(clientID string) (string, error) {
	if clientID == "" {
		return "", errors.New("client id is empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
