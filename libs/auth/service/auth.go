// Package service issues and validates the signed session tokens of educators and students
package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

// Principal is the identity carried by an access token
type Principal struct {
	ID   int
	Role string
}

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret            string
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// AccessTokenExpiry returns the lifetime of issued access tokens
func (tg *TokenGenerator) AccessTokenExpiry() time.Duration {
	return tg.accessTokenExpiry
}

// GenerateAccessToken signs an access token embedding the principal ID and role
func (tg *TokenGenerator) GenerateAccessToken(principalID int, role string) (string, error) {
	if role == "" {
		return "", fmt.Errorf("role is required")
	}

	now := tg.now()
	claims := jwt.MapClaims{
		"sub_id": principalID,
		"role":   role,
		"exp":    now.Add(tg.accessTokenExpiry).Unix(),
		"iat":    now.Unix(),
		"type":   accessTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the principal it carries
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	}, jwt.WithTimeFunc(tg.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != accessTokenType {
		return nil, fmt.Errorf("token is not an access token")
	}

	// JWT claims decode numbers as float64
	principalID, ok := claims["sub_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("sub_id not found in token")
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("role not found in token")
	}

	return &Principal{ID: int(principalID), Role: role}, nil
}
