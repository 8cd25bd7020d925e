package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/carebook/authz"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenSubject is what a token is issued for.
type TokenSubject struct {
	UserID         uint
	Email          string
	Role           authz.Role
	ProfessionalID uint
}

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// GenerateTokenPair signs a 24h access token and a 7 day refresh token.
func GenerateTokenPair(secret string, sub TokenSubject, now time.Time) (*TokenPair, error) {
	access, err := sign(secret, sub, TokenTypeAccess, now.Add(AccessTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refresh, err := sign(secret, sub, TokenTypeRefresh, now.Add(RefreshTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func sign(secret string, sub TokenSubject, typ string, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"id":              sub.UserID,
		"email":           sub.Email,
		"role":            string(sub.Role),
		"professional_id": sub.ProfessionalID,
		"type":            typ,
		"exp":             exp.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseRefreshToken validates a refresh token and returns the user ID it was issued for.
func ParseRefreshToken(secret, raw string) (uint, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != TokenTypeRefresh {
		return 0, ErrInvalidToken
	}
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
