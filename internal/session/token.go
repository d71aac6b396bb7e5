// ABOUTME: Local decoding of the bearer token payload
// ABOUTME: Reads expiry and identity claims without verifying the signature

package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token payload fields the client cares about
type Claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	UserType string `json:"userType,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo is the decoded view of a token
type TokenInfo struct {
	Subject   string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// DecodeToken parses the payload of a JWT. The signature is the server's
// concern and is not checked here.
func DecodeToken(raw string) (*TokenInfo, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, fmt.Errorf("empty token")
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	info := &TokenInfo{
		Subject:  claims.Subject,
		Username: claims.Username,
		Role:     ParseRole(claims.Role),
	}
	if info.Role == RoleUnknown {
		info.Role = ParseRole(claims.UserType)
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
