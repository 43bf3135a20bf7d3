// Package auth provides authorization for administrative operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors returned by the auth package.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrMissingClaims    = errors.New("missing required claims")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Actions checked against the PermissionChecker.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
	ActionRotate = "rotate"
)

// PermissionChecker decides whether an admin identity may perform an action
// on a resource. Implementations range from a static allow-list to
// token-derived roles; call sites never depend on which one is wired.
type PermissionChecker interface {
	IsAuthorized(ctx context.Context, identity, action, resource string) bool
}

// AllowlistChecker authorizes identities present in a configured allow-list.
// The super-admin identity is always authorized.
type AllowlistChecker struct {
	allowed    map[string]struct{}
	superAdmin string
	logger     *slog.Logger
}

// NewAllowlistChecker creates an AllowlistChecker. Emails are compared
// case-insensitively.
func NewAllowlistChecker(allowedEmails []string, superAdmin string, logger *slog.Logger) *AllowlistChecker {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, e := range allowedEmails {
		allowed[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AllowlistChecker{
		allowed:    allowed,
		superAdmin: strings.ToLower(strings.TrimSpace(superAdmin)),
		logger:     logger,
	}
}

// IsAuthorized implements PermissionChecker.
func (c *AllowlistChecker) IsAuthorized(ctx context.Context, identity, action, resource string) bool {
	id := strings.ToLower(strings.TrimSpace(identity))
	if id == "" {
		return false
	}
	if c.superAdmin != "" && id == c.superAdmin {
		return true
	}
	if _, ok := c.allowed[id]; ok {
		return true
	}
	c.logger.Warn("admin permission denied",
		"admin_email", identity,
		"action", action,
		"resource", resource,
	)
	return false
}

// Claims are the validated contents of an admin bearer token.
type Claims struct {
	Email string
	Role  string
}

// JWTChecker authorizes bearer tokens carrying an admin role claim. It can
// replace the allow-list without touching call sites.
type JWTChecker struct {
	secret []byte
	logger *slog.Logger
}

// NewJWTChecker creates a JWTChecker with the given HMAC secret.
func NewJWTChecker(secret []byte, logger *slog.Logger) *JWTChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &JWTChecker{secret: secret, logger: logger}
}

// ValidateToken validates a bearer token and returns its claims.
func (c *JWTChecker) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	email, ok := mapClaims["email"].(string)
	if !ok || email == "" {
		return nil, ErrMissingClaims
	}
	role, _ := mapClaims["role"].(string)

	return &Claims{Email: email, Role: role}, nil
}

// IsAuthorized implements PermissionChecker. The identity is the bearer
// token itself; the role claim must be admin (or superadmin).
func (c *JWTChecker) IsAuthorized(ctx context.Context, identity, action, resource string) bool {
	claims, err := c.ValidateToken(identity)
	if err != nil {
		c.logger.Debug("admin token rejected", "action", action, "resource", resource, "error", err)
		return false
	}
	switch claims.Role {
	case "admin", "superadmin":
		return true
	}
	c.logger.Warn("admin permission denied",
		"admin_email", claims.Email,
		"role", claims.Role,
		"action", action,
		"resource", resource,
	)
	return false
}

// GenerateAdminToken signs an admin bearer token with email and role claims.
// Used by the token generation tool and by tests.
func GenerateAdminToken(secret []byte, email, role string, expiry time.Duration) (string, error) {
	if email == "" {
		return "", ErrMissingClaims
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(expiry).Unix(),
		"nbf":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ExtractBearerToken extracts the token from an Authorization header.
func ExtractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
