package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshTokenType is the type marker carried by refresh tokens so they can
// never be presented where an access token is expected.
const RefreshTokenType = "refresh"

// AuthClaims represents validated access-token claims attached to a request.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() UserRole
	HasRole(role UserRole) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete access-token claim set: subject plus email and
// role, so the guard can authorize without a store round-trip.
type JWTClaims struct {
	jwt.RegisteredClaims
	UserEmail string   `json:"email,omitempty"`
	UserRole  UserRole `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, which is the subject claim.
func (c *JWTClaims) UserID() string {
	return c.Subject()
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the role claim
func (c *JWTClaims) Role() UserRole {
	return c.UserRole
}

// HasRole checks if the claims carry the given role
func (c *JWTClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// RefreshClaims is the refresh-token claim set: subject and the type
// marker, nothing more. Possession of a refresh token proves nothing about
// role or email; those are re-read from the store on rotation.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type,omitempty"`
}

// UserID returns the subject claim.
func (c *RefreshClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *RefreshClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
