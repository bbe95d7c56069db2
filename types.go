package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenPair is an access/refresh token pair as returned to clients.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer mints signed tokens for a user.
type TokenIssuer interface {
	IssueAccess(user *User) (string, error)
	IssueRefresh(user *User) (string, error)
}

// TokenVerifier validates signed tokens and extracts claims.
type TokenVerifier interface {
	VerifyAccess(token string) (AuthClaims, error)
	VerifyRefresh(token string) (*RefreshClaims, error)
}

// SessionTracker is the cache-backed registry of live refresh tokens and
// revoked access tokens. All cross-request coordination (refresh single-use,
// blacklist membership) goes through here.
type SessionTracker interface {
	IssuePair(ctx context.Context, user *User) (*TokenPair, error)
	ValidateRefresh(ctx context.Context, token string) (string, bool, error)
	ConsumeRefresh(ctx context.Context, token string) (string, bool, error)
	InvalidateRefresh(ctx context.Context, token string) error
	InvalidateAllForUser(ctx context.Context, userID string) error
	Blacklist(ctx context.Context, accessToken string) error
	IsBlacklisted(ctx context.Context, accessToken string) (bool, error)
}

// Mailer is the external email collaborator. Failures are logged, never
// surfaced to API clients.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

// Config holds auth options
type Config interface {
	GetAccessSigningKey() string
	GetRefreshSigningKey() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetAuthScheme() string
	GetBcryptCost() int
	GetEnvironment() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
