package auth

import (
	"strings"

	"github.com/goliatone/go-router"
)

// Guard protects routes. Authenticate checks the bearer token against the
// blacklist before verifying its signature; RequireRole layers role checks
// on top of an authenticated request.
type Guard struct {
	tokens    TokenVerifier
	sessions  SessionTracker
	responder *JSONResponder
	ctxKey    string
	scheme    string
	logger    Logger
}

func NewGuard(tokens TokenVerifier, sessions SessionTracker, cfg Config) *Guard {
	return &Guard{
		tokens:    tokens,
		sessions:  sessions,
		responder: NewJSONResponder(cfg),
		ctxKey:    cfg.GetContextKey(),
		scheme:    cfg.GetAuthScheme(),
		logger:    defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Authenticate rejects requests without a live, well-signed access token.
// On success the claims are stored in the router locals under the
// configured context key and propagated to the request context.
func (g *Guard) Authenticate() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token, err := g.extractToken(ctx)
			if err != nil {
				return g.responder.Err(ctx, err)
			}

			revoked, err := g.sessions.IsBlacklisted(ctx.Context(), token)
			if err != nil {
				return g.responder.Err(ctx, err)
			}
			if revoked {
				return g.responder.Err(ctx, ErrTokenRevoked)
			}

			claims, err := g.tokens.VerifyAccess(token)
			if err != nil {
				return g.responder.Err(ctx, err)
			}

			ctx.Locals(g.ctxKey, claims)
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			return hf(ctx)
		}
	}
}

// RequireRole allows the request through only when the authenticated
// claims carry one of the given roles. It must run after Authenticate.
func (g *Guard) RequireRole(roles ...UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := GetRouterClaims(ctx, g.ctxKey)
			if !ok {
				return g.responder.Err(ctx, ErrAuthRequired)
			}

			if !RoleIn(claims.Role(), roles...) {
				g.logger.Warn("role %q denied access to %s %s", claims.Role(), ctx.Method(), ctx.OriginalURL())
				return g.responder.Err(ctx, ErrForbidden)
			}

			return hf(ctx)
		}
	}
}

func (g *Guard) extractToken(ctx router.Context) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := strings.TrimSpace(g.scheme)
	l := len(scheme)

	if len(header) > l+1 && strings.EqualFold(header[:l], scheme) {
		if token := strings.TrimSpace(header[l:]); token != "" {
			return token, nil
		}
	}

	return "", ErrNoToken
}
