package auth

import "time"

// DefaultAccessTokenTTL is the short access-token lifetime.
const DefaultAccessTokenTTL = 15 * time.Minute

// DefaultRefreshTokenTTL is the long refresh-token lifetime. The session
// registry mirrors this TTL on stored refresh entries.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

// DefaultBcryptCost is the bcrypt work factor used when Config does not
// override it.
const DefaultBcryptCost = 12

// SimpleConfig is a concrete Config. Zero values fall back to defaults on
// read, so a partially populated struct is safe to use.
type SimpleConfig struct {
	AccessSigningKey  string
	RefreshSigningKey string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	Issuer            string
	Audience          []string
	ContextKey        string
	AuthScheme        string
	BcryptCost        int
	Environment       string
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetAccessSigningKey() string {
	return c.AccessSigningKey
}

func (c *SimpleConfig) GetRefreshSigningKey() string {
	return c.RefreshSigningKey
}

func (c *SimpleConfig) GetAccessTokenTTL() time.Duration {
	if c.AccessTokenTTL <= 0 {
		return DefaultAccessTokenTTL
	}
	return c.AccessTokenTTL
}

func (c *SimpleConfig) GetRefreshTokenTTL() time.Duration {
	if c.RefreshTokenTTL <= 0 {
		return DefaultRefreshTokenTTL
	}
	return c.RefreshTokenTTL
}

func (c *SimpleConfig) GetIssuer() string {
	if c.Issuer == "" {
		return "go-auth-service"
	}
	return c.Issuer
}

func (c *SimpleConfig) GetAudience() []string {
	if len(c.Audience) == 0 {
		return []string{"go-auth-service"}
	}
	return c.Audience
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *SimpleConfig) GetBcryptCost() int {
	if c.BcryptCost <= 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}

func (c *SimpleConfig) GetEnvironment() string {
	if c.Environment == "" {
		return "development"
	}
	return c.Environment
}

// IsProduction reports whether detail-stripping behaviors (generic internal
// error messages, no reset-token echo) should be enforced.
func (c *SimpleConfig) IsProduction() bool {
	return c.GetEnvironment() == "production"
}
