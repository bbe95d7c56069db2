package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenCodec signs and verifies access and refresh tokens. The two token
// kinds use distinct signing keys, so possession of one kind never lets a
// holder forge the other.
type TokenCodec struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

var (
	_ TokenIssuer   = (*TokenCodec)(nil)
	_ TokenVerifier = (*TokenCodec)(nil)
)

// NewTokenCodec creates a TokenCodec from config.
func NewTokenCodec(cfg Config) *TokenCodec {
	return &TokenCodec{
		accessKey:  []byte(cfg.GetAccessSigningKey()),
		refreshKey: []byte(cfg.GetRefreshSigningKey()),
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
		issuer:     cfg.GetIssuer(),
		audience:   jwt.ClaimStrings(cfg.GetAudience()),
		logger:     defLogger{},
		now:        time.Now,
	}
}

func (tc *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	if logger != nil {
		tc.logger = logger
	}
	return tc
}

// WithClock injects a custom clock (useful for tests).
func (tc *TokenCodec) WithClock(clock func() time.Time) *TokenCodec {
	if clock != nil {
		tc.now = clock
	}
	return tc
}

// AccessTTL returns the configured access-token lifetime.
func (tc *TokenCodec) AccessTTL() time.Duration {
	return tc.accessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (tc *TokenCodec) RefreshTTL() time.Duration {
	return tc.refreshTTL
}

// IssueAccess mints a short-lived access token carrying subject, email,
// and role claims.
func (tc *TokenCodec) IssueAccess(user *User) (string, error) {
	now := tc.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Subject:   user.ID.String(),
			Audience:  tc.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.accessTTL)),
		},
		UserEmail: user.Email,
		UserRole:  user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.accessKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign access token")
	}

	return signed, nil
}

// IssueRefresh mints a long-lived refresh token carrying only the subject
// and the refresh type marker, signed with the refresh key.
func (tc *TokenCodec) IssueRefresh(user *User) (string, error) {
	now := tc.now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.refreshTTL)),
		},
		TokenType: RefreshTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.refreshKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign refresh token")
	}

	return signed, nil
}

// VerifyAccess checks signature, issuer, audience, and expiry, returning
// the structured claims on success.
func (tc *TokenCodec) VerifyAccess(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if tc.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tc.issuer))
	}
	if len(tc.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(tc.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, tc.keyFunc(tc.accessKey), parserOptions...)
	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrInvalidToken.Category, ErrInvalidToken.Message).
			WithTextCode(ErrInvalidToken.TextCode).
			WithCode(goerrors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		tc.logger.Error("VerifyAccess could not decode or validate claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyRefresh checks signature, issuer, expiry, and the refresh type
// marker. A valid signature does not by itself prove the token is still
// active; that requires a SessionRegistry lookup.
func (tc *TokenCodec) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if tc.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tc.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, tc.keyFunc(tc.refreshKey), parserOptions...)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrInvalidRefreshToken.Category, ErrInvalidRefreshToken.Message).
			WithTextCode(ErrInvalidRefreshToken.TextCode).
			WithCode(goerrors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}

	if claims.TokenType != RefreshTokenType {
		tc.logger.Warn("VerifyRefresh rejected token without refresh type marker")
		return nil, ErrInvalidRefreshToken
	}

	return claims, nil
}

// DecodeExpiry reads a token's expiry claim WITHOUT verifying the
// signature. It exists solely so the blacklist can compute a remaining TTL
// for an already-presented token; it must never feed authorization
// decisions.
func (tc *TokenCodec) DecodeExpiry(tokenString string) (time.Time, error) {
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to decode token expiry")
	}

	if claims.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}, goerrors.New("token has no expiry claim", goerrors.CategoryBadInput)
	}

	return claims.RegisteredClaims.ExpiresAt.Time, nil
}

func (tc *TokenCodec) keyFunc(key []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token codec encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}
}
