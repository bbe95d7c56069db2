package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// Key prefixes used by the session registry. Tokens are never stored in
// plaintext; the registry keys on a digest of the presented token.
const (
	refreshKeyPrefix   = "auth:refresh:"
	blacklistKeyPrefix = "auth:blacklist:"
	userIndexKeyPrefix = "auth:user:"
)

// ErrRegistryUnavailable wraps cache transport failures so callers can tell
// an unreachable backend apart from a missing or revoked token.
var ErrRegistryUnavailable = goerrors.New("session registry unavailable", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal)

// tokenMinter is the slice of TokenCodec the registry needs: minting pairs,
// the refresh lifetime for cache TTLs, and unverified expiry decoding for
// blacklist TTL computation.
type tokenMinter interface {
	TokenIssuer
	RefreshTTL() time.Duration
	DecodeExpiry(token string) (time.Time, error)
}

// SessionRegistry tracks live refresh tokens and revoked access tokens in a
// cache. A refresh token is valid only while its registry entry exists, so
// deleting the entry is how rotation and logout revoke it.
type SessionRegistry struct {
	client redis.UniversalClient
	codec  tokenMinter
	logger Logger
	now    func() time.Time
}

var _ SessionTracker = (*SessionRegistry)(nil)

// NewSessionRegistry creates a registry backed by the given cache client.
func NewSessionRegistry(client redis.UniversalClient, codec tokenMinter) *SessionRegistry {
	return &SessionRegistry{
		client: client,
		codec:  codec,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (r *SessionRegistry) WithLogger(logger Logger) *SessionRegistry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithClock injects a custom clock (useful for tests).
func (r *SessionRegistry) WithClock(clock func() time.Time) *SessionRegistry {
	if clock != nil {
		r.now = clock
	}
	return r
}

// IssuePair mints a new access/refresh pair and records the refresh token
// as live. The access token is not tracked; it stays valid until expiry
// unless explicitly blacklisted.
func (r *SessionRegistry) IssuePair(ctx context.Context, user *User) (*TokenPair, error) {
	access, err := r.codec.IssueAccess(user)
	if err != nil {
		return nil, err
	}

	refresh, err := r.codec.IssueRefresh(user)
	if err != nil {
		return nil, err
	}

	ttl := r.codec.RefreshTTL()
	key := refreshKey(refresh)
	userKey := userIndexKey(user.ID.String())

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, user.ID.String(), ttl)
		pipe.SAdd(ctx, userKey, key)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return nil, goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateRefresh reports whether the refresh token is currently live and,
// when it is, the user ID it was issued to. The token is left in place.
func (r *SessionRegistry) ValidateRefresh(ctx context.Context, token string) (string, bool, error) {
	userID, err := r.client.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}
	return userID, true, nil
}

// ConsumeRefresh atomically claims single use of a refresh token. GETDEL
// guarantees that of any number of concurrent calls presenting the same
// token, exactly one observes it as live.
func (r *SessionRegistry) ConsumeRefresh(ctx context.Context, token string) (string, bool, error) {
	key := refreshKey(token)

	userID, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}

	if err := r.client.SRem(ctx, userIndexKey(userID), key).Err(); err != nil {
		// The token itself is already gone; a stale index entry is harmless.
		r.logger.Warn("failed to prune refresh token index for user %s: %v", userID, err)
	}

	return userID, true, nil
}

// InvalidateRefresh revokes a single refresh token. Revoking an unknown
// token is a no-op.
func (r *SessionRegistry) InvalidateRefresh(ctx context.Context, token string) error {
	key := refreshKey(token)

	userID, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return nil
		}
		return goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, userIndexKey(userID), key)
		return nil
	})
	if err != nil {
		return goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

// InvalidateAllForUser revokes every live refresh token issued to a user.
// Used after password changes so stolen refresh tokens die with the old
// credentials.
func (r *SessionRegistry) InvalidateAllForUser(ctx context.Context, userID string) error {
	userKey := userIndexKey(userID)

	keys, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return nil
		}
		return goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

// Blacklist revokes an access token for the remainder of its lifetime. The
// entry expires with the token, so the blacklist never grows past the live
// token window. Tokens already past expiry are skipped.
func (r *SessionRegistry) Blacklist(ctx context.Context, accessToken string) error {
	expiry, err := r.codec.DecodeExpiry(accessToken)
	if err != nil {
		return err
	}

	remaining := expiry.Sub(r.now())
	if remaining <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, blacklistKey(accessToken), "1", remaining).Err(); err != nil {
		return goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

// IsBlacklisted reports whether an access token has been revoked before
// its natural expiry.
func (r *SessionRegistry) IsBlacklisted(ctx context.Context, accessToken string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistKey(accessToken)).Result()
	if err != nil {
		return false, goerrors.Wrap(err, ErrRegistryUnavailable.Category, ErrRegistryUnavailable.Message).
			WithCode(goerrors.CodeInternal)
	}
	return n > 0, nil
}

func refreshKey(token string) string {
	return refreshKeyPrefix + digest(token)
}

func blacklistKey(token string) string {
	return blacklistKeyPrefix + digest(token)
}

func userIndexKey(userID string) string {
	return userIndexKeyPrefix + userID
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
