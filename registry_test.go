package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	auth "github.com/goliatone/go-auth-service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*auth.SessionRegistry, *auth.TokenCodec, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	codec := auth.NewTokenCodec(codecConfig())
	registry := auth.NewSessionRegistry(client, codec)

	return registry, codec, mr
}

func TestSessionRegistryIssuePair(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	user := codecUser()

	pair, err := registry.IssuePair(context.Background(), user)
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	userID, live, err := registry.ValidateRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, live)
	assert.Equal(t, user.ID.String(), userID)
}

func TestSessionRegistryValidateUnknownToken(t *testing.T) {
	registry, _, _ := newTestRegistry(t)

	_, live, err := registry.ValidateRefresh(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, live)
}

func TestSessionRegistryConsumeRefreshIsSingleUse(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	user := codecUser()

	pair, err := registry.IssuePair(context.Background(), user)
	require.NoError(t, err)

	userID, live, err := registry.ConsumeRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, live)
	assert.Equal(t, user.ID.String(), userID)

	// replaying the same token must fail
	_, live, err = registry.ConsumeRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, live)

	_, live, err = registry.ValidateRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestSessionRegistryInvalidateRefresh(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	user := codecUser()

	pair, err := registry.IssuePair(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, registry.InvalidateRefresh(context.Background(), pair.RefreshToken))

	_, live, err := registry.ValidateRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, live)

	// unknown tokens are a no-op, not an error
	assert.NoError(t, registry.InvalidateRefresh(context.Background(), "never-issued"))
}

func TestSessionRegistryInvalidateAllForUser(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	user := codecUser()
	other := codecUser()
	other.ID = uuid.New()

	first, err := registry.IssuePair(context.Background(), user)
	require.NoError(t, err)
	second, err := registry.IssuePair(context.Background(), user)
	require.NoError(t, err)
	bystander, err := registry.IssuePair(context.Background(), other)
	require.NoError(t, err)

	require.NoError(t, registry.InvalidateAllForUser(context.Background(), user.ID.String()))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, live, err := registry.ValidateRefresh(context.Background(), token)
		require.NoError(t, err)
		assert.False(t, live)
	}

	// the other user's session survives
	_, live, err := registry.ValidateRefresh(context.Background(), bystander.RefreshToken)
	require.NoError(t, err)
	assert.True(t, live)
}

func TestSessionRegistryBlacklist(t *testing.T) {
	registry, codec, mr := newTestRegistry(t)
	user := codecUser()

	token, err := codec.IssueAccess(user)
	require.NoError(t, err)

	revoked, err := registry.IsBlacklisted(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, registry.Blacklist(context.Background(), token))

	revoked, err = registry.IsBlacklisted(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, revoked)

	// entry must expire with the token itself
	mr.FastForward(16 * time.Minute)

	revoked, err = registry.IsBlacklisted(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionRegistryBlacklistSkipsExpiredTokens(t *testing.T) {
	registry, _, mr := newTestRegistry(t)

	past := time.Now().Add(-time.Hour)
	expiredCodec := auth.NewTokenCodec(codecConfig()).WithClock(func() time.Time {
		return past
	})

	token, err := expiredCodec.IssueAccess(codecUser())
	require.NoError(t, err)

	require.NoError(t, registry.Blacklist(context.Background(), token))

	// nothing was written for a token already past its expiry
	assert.Empty(t, mr.Keys())
}

func TestSessionRegistryBlacklistRejectsGarbage(t *testing.T) {
	registry, _, _ := newTestRegistry(t)

	err := registry.Blacklist(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestSessionRegistryRefreshExpiresWithTTL(t *testing.T) {
	registry, _, mr := newTestRegistry(t)

	pair, err := registry.IssuePair(context.Background(), codecUser())
	require.NoError(t, err)

	mr.FastForward(8 * 24 * time.Hour)

	_, live, err := registry.ValidateRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, live)
}
