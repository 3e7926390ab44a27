package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/cache"
)

const testSecret = "test-secret-key"

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("user-123", "admin@salonlink.in", "ADMIN", testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin@salonlink.in", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-123", "admin@salonlink.in", "ADMIN", testSecret, 24)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "a-different-secret")
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestValidateJWTExpired(t *testing.T) {
	token, err := GenerateJWT("user-123", "admin@salonlink.in", "ADMIN", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func setupBlacklist(t *testing.T) *TokenBlacklist {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { client.Close() })

	return NewTokenBlacklist(client)
}

func TestBlacklistRevokesToken(t *testing.T) {
	blacklist := setupBlacklist(t)
	ctx := context.Background()

	token, err := GenerateJWT("user-123", "caller@salonlink.in", "LEAD_CALLER", testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
	require.NoError(t, err)
	assert.Equal(t, "LEAD_CALLER", claims.Role)

	require.NoError(t, blacklist.Add(ctx, token, time.Hour))

	_, err = ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
	assert.ErrorContains(t, err, "revoked")
}

func TestBlacklistDoesNotAffectOtherTokens(t *testing.T) {
	blacklist := setupBlacklist(t)
	ctx := context.Background()

	revoked, err := GenerateJWT("user-1", "a@salonlink.in", "ADMIN", testSecret, 24)
	require.NoError(t, err)
	kept, err := GenerateJWT("user-2", "b@salonlink.in", "ADMIN", testSecret, 24)
	require.NoError(t, err)

	require.NoError(t, blacklist.Add(ctx, revoked, time.Hour))

	_, err = ValidateJWTWithBlacklist(ctx, kept, testSecret, blacklist)
	assert.NoError(t, err)
}

func TestValidateJWTWithNilBlacklist(t *testing.T) {
	token, err := GenerateJWT("user-123", "admin@salonlink.in", "ADMIN", testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateJWTWithBlacklist(context.Background(), token, testSecret, nil)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}
