// AngelaMos | 2026
// blacklist_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/core"
)

func newTestBlacklist(t *testing.T) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewBlacklist(rdb, time.Hour), mr
}

func TestBlacklistAddAndCheck(t *testing.T) {
	bl, _ := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "token-a", ReasonLogout))

	revoked, err := bl.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsBlacklisted(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistStoresHashNotToken(t *testing.T) {
	bl, mr := newTestBlacklist(t)

	require.NoError(t, bl.Add(context.Background(), "token-a", ReasonLogout))

	assert.False(t, mr.Exists(blacklistKeyPrefix+"token-a"))
	assert.True(t, mr.Exists(blacklistKeyPrefix+core.HashToken("token-a")))
}

func TestBlacklistEntryExpires(t *testing.T) {
	bl, mr := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "token-a", ReasonSecurity))

	mr.FastForward(2 * time.Hour)

	revoked, err := bl.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistReason(t *testing.T) {
	bl, _ := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "token-a", ReasonSecurity))

	reason, err := bl.Reason(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, string(ReasonSecurity), reason)

	reason, err = bl.Reason(ctx, "never-seen")
	require.NoError(t, err)
	assert.Empty(t, reason)
}
