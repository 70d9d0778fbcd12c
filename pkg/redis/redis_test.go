package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return Wrap(rdb, zap.NewNop()), mr
}

func TestBlacklistToken(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))
	ok, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "TTL 到期后应自动移出黑名单")
}

func TestBlacklistToken_ExpiredTTL(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.BlacklistToken(ctx, "jti-2", 0))
	ok, err := c.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckRateLimit(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "第 %d 次请求应放行", i+1)
	}
	ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "超出限额应拒绝")

	mr.FastForward(time.Minute + time.Second)
	ok, err = c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "窗口过期后应重新计数")
}

func TestBlob_GetMissingAndRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, found, err := c.GetBlob(ctx, "grades")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetBlob(ctx, "grades", []byte(`[]`)))
	v, found, err := c.GetBlob(ctx, "grades")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(v))
}
