package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))
	data, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "key"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	buf := []byte("png")
	require.NoError(t, c.Set(ctx, "a", buf, time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("forever"), 0))
	buf[0] = 'x'

	data, hit, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("png"), data, "stored data is a copy")

	now = now.Add(2 * time.Minute)
	_, hit, _ = c.Get(ctx, "a")
	assert.False(t, hit, "expired")
	_, hit, _ = c.Get(ctx, "b")
	assert.True(t, hit)

	require.NoError(t, c.Delete(ctx, "b"))
	_, hit, _ = c.Get(ctx, "b")
	assert.False(t, hit)
}

func TestKey(t *testing.T) {
	k1 := Key("qr", "hello", "H", 512)
	k2 := Key("qr", "hello", "H", 512)
	k3 := Key("qr", "hello", "Q", 512)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, len("qr:")+64)
}

func TestNewBackends(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, "", "")
	require.NoError(t, err)
	assert.IsType(t, &NullCache{}, c)

	c, err = New(ctx, "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = New(ctx, "memcached", "")
	assert.Error(t, err)
}

func TestRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
