package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string
	Count int
}

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "hello", time.Minute))

	var s string
	require.NoError(t, mc.Get(ctx, "k", &s))
	assert.Equal(t, "hello", s)
}

func TestMemoryCacheGetMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var s string
	assert.ErrorIs(t, mc.Get(context.Background(), "absent", &s), ErrCacheMiss)
}

func TestMemoryCacheGetStruct(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := &payload{Name: "aapl", Count: 3}
	require.NoError(t, mc.Set(ctx, "k", in, time.Minute))

	// stored as a pointer, read back into a value
	var byValue payload
	require.NoError(t, mc.Get(ctx, "k", &byValue))
	assert.Equal(t, *in, byValue)

	// and back into a pointer
	var byPtr *payload
	require.NoError(t, mc.Get(ctx, "k", &byPtr))
	assert.Equal(t, in, byPtr)
}

func TestMemoryCacheGetTypeMismatch(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", &payload{}, time.Minute))

	var n int
	assert.Error(t, mc.Get(ctx, "k", &n))
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestMemoryCacheDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mc.Delete(ctx, "k"))
	ok, err = mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	got, err := mc.TryLock(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = mc.TryLock(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.False(t, got, "held lock cannot be re-acquired")

	require.NoError(t, mc.Unlock(ctx, "lock"))
	got, err = mc.TryLock(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestMemoryCacheTryLockExpires(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	got, err := mc.TryLock(ctx, "lock", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, got)

	time.Sleep(20 * time.Millisecond)
	got, err = mc.TryLock(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, got, "expired lock is free")
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))

	// touch "a" so "b" is the eviction candidate
	var n int
	require.NoError(t, mc.Get(ctx, "a", &n))
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	ok, err := mc.Exists(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = mc.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, GenerateKey("quote", "AAPL"), GenerateKey("quote", "AAPL"))
	assert.NotEqual(t, GenerateKey("quote", "AAPL"), GenerateKey("quote", "MSFT"))

	k := GenerateKeyWithParams("signal", "AAPL", "1h")
	assert.Contains(t, k, "signal")
}
