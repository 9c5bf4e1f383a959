package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/store"
	_ "github.com/brindle-bt/brindle/store/redis"
)

func openStore(t *testing.T) (store.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := store.Open(&store.DriverConfig{
		Name:   "redis",
		Params: map[string]string{"addr": mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, mr
}

func TestRedisPutThenGetRoundTrips(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	digest, err := s.Put(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, store.Address([]byte("hello")), digest)

	got, err := s.Get(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestRedisPutIsIdempotent(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	d1, err := s.Put(ctx, []byte("same"))
	require.NoError(t, err)
	d2, err := s.Put(ctx, []byte("same"))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestRedisGetUnknownDigestIsNotFound(t *testing.T) {
	s, _ := openStore(t)
	_, err := s.Get(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Equal(t, errors.NotFound, errors.CodeOf(err))
}

func TestRedisHasReflectsPresence(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	ok, err := s.Has(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	digest, err := s.Put(ctx, []byte("x"))
	require.NoError(t, err)

	ok, err = s.Has(ctx, digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisDeleteRemovesBlob(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	digest, err := s.Put(ctx, []byte("gone soon"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, digest))

	ok, err := s.Has(ctx, digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDeleteUnknownDigestIsNotAnError(t *testing.T) {
	s, _ := openStore(t)
	assert.NoError(t, s.Delete(context.Background(), "deadbeef"))
}
