package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/store"
	_ "github.com/brindle-bt/brindle/store/memory"
)

func openStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(&store.DriverConfig{Name: "memory"})
	require.NoError(t, err)
	return s
}

func TestPutThenGetRoundTrips(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	digest, err := s.Put(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, store.Address([]byte("hello")), digest)

	got, err := s.Get(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestPutIsIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	d1, err := s.Put(ctx, []byte("same"))
	require.NoError(t, err)
	d2, err := s.Put(ctx, []byte("same"))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestGetUnknownDigestIsNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Equal(t, errors.NotFound, errors.CodeOf(err))
}

func TestHasReflectsPresence(t *testing.T) {
	s := openStore(t)
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

func TestDeleteRemovesBlob(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	digest, err := s.Put(ctx, []byte("gone soon"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, digest))

	ok, err := s.Has(ctx, digest)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, digest)
	assert.Equal(t, errors.NotFound, errors.CodeOf(err))
}

func TestDeleteUnknownDigestIsNotAnError(t *testing.T) {
	s := openStore(t)
	assert.NoError(t, s.Delete(context.Background(), "deadbeef"))
}

func TestOpenUnknownDriverErrors(t *testing.T) {
	_, err := store.Open(&store.DriverConfig{Name: "nonexistent"})
	require.Error(t, err)
}
