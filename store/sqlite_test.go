package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteSetGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	found, val, err := s.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)

	assert.NoError(t, s.Set(ctx, "key", "value", time.Minute))
	found, val, err = s.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)

	str, err := As[string](val)
	assert.NoError(t, err)
	assert.Equal(t, "value", str)
}

func TestSQLiteNotTagCapable(t *testing.T) {
	s := newTestSQLite(t)
	_, ok := s.(TagStore)
	assert.False(t, ok)
}

func TestSQLiteExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	assert.NoError(t, s.Set(ctx, "key", "value", 20*time.Millisecond))
	found, err := s.Has(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)

	time.Sleep(30 * time.Millisecond)
	found, _, err = s.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteForever(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	// expires_at of 0 marks permanent retention.
	assert.NoError(t, s.Set(ctx, "key", "value", Forever))
	time.Sleep(20 * time.Millisecond)

	found, err := s.Has(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
}

func TestSQLiteOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	assert.NoError(t, s.Set(ctx, "key", "first", time.Minute))
	assert.NoError(t, s.Set(ctx, "key", "second", time.Minute))

	_, val, err := s.Get(ctx, "key")
	assert.NoError(t, err)
	str, err := As[string](val)
	assert.NoError(t, err)
	assert.Equal(t, "second", str)
}

func TestSQLiteForgetAndDeleteMany(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	assert.NoError(t, s.Set(ctx, "a", 1, time.Minute))
	assert.NoError(t, s.Set(ctx, "b", 2, time.Minute))

	removed, err := s.Forget(ctx, "a")
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Forget(ctx, "a")
	assert.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, s.DeleteMany(ctx, []string{"b", "missing"}))
	found, err := s.Has(ctx, "b")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteRemember(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	calls := 0
	compute := func(ctx context.Context) (any, error) {
		calls++
		return map[string]string{"key": "value"}, nil
	}

	val, err := s.Remember(ctx, "key", time.Minute, compute)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	got, err := As[map[string]string](val)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "value"}, got)

	val, err = s.Remember(ctx, "key", time.Minute, compute)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	got, err = As[map[string]string](val)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "value"}, got)
}
