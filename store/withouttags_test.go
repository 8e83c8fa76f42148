package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithoutTagsStripsCapability(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(ctx)
	defer s.Close()

	_, ok := s.(TagStore)
	assert.True(t, ok)

	wrapped := WithoutTags(s)
	_, ok = wrapped.(TagStore)
	assert.False(t, ok, "wrapper must not expose the tag capability")
}

func TestWithoutTagsPassesThrough(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(ctx)
	defer s.Close()
	wrapped := WithoutTags(s)

	assert.NoError(t, wrapped.Set(ctx, "key", "value", time.Minute))

	// Same underlying entries.
	found, val, err := s.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", val)

	found, val, err = wrapped.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", val)
}
