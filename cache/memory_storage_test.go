package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, found, err := s.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.False(t, found)

	value := []byte(`{"id":7}`)
	require.NoError(t, s.Set(ctx, "currentUser", value))
	value[0] = 'X' // caller mutation must not leak in

	got, found, err := s.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":7}`, string(got))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "currentUser"))
	require.NoError(t, s.Delete(ctx, "currentUser"))
	_, found, _ = s.Get(ctx, "currentUser")
	assert.False(t, found)
}
