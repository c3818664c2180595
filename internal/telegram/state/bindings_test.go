package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindings(t *testing.T) {
	b := NewBindings(time.Hour)

	_, ok := b.Get(1)
	assert.False(t, ok)
	assert.False(t, b.SetLastQuery(1, "query"), "unbound chat")

	b.Bind(1, "proj-a")
	require.True(t, b.SetLastQuery(1, "deadline"))

	got, ok := b.Get(1)
	require.True(t, ok)
	assert.Equal(t, Binding{ProjectID: "proj-a", LastQuery: "deadline"}, got)

	_, ok = b.Get(2)
	assert.False(t, ok, "bindings are per chat")

	b.Bind(1, "proj-b")
	got, _ = b.Get(1)
	assert.Equal(t, Binding{ProjectID: "proj-b"}, got, "rebinding forgets the last query")

	b.Unbind(1)
	_, ok = b.Get(1)
	assert.False(t, ok)
}

func TestBindingsExpire(t *testing.T) {
	b := NewBindings(20 * time.Millisecond)
	b.Bind(7, "proj")

	assert.Eventually(t, func() bool {
		_, ok := b.Get(7)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
