package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	data, err := ParseCallback(EncodeCallback("action", ActionAsk))
	require.NoError(t, err)
	assert.Equal(t, &CallbackData{Action: "action", Value: ActionAsk}, data)

	data, err = ParseCallback("action:a:b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", data.Value)

	for _, bad := range []string{"", "action", ":ask", "action:"} {
		_, err := ParseCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestSearchResultsKeyboard(t *testing.T) {
	kb := NewBuilder().SearchResultsKeyboard()
	require.Len(t, kb.InlineKeyboard, 2)

	ask := kb.InlineKeyboard[0][0]
	require.NotNil(t, ask.CallbackData)
	assert.Equal(t, "action:ask", *ask.CallbackData)

	unbind := kb.InlineKeyboard[1][0]
	require.NotNil(t, unbind.CallbackData)
	assert.Equal(t, "action:unbind", *unbind.CallbackData)
}
