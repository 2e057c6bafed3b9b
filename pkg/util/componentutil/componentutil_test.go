package componentutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"
)

func plain(t *testing.T, c component.Component) string {
	b := new(strings.Builder)
	require.NoError(t, (&codec.Plain{}).Marshal(b, c))
	return b.String()
}

func TestParseTextComponent(t *testing.T) {
	text, err := ParseTextComponent("Direct connections to this server are not allowed.")
	require.NoError(t, err)
	assert.Equal(t, "Direct connections to this server are not allowed.", plain(t, text))

	text, err = ParseTextComponent("§cGo away")
	require.NoError(t, err)
	assert.Equal(t, "Go away", plain(t, text))

	text, err = ParseTextComponent(`{"text":"json reason"}`)
	require.NoError(t, err)
	assert.Equal(t, "json reason", plain(t, text))

	_, err = ParseTextComponent(`{"text":`)
	require.Error(t, err)
}
