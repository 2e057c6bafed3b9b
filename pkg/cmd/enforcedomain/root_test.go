package enforcedomain

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/configs"
	"go.minekube.com/enforcedomain/pkg/version"
)

func TestVersionCommand(t *testing.T) {
	app := App()
	assert.Equal(t, version.String(), app.Version, "App version should match version package")

	help, err := app.ToMarkdown()
	require.NoError(t, err)
	assert.Contains(t, help, "version")
	assert.Contains(t, help, "-V")
	assert.Contains(t, help, "--version")
	assert.Contains(t, app.Description, "configured domain")
	assert.NotContains(t, app.Description, "http")

	flags := make(map[string]bool)
	for _, flag := range app.Flags {
		for _, name := range flag.Names() {
			if flags[name] {
				t.Errorf("Flag conflict detected: %s", name)
			}
			flags[name] = true
		}
	}
	for _, name := range []string{"verbosity", "v", "config", "c", "debug", "d"} {
		assert.True(t, flags[name], "flag %s should exist", name)
	}

	out := new(bytes.Buffer)
	app.Writer = out
	require.NoError(t, app.Run([]string{"enforcedomain", "version"}))
	assert.Equal(t, version.UserAgent()+"\n", out.String())
}

func TestConfigCommand(t *testing.T) {
	app := App()
	out := new(bytes.Buffer)
	app.Writer = out
	require.NoError(t, app.Run([]string{"enforcedomain", "config"}))
	assert.Equal(t, string(configs.DefaultConfigBytes), out.String())
}

func TestRenderDefaultConfig(t *testing.T) {
	for _, format := range []string{"yml", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			b, err := renderDefaultConfig(format)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "config."+format)
			require.NoError(t, os.WriteFile(path, b, 0o644))
			c, err := config.LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, config.Default(), c)
		})
	}

	_, err := renderDefaultConfig("xml")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(false, 0)
	require.NoError(t, err)
	assert.True(t, log.Enabled())
	assert.False(t, log.V(1).Enabled())

	log, err = newLogger(true, 2)
	require.NoError(t, err)
	assert.True(t, log.V(2).Enabled())
}
