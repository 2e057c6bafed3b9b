package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins", "enforcedomain", DefaultFileName)

	created, err := EnsureFile(path)
	require.NoError(t, err)
	require.True(t, created)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigBytes, b)

	require.NoError(t, os.WriteFile(path, []byte("domain: mc.example.org\n"), 0o644))
	created, err = EnsureFile(path)
	require.NoError(t, err)
	require.False(t, created)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "domain: mc.example.org\n", string(b))
}
