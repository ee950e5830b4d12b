package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSubDir(t *testing.T) {
	base := t.TempDir()
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	dir, err := EnsureSubDir("exports")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, "exports", filepath.Base(dir))

	// Repeated calls are a no-op.
	again, err := EnsureSubDir("exports")
	require.NoError(t, err)
	require.Equal(t, dir, again)
}
