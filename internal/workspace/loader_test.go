package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/vfs"
)

func TestLoad_SkipsExcludedAndNonSourceFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "include"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.sp"), []byte("int x;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "include", "util.inc"), []byte("int y;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "ignored.sp"), []byte("bad\n"), 0o644))

	cfg := config.Default()
	cfg.Roots = []string{root}

	v := vfs.New(ids.NewInterner())
	count, err := Load(context.Background(), v, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	snap := v.Snapshot()
	_, ok := snap.FileByPath(mustAbs(t, filepath.Join(root, "plugin.sp")))
	assert.True(t, ok)
	_, ok = snap.FileByPath(mustAbs(t, filepath.Join(root, ".git", "ignored.sp")))
	assert.False(t, ok)
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
