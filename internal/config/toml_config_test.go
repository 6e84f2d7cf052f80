package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTOML_MissingFileReturnsNil(t *testing.T) {
	cfg, err := LoadTOML(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadTOML_ParsesProjectIncludeExcludeAndPreprocessor(t *testing.T) {
	root := t.TempDir()
	body := `
[project]
root = "."

[include]
global = ["/opt/sourcemod/scripting/include"]
project = ["include"]

[exclude]
patterns = ["**/vendor/**"]

[preprocessor]
macro_expansion_depth = 8
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".spproject.toml"), []byte(body), 0o644))

	cfg, err := LoadTOML(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{filepath.Clean(root)}, cfg.Roots)
	assert.Equal(t, []string{filepath.Clean("/opt/sourcemod/scripting/include")}, cfg.GlobalIncludeDirs)
	assert.Equal(t, []string{filepath.Clean(filepath.Join(root, "include"))}, cfg.ProjectIncludeDirs)
	assert.Equal(t, []string{"**/vendor/**"}, cfg.Exclude)
	assert.Equal(t, 8, cfg.MacroExpansionDepth)
}

func TestLoad_PrefersKDLOverTOMLWhenBothPresent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".spproject.kdl"), []byte(`project { root "." }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".spproject.toml"), []byte("[project]\nroot = \"other\"\n"), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{filepath.Clean(root)}, cfg.Roots)
}

func TestLoad_FallsBackToDefaultWhenNoConfigFileExists(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{filepath.Clean(root)}, cfg.Roots)
}
