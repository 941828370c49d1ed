package scan_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
	"github.com/IsaacEarlJr/tigerRAD/internal/scan"
)

// writeTree creates empty files at the given tree-relative paths.
func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("pvol"), 0o644))
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"2024/12/12/KDIX/KDIX20241212_093015_V06",
		"2024/12/12/KDIX/KDIX20241212_100000_V06",
		"2024/12/12/KDIX/KDIX20241212_235959_V06_MDM",
		"2024/12/13/KDIX/deep/nested/KDIX20241213_010000_V06",
	)

	files, err := scan.Walk(root, "_MDM")
	require.NoError(t, err)
	require.Len(t, files, 4)

	byName := map[string]bool{}
	for _, f := range files {
		byName[filepath.Base(f.Path)] = f.Valid
	}
	assert.True(t, byName["KDIX20241212_093015_V06"])
	assert.True(t, byName["KDIX20241212_100000_V06"])
	assert.False(t, byName["KDIX20241212_235959_V06_MDM"], "metadata file must be marked invalid")
	assert.True(t, byName["KDIX20241213_010000_V06"], "nesting depth must not matter")
}

func TestWalk_EmptyTree(t *testing.T) {
	files, err := scan.Walk(t.TempDir(), "_MDM")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := scan.Walk(filepath.Join(t.TempDir(), "nope"), "_MDM")
	require.Error(t, err)
}

func TestMapTree(t *testing.T) {
	inRoot := t.TempDir()
	outRoot := t.TempDir()
	writeTree(t, inRoot,
		"2024/12/12/KDIX/KDIX20241212_093015_V06",
		"2024/12/12/KDIX/KDIX20241212_100000_V06_MDM",
		"2024/12/13/KDIX/KDIX20241213_010000_V06",
	)

	files, err := scan.Walk(inRoot, "_MDM")
	require.NoError(t, err)

	pairs, err := scan.MapTree(inRoot, outRoot, files, ".h5")
	require.NoError(t, err)
	require.Len(t, pairs, 2, "invalid files are not mapped")

	outputs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		outputs = append(outputs, p.Output)

		// Output directory mirrors the input's relative directory and exists.
		info, err := os.Stat(filepath.Dir(p.Output))
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		// Round trip recovers the input.
		in, err := domain.InputFromOutput(inRoot, outRoot, p.Output, ".h5")
		require.NoError(t, err)
		assert.Equal(t, p.Input, in)
	}

	sort.Strings(outputs)
	assert.Equal(t, []string{
		filepath.Join(outRoot, "2024", "12", "12", "KDIX", "KDIX20241212_093015_V06.h5"),
		filepath.Join(outRoot, "2024", "12", "13", "KDIX", "KDIX20241213_010000_V06.h5"),
	}, outputs)
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, scan.EnsureDir(dir))
	require.NoError(t, scan.EnsureDir(dir), "creating an existing directory is a no-op")
}
