package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/spoor/internal/testutil"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote "+filepath.Join(dir, "spoor.yml"))
	assert.FileExists(t, filepath.Join(dir, "spoor.yml"))

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, errOut, err := execute(t, "init", "--dir", dir)
		require.Error(t, err)
		assert.Equal(t, "project already initialized", err.Error())
		assert.Contains(t, errOut, "--force")
	})

	t.Run("force overwrites", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "spoor.yml"), []byte("junk"), 0644))
		_, _, err := execute(t, "init", "--dir", dir, "--force")
		require.NoError(t, err)
	})

	t.Run("written config drives analyze", func(t *testing.T) {
		sample := testutil.WriteFile(t, t.TempDir(), "sample.yaml", testutil.SampleEventLog)
		out, _, err := execute(t, "analyze", sample, "--config", filepath.Join(dir, "spoor.yml"))
		require.NoError(t, err)
		assert.Contains(t, out, "coverage zerg: 0:3.17%")
	})
}
