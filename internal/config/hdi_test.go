package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHDI(t *testing.T) {
	writeHDI := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "hdi.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("loads scores", func(t *testing.T) {
		hdi, err := LoadHDI(writeHDI(t, "USA: 0.927\nDEU: 0.950\nIND: 0.644\n"))
		require.NoError(t, err)
		assert.Len(t, hdi, 3)
		assert.Equal(t, 0.927, hdi["USA"])
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadHDI(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty map fails", func(t *testing.T) {
		_, err := LoadHDI(writeHDI(t, "{}\n"))
		assert.Error(t, err)
	})

	t.Run("out-of-range score fails", func(t *testing.T) {
		_, err := LoadHDI(writeHDI(t, "USA: 92.7\n"))
		assert.Error(t, err)
	})
}
