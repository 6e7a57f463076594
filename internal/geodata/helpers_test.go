package geodata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureDir = "testdata"

// writeFile creates dir/rel with content, making parent directories.
func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()

	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// copyFixture copies the fixture dataset into a fresh temp dir.
func copyFixture(t *testing.T) string {
	t.Helper()

	dst := t.TempDir()
	for _, sub := range []string{"json", "csv"} {
		entries, err := os.ReadDir(filepath.Join(fixtureDir, sub))
		require.NoError(t, err)

		for _, e := range entries {
			b, err := os.ReadFile(filepath.Join(fixtureDir, sub, e.Name()))
			require.NoError(t, err)
			writeFile(t, dst, filepath.Join(sub, e.Name()), string(b))
		}
	}

	return dst
}
