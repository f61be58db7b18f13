package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// catrEnv lists every environment variable catr reads.
var catrEnv = []string{
	"CATR_NUMBER",
	"CATR_NUMBER_NONBLANK",
	"CATR_LOG_LEVEL",
	"CATR_LOG_FORMAT",
	"CATR_CONFIG_FILE",
}

// CreateTempWorkspace creates a temporary directory, makes it the working
// directory and HOME for the test, and clears CATR_ variables so no outside
// configuration leaks in.
func CreateTempWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, key := range catrEnv {
		t.Setenv(key, "")
	}

	return dir
}

// WriteFiles writes name -> content pairs under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
