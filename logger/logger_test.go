// file: logger/logger_test.go
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// InitLogger wires all four levels and creates a log file in LOG_DIR
func TestInitLogger(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_DIR", dir)

	require.NoError(t, InitLogger())
	assert.NotNil(t, Info)
	assert.NotNil(t, Warn)
	assert.NotNil(t, Error)
	assert.NotNil(t, Debug)

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

// Production silences debug output but keeps the other levels
func TestSetLogLevel_Production(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_DIR", dir)
	require.NoError(t, InitLogger())

	SetLogLevel("production")
	Debug.Println("should vanish")
	Info.Println("info line")

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.NotContains(t, string(content), "should vanish")
	assert.Contains(t, string(content), "info line")
}
