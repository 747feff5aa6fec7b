package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsayed85/quick-rag/internal/config"
)

func TestNew_InvalidSettings(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestNewFileOnly_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag.log")
	l, err := NewFileOnly(config.LogConfig{Level: "debug", File: path})
	require.NoError(t, err)

	l.Debug("transition")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"transition"`)
}

func TestNewFileOnly_NoFileIsNop(t *testing.T) {
	l, err := NewFileOnly(config.LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
