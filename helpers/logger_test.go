package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "error.log")

	l := NewLogger(tmpFile)
	l.LogError("notifier", errors.New("status 502"))
	l.LogError("crawler", errors.New("timeout"))
	l.LogInfo("Found %d matching bounty programs", 2)

	data, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[notifier] status 502")
	assert.Contains(t, string(data), "[crawler] timeout")
	assert.NotContains(t, string(data), "matching bounty programs")
}

func TestLoggerWithoutFile(t *testing.T) {
	l := NewLogger("")
	assert.NotPanics(t, func() {
		l.LogError("worker", errors.New("boom"))
	})
}
