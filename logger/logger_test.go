package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf})
	require.NoError(t, err)

	l.Info("extracting archive")
	l.Debug("hidden at info level")

	assert.Contains(t, buf.String(), "extracting archive")
	assert.NotContains(t, buf.String(), "hidden at info level")
}

func TestNewDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf, Debug: true})
	require.NoError(t, err)

	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf})
	require.NoError(t, err)

	l.WithField("tutorial", "sms-basics").Warn("build output missing")
	assert.Contains(t, buf.String(), "sms-basics")
	assert.Contains(t, buf.String(), "build output missing")
}

func TestNewWithLogDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf, LogDir: dir})
	require.NoError(t, err)

	l.Error("clone failed")

	content, err := os.ReadFile(filepath.Join(dir, "devtut.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"clone failed"`)
}

func TestNullLogger(t *testing.T) {
	l := NewNullLogger()
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.WithField("k", "v").Error("nothing")
	})
}
