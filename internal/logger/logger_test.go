package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONInProduction(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(false, buf)

	WithFields(logrus.Fields{"user_id": "u1"}).Info("flagged")
	Log().Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"user_id":"u1"`)
	assert.Contains(t, out, `"msg":"flagged"`)
	assert.NotContains(t, out, "hidden")
}

func TestInit_DebugText(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(true, buf)

	Log().Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestRotatingOutput_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w := RotatingOutput(dir, "store.log")

	_, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "store.log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}
