package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"})
	logger.Info("fetched leads", "count", 3)
	logger.Debug("hidden in production")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "fetched leads", entry["msg"])
	assert.Equal(t, "lead-dashboard", entry["service"])
	assert.EqualValues(t, 3, entry["count"])
	assert.Contains(t, entry, "source")
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, nil).Debug("mounted view", "path", "/charts")
	assert.Contains(t, buf.String(), "msg=\"mounted view\"")
	assert.Contains(t, buf.String(), "path=/charts")
}
