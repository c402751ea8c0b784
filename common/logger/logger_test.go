package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeWithWriter_TeesJSON(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	var buf bytes.Buffer
	log, err := InitializeWithWriter("production", &buf)
	require.NoError(t, err)

	zap.L().Info("catalog ready", zap.String("component", "test"))
	_ = log.Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "catalog ready", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "timestamp")
}
