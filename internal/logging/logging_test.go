package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestLoggerFromContextAttachesIDs(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelDebug, FormatJSON)
	t.Cleanup(func() { InitLogger(LevelInfo, FormatText) })

	ctx, runID := WithRunID(context.Background())
	_, err := uuid.Parse(runID)
	require.NoError(t, err)
	ctx = WithAlignment(ctx, "track-7")

	LoggerFromContext(ctx).Warn("overlapping metadata", "index", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, runID, entry["run_id"])
	assert.Equal(t, "track-7", entry["alignment"])
	assert.Equal(t, "overlapping metadata", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelWarn, FormatText)
	t.Cleanup(func() { InitLogger(LevelInfo, FormatText) })

	GetLogger().Debug("hidden")
	assert.Empty(t, buf.String())
}
