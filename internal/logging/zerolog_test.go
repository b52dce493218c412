package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "kind", "tissues")
	log.Warn(ctx, "wrn", "err", errors.New("boom"))
	log.Error(ctx, "err", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, float64(1), lines[0]["a"])
	assert.Equal(t, "tissues", lines[1]["kind"])
	assert.Equal(t, "boom", lines[2]["err"])
	assert.Equal(t, "dangling", lines[3]["!BADKEY"])
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf)).With("component", "console")
	log.Info(context.Background(), "hello", "k", "v")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "console", lines[0]["component"])
	assert.Equal(t, "v", lines[0]["k"])
	assert.Equal(t, "hello", lines[0]["message"])
}

func TestNew_SelectsBackendAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Backend: BackendSlog, Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	buf.Reset()
	zl := New(Options{Backend: BackendZerolog, Level: "debug", Output: &buf})
	_, ok := zl.(*ZerologLogger)
	require.True(t, ok)
	zl.Debug(context.Background(), "visible")
	assert.Contains(t, buf.String(), `"message":"visible"`)
}

func TestNop_DoesNothing(t *testing.T) {
	l := Nop().With("a", 1)
	l.Info(context.Background(), "x")
}

func TestZerologLogger_ContextPairs(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	ctx := ContextWith(context.Background(), "kind", "shipments")
	log.Warn(ctx, "request failed", "status", 503)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shipments", lines[0]["kind"])
	assert.Equal(t, float64(503), lines[0]["status"])
}
