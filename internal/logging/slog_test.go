package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSlog(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newSlog(slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "restoring session", "keys", 2)
	log.Info(ctx, "session restored", "user", "alice")
	log.Warn(ctx, "loading collection failed", "kind", "tissues")
	log.Error(ctx, "token signing failed", "status", 500)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", `msg="restoring session"`, "keys=2",
		"level=INFO", "user=alice",
		"level=WARN", "kind=tissues",
		"level=ERROR", "status=500",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_LevelFilters(t *testing.T) {
	log, buf := newSlog(slog.LevelWarn)
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden too")
	log.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newSlog(slog.LevelDebug)

	log.With("component", "http").Info(context.Background(), "request done", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "component=http")
	assert.Contains(t, out, "status=200")
}

func TestSlogLogger_ContextPairsComeFirst(t *testing.T) {
	log, buf := newSlog(slog.LevelDebug)

	ctx := ContextWith(context.Background(), "kind", "requests")
	ctx = ContextWith(ctx, "attempt", 1)
	log.Warn(ctx, "request failed", "error", "refused")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "kind=requests attempt=1 error=refused")
}

func TestSlogLogger_NilContext(t *testing.T) {
	log, buf := newSlog(slog.LevelDebug)

	//nolint:staticcheck // a nil context must not panic
	log.Info(nil, "no context")

	assert.Contains(t, buf.String(), `msg="no context"`)
}

func TestContextWith_DoesNotAlterParent(t *testing.T) {
	parent := ContextWith(context.Background(), "a", 1)
	_ = ContextWith(parent, "b", 2)

	assert.Equal(t, []any{"a", 1, "x", 0}, withContextArgs(parent, []any{"x", 0}))
	assert.Equal(t, []any{"x", 0}, withContextArgs(context.Background(), []any{"x", 0}))
}
