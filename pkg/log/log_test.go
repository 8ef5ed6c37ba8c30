package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for name, level := range tests {
		assert.Equal(t, level, ParseLevel(name), name)
	}
}

func TestLazy_NotEvaluatedBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	calls := 0
	value := Lazy(func() any {
		calls++

		return "expensive"
	})

	logger.DebugContext(context.Background(), "skipped", "value", value)
	assert.Equal(t, 0, calls)
	assert.Empty(t, buf.String())

	logger.InfoContext(context.Background(), "emitted", "value", value)
	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), "value=expensive")
}

func TestJSON(t *testing.T) {
	value := JSON(map[string]string{"kind": "connection-set-connection"})

	assert.Equal(t, `{"kind":"connection-set-connection"}`, value())
	assert.Equal(t, "(0+0i)", JSON(complex(0, 0))())
}
