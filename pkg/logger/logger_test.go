package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintfWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New("cron", base).Printf("run %s at %d", "job", 6)

	out := buf.String()
	assert.Contains(t, out, "component=cron")
	assert.Contains(t, out, `msg="run job at 6"`)
	assert.Contains(t, out, "level=DEBUG")
}

func TestPrintfRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	New("cron", base).Printf("wake")

	assert.Empty(t, buf.String())
}
