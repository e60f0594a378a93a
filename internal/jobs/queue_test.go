package jobs

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsynqLoggerFatalExits(t *testing.T) {
	orig := exit
	t.Cleanup(func() { exit = orig })
	var code int
	exited := false
	exit = func(c int) { code, exited = c, true }

	var buf bytes.Buffer
	logger := asynqLogger{slog.New(slog.NewTextHandler(&buf, nil))}
	logger.Fatal("redis ", "unreachable")

	assert.True(t, exited)
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "redis unreachable")
}

func TestAsynqLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := asynqLogger{slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	out := buf.String()
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		assert.Contains(t, out, "level="+level)
	}
}
