package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestManager(stdout *bytes.Buffer) *SlogManager {
	m := NewSlogManager()
	m.stdout = stdout
	return m
}

func TestSetupWritesToStdoutAndFile(t *testing.T) {
	var stdout, file bytes.Buffer
	m := newTestManager(&stdout)
	m.Setup(&file, "info")
	m.Logger().Info("trigger fired", "event", "raidersGone")

	assert.Contains(t, stdout.String(), "trigger fired")
	assert.Contains(t, file.String(), "event=raidersGone")
}

func TestSetupLevelFilters(t *testing.T) {
	var stdout bytes.Buffer
	m := newTestManager(&stdout)
	m.Setup(nil, "warn")
	m.Logger().Info("quiet")
	m.Logger().Warn("loud")

	assert.NotContains(t, stdout.String(), "quiet")
	assert.Contains(t, stdout.String(), "loud")
}

func TestLoggerBeforeSetup(t *testing.T) {
	assert.Same(t, slog.Default(), NewSlogManager().Logger())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestMultiHandlerRespectsEachLevel(t *testing.T) {
	var debug, errs bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		nil,
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("craft", "falcon-1").WithGroup("ai")
	log.Debug("aiming", "error", 0.05)

	assert.Contains(t, debug.String(), "craft=falcon-1")
	assert.Contains(t, debug.String(), "ai.error=0.05")
	assert.Empty(t, errs.String())
	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug-1))
}
