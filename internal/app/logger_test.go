package app

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"  WARN ": slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"banana":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	log := NewLogger("error")
	if log.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatal("info must be disabled at level error")
	}
	if !log.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("error must be enabled at level error")
	}
}
