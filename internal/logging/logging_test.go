package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{" Warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"TRACE", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", false)

	log.Info().Msg("hidden")
	log.Warn().Str("tag", "link").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "tag=link") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "WRN") {
		t.Errorf("expected console level marker: %q", out)
	}
}
