package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		mode    string
		verbose bool
		debug   bool
	}{
		{"dev", false, false},
		{"dev", true, true},
		{"production", false, false},
		{"PROD", true, true},
	}
	for _, tt := range tests {
		l, err := New(tt.mode, tt.verbose)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.mode, err)
		}
		if got := l.Core().Enabled(zap.DebugLevel); got != tt.debug {
			t.Errorf("New(%q, %v) debug enabled = %v", tt.mode, tt.verbose, got)
		}
		if !l.Core().Enabled(zap.InfoLevel) {
			t.Errorf("New(%q) should log info", tt.mode)
		}
	}
}

func TestQuiet(t *testing.T) {
	l := Quiet()
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("Quiet logger should not log info")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("Quiet logger should log warnings")
	}
}
