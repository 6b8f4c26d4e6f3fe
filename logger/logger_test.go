package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
		err  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"WARNING", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if (err != nil) != tc.err {
			t.Errorf("ParseLevel(%q) error = %v", tc.in, err)
		}
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	log := NewNop()
	log.Debug("d")
	log.Infof("i %d", 1)
	log.Warn("w")
	log.Error("e", nil)
	log.WithField("k", "v").Info("chained")
	log.WithFields(map[string]interface{}{"a": 1, "b": 2}).Warnf("w %s", "x")
	if err := log.Sync(); err != nil {
		t.Errorf("Sync: %v", err)
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default must return the same logger")
	}
}
