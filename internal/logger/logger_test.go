package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		debugMode bool
		wantDebug bool
	}{
		{"info level", false, false},
		{"debug level", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := NewProductionLogger("taskly-dashboard", tt.debugMode)
			if err != nil {
				t.Fatalf("NewProductionLogger() error = %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestNewCLILogger(t *testing.T) {
	t.Parallel()

	l, err := NewCLILogger(false)
	if err != nil {
		t.Fatalf("NewCLILogger() error = %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info level to be enabled")
	}
	if err := Sync(nil); err != nil {
		t.Errorf("Sync(nil) error = %v", err)
	}
}
