package main

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		level string
		want  zerolog.Level
		ok    bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{"warn", zerolog.WarnLevel, true},
		{"loud", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if ok := setLogLevel(tt.level); ok != tt.ok {
				t.Errorf("setLogLevel(%q) = %v, want %v", tt.level, ok, tt.ok)
			}
			if got := zerolog.GlobalLevel(); got != tt.want {
				t.Errorf("GlobalLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
