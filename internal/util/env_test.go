package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
	}
	for _, tt := range tests {
		t.Setenv("SALESPIPE_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("SALESPIPE_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("SALESPIPE_TEST_DUR", "45s")
	if got := ParseDurationEnv("SALESPIPE_TEST_DUR", time.Minute); got != 45*time.Second {
		t.Errorf("expected 45s, got %v", got)
	}

	t.Setenv("SALESPIPE_TEST_DUR", "nonsense")
	if got := ParseDurationEnv("SALESPIPE_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("expected default for invalid value, got %v", got)
	}

	t.Setenv("SALESPIPE_TEST_DUR", "")
	if got := ParseDurationEnv("SALESPIPE_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("expected default for unset value, got %v", got)
	}
}
