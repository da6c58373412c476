package profiler

import (
	"testing"
	"time"
)

func TestProfiler_ReportsAfterInterval(t *testing.T) {
	p := NewProfiler(time.Hour)
	if p.Frame(time.Millisecond, 10) {
		t.Error("Frame() reported before the interval elapsed")
	}

	p = NewProfiler(time.Nanosecond)
	time.Sleep(time.Millisecond)
	if !p.Frame(2*time.Millisecond, 31) {
		t.Error("Frame() did not report after the interval elapsed")
	}
	if p.frameCount != 0 || p.workTotal != 0 || p.workMax != 0 {
		t.Error("Frame() did not reset its counters after reporting")
	}
}

func TestProfiler_DefaultInterval(t *testing.T) {
	if p := NewProfiler(0); p.updateInterval != time.Second {
		t.Errorf("updateInterval = %v, want 1s", p.updateInterval)
	}
}
