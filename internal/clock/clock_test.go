package clock

import (
	"testing"
	"time"
)

func TestSystemClock(t *testing.T) {
	clk := NewSystem()

	before := time.Now().UTC().Add(-time.Second)
	now := clk.Now()
	after := time.Now().UTC().Add(time.Second)

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, want between %v and %v", now, before, after)
	}
	if now.Location() != time.UTC {
		t.Errorf("Now() location = %v, want UTC", now.Location())
	}
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2026, 3, 14, 12, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	clk := NewFixed(instant)

	if !clk.Now().Equal(instant) {
		t.Errorf("Now() = %v, want %v", clk.Now(), instant)
	}
	if clk.Now().Location() != time.UTC {
		t.Errorf("Now() location = %v, want UTC", clk.Now().Location())
	}

	// Stable across calls
	if !clk.Now().Equal(clk.Now()) {
		t.Error("fixed clock should return the same instant every call")
	}
}
