package timectrl

import (
	"testing"
	"time"
)

func TestManualClockStepsOnNow(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start, time.Second)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("first Now() = %v, want %v", got, start)
	}
	if got := c.Now(); !got.Equal(start.Add(time.Second)) {
		t.Fatalf("second Now() = %v, want %v", got, start.Add(time.Second))
	}
	if got := c.Peek(); !got.Equal(start.Add(2 * time.Second)) {
		t.Fatalf("Peek() = %v", got)
	}
}

func TestManualClockSetAndAdvanceNotify(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start, 0)

	var seen []time.Time
	c.AddListener(func(ts time.Time) { seen = append(seen, ts) })

	newNow := start.Add(42 * time.Second)
	c.Set(newNow)
	c.Advance(time.Minute)

	if got := c.Now(); !got.Equal(newNow.Add(time.Minute)) {
		t.Fatalf("Now() = %v, want %v", got, newNow.Add(time.Minute))
	}
	if len(seen) != 2 {
		t.Fatalf("listener saw %d events, want 2", len(seen))
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	if loc := Default().Now().Location(); loc != time.UTC {
		t.Fatalf("SystemClock location = %v, want UTC", loc)
	}
}
