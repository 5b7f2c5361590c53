package clock

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	c := NewFixed(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(36 * time.Hour)
	if want := start.Add(36 * time.Hour); !c.Now().Equal(want) {
		t.Errorf("after Advance Now() = %v, want %v", c.Now(), want)
	}

	later := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("after Set Now() = %v, want %v", c.Now(), later)
	}
}

func TestStartOfDay(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)

	// 22:00 UTC on the 1st is 01:00 on the 2nd in EAT.
	instant := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

	got := StartOfDay(instant, nairobi)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, nairobi)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}

	if got := StartOfDay(instant, nil); !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay(nil loc) = %v", got)
	}
}
