package service

import (
	"testing"
	"time"

	"github.com/lexcase/caseflow/internal/model"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want model.Priority
	}{
		{-3, model.PriorityUrgent},
		{0, model.PriorityUrgent},
		{1, model.PriorityUrgent},
		{2, model.PriorityHigh},
		{3, model.PriorityHigh},
		{4, model.PriorityMedium},
		{7, model.PriorityMedium},
		{30, model.PriorityMedium},
	}

	for _, tt := range tests {
		if got := Classify(tt.days); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	for d := -10; d < 30; d++ {
		if Classify(d).Rank() < Classify(d+1).Rank() {
			t.Errorf("Classify(%d) = %s ranks below Classify(%d) = %s", d, Classify(d), d+1, Classify(d+1))
		}
	}
}

func TestClassifyNeverLow(t *testing.T) {
	for d := -100; d <= 100; d++ {
		if Classify(d) == model.PriorityLow {
			t.Fatalf("Classify(%d) = low", d)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 10, 19, 22, 30, 0, 0, nairobi)

	tests := []struct {
		name  string
		event time.Time
		want  int
	}{
		{"earlier today", time.Date(2026, 10, 19, 8, 0, 0, 0, nairobi), 0},
		{"later today", time.Date(2026, 10, 19, 23, 59, 0, 0, nairobi), 0},
		{"tomorrow morning", time.Date(2026, 10, 20, 0, 30, 0, 0, nairobi), 1},
		{"next week", time.Date(2026, 10, 26, 9, 0, 0, 0, nairobi), 7},
		{"yesterday", time.Date(2026, 10, 18, 9, 0, 0, 0, nairobi), -1},
		// 21:30 UTC on the 19th is already the 20th in Nairobi
		{"utc instant next local day", time.Date(2026, 10, 19, 21, 30, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(now, tt.event, nairobi); got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysUntilAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	// clocks go back on 25 October 2026
	now := time.Date(2026, 10, 24, 12, 0, 0, 0, berlin)
	event := time.Date(2026, 10, 26, 12, 0, 0, 0, berlin)

	if got := DaysUntil(now, event, berlin); got != 2 {
		t.Errorf("DaysUntil() = %d, want 2", got)
	}
}

func TestReminderWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)
	from, to := ReminderWindow(now, time.UTC)

	wantFrom := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Fatalf("ReminderWindow() = [%s, %s), want [%s, %s)", from, to, wantFrom, wantTo)
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{wantFrom, true},
		{time.Date(2026, 10, 26, 23, 59, 59, 0, time.UTC), true},
		{wantTo, false},
		{wantFrom.Add(-time.Second), false},
	}
	for _, c := range cases {
		if got := inWindow(c.at, from, to); got != c.want {
			t.Errorf("inWindow(%s) = %v, want %v", c.at, got, c.want)
		}
	}
}
