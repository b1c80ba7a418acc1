package slots

import (
	"testing"
	"time"
)

func TestGenerate_SingleHourHalfHourSteps(t *testing.T) {
	cfg := Config{Days: 1, StartHour: 8, EndHour: 9, StepMinutes: 30}
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.Local)

	got := Generate(cfg, now)
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 slots, got %d", len(got))
	}

	first := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	second := time.Date(2026, 3, 2, 8, 30, 0, 0, time.Local)

	if !got[0].Start.Equal(first) || !got[0].End.Equal(second) {
		t.Errorf("slot 0 = %v-%v, want 08:00-08:30", got[0].Start, got[0].End)
	}
	if !got[1].Start.Equal(second) || !got[1].End.Equal(second.Add(30*time.Minute)) {
		t.Errorf("slot 1 = %v-%v, want 08:30-09:00", got[1].Start, got[1].End)
	}
}

func TestGenerate_AscendingWithoutGapsOrOverlaps(t *testing.T) {
	cfg := Config{Days: 3, StartHour: 9, EndHour: 17, StepMinutes: 30}
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)

	got := Generate(cfg, now)
	if len(got) == 0 {
		t.Fatal("expected slots")
	}

	step := 30 * time.Minute
	for i, s := range got {
		if !s.End.Equal(s.Start.Add(step)) {
			t.Errorf("slot %d has duration %v, want %v", i, s.End.Sub(s.Start), step)
		}
		if i == 0 {
			continue
		}
		prev := got[i-1]
		if !s.Start.After(prev.Start) {
			t.Fatalf("slot %d not strictly after slot %d (%v vs %v)", i, i-1, s.Start, prev.Start)
		}
		if s.Start.Before(prev.End) {
			t.Errorf("slot %d overlaps slot %d", i, i-1)
		}
		// Within a working day, consecutive slots are exactly one step apart.
		sameDay := s.Start.YearDay() == prev.Start.YearDay()
		if sameDay && !s.Start.Equal(prev.End) {
			t.Errorf("gap between slot %d and %d: %v to %v", i-1, i, prev.End, s.Start)
		}
	}
}

func TestGenerate_SlotCountAcrossDays(t *testing.T) {
	cfg := Config{Days: 5, StartHour: 9, EndHour: 17, StepMinutes: 30}
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	got := Generate(cfg, now)
	want := 5 * 8 * 2
	if len(got) != want {
		t.Errorf("expected %d slots, got %d", want, len(got))
	}
}

func TestGenerate_PastFlag(t *testing.T) {
	cfg := Config{Days: 1, StartHour: 8, EndHour: 10, StepMinutes: 30}
	// 09:00: slots ending at or before now are past, later ones are not.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	got := Generate(cfg, now)
	if len(got) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(got))
	}

	wantPast := []bool{true, true, false, false}
	for i, s := range got {
		if s.Past != wantPast[i] {
			t.Errorf("slot %d (start %v) past = %v, want %v", i, s.Start, s.Past, wantPast[i])
		}
	}
}

func TestGenerate_PastSlotsStillIncluded(t *testing.T) {
	cfg := Config{Days: 1, StartHour: 8, EndHour: 9, StepMinutes: 30}
	now := time.Date(2026, 3, 2, 23, 0, 0, 0, time.Local)

	got := Generate(cfg, now)
	if len(got) != 2 {
		t.Fatalf("past slots must stay in the sequence, got %d slots", len(got))
	}
	for i, s := range got {
		if !s.Past {
			t.Errorf("slot %d should be past", i)
		}
	}
}

func TestGenerate_IsDeterministic(t *testing.T) {
	cfg := Config{Days: 2, StartHour: 10, EndHour: 12, StepMinutes: 15}
	now := time.Date(2026, 3, 2, 10, 20, 0, 0, time.Local)

	a := Generate(cfg, now)
	b := Generate(cfg, now)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("slot %d differs between runs", i)
		}
	}
}

func TestGenerate_UnevenStep(t *testing.T) {
	// 45 does not divide 60: each hour gets a 45-minute slot plus one
	// spilling past the hour boundary. Documented behavior, not an error.
	cfg := Config{Days: 1, StartHour: 9, EndHour: 10, StepMinutes: 45}
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	got := Generate(cfg, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots for a 45-minute step in one hour, got %d", len(got))
	}
	if got[1].Start.Minute() != 45 {
		t.Errorf("second slot should start at :45, got :%02d", got[1].Start.Minute())
	}
}

func TestAligned(t *testing.T) {
	cfg := Config{Days: 1, StartHour: 8, EndHour: 9, StepMinutes: 30}
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.Local)

	onGrid := time.Date(2026, 3, 2, 8, 30, 0, 0, time.Local)
	if !Aligned(cfg, now, onGrid) {
		t.Errorf("expected %v to be grid-aligned", onGrid)
	}

	offGrid := time.Date(2026, 3, 2, 8, 7, 0, 0, time.Local)
	if Aligned(cfg, now, offGrid) {
		t.Errorf("expected %v to be rejected", offGrid)
	}

	outsideHorizon := time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local)
	if Aligned(cfg, now, outsideHorizon) {
		t.Errorf("expected %v (next day, 1-day horizon) to be rejected", outsideHorizon)
	}
}
