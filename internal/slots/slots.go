// Package slots derives the canonical set of bookable time windows from
// the configured horizon. Generation is pure: the same configuration and
// reference time always yield the same sequence, and nothing is persisted.
package slots

import "time"

type Config struct {
	Days        int
	StartHour   int
	EndHour     int
	StepMinutes int
}

// Slot is a candidate bookable window. Its identity is exactly its start
// instant; the end is always Start plus the configured step.
type Slot struct {
	Start time.Time
	End   time.Time
	Past  bool
}

func (c Config) step() time.Duration {
	return time.Duration(c.StepMinutes) * time.Minute
}

// Generate emits every slot of the horizon in ascending order, anchored at
// the start of now's calendar day in now's location. Slots that already
// ended are still emitted with Past set, so clients can render them as
// disabled instead of hiding them.
//
// Steps that do not divide 60 leave an uneven final slot in each hour;
// that is accepted, not rejected.
func Generate(cfg Config, now time.Time) []Slot {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]Slot, 0, cfg.Days*(cfg.EndHour-cfg.StartHour)*(60/max(cfg.StepMinutes, 1)))
	for d := 0; d < cfg.Days; d++ {
		day := dayStart.AddDate(0, 0, d)
		for hour := cfg.StartHour; hour < cfg.EndHour; hour++ {
			for minute := 0; minute < 60; minute += cfg.StepMinutes {
				start := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
				end := start.Add(cfg.step())
				out = append(out, Slot{
					Start: start,
					End:   end,
					Past:  !end.After(now),
				})
			}
		}
	}
	return out
}

// Aligned reports whether start matches a slot the current horizon would
// produce. Membership is established by recomputation, never by trusting
// caller-supplied values.
func Aligned(cfg Config, now, start time.Time) bool {
	for _, s := range Generate(cfg, now) {
		if s.Start.Equal(start) {
			return true
		}
	}
	return false
}
