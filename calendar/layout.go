package calendar

import (
	"fmt"
	"sort"

	"talleres-system/models"
)

// GridConfig is the operating window and column set of the grid.
// All minute values are minutes since midnight.
type GridConfig struct {
	DayStartMin    int
	DayEndMin      int
	MinEventHeight float64 // minimum rendered height, as a fraction of the window
	Days           []models.DayKey
}

// DefaultGridConfig covers the municipal operating hours, 08:00 to 22:00.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		DayStartMin:    8 * 60,
		DayEndMin:      22 * 60,
		MinEventHeight: 0.02,
		Days:           models.WeekDays,
	}
}

// ToMinutes converts an HH:MM string to minutes since midnight. Malformed
// values yield 0 and ok=false; the layout then clamps or drops the event
// instead of failing.
func ToMinutes(clock string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%2d:%2d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// MinutesToClock is the inverse of ToMinutes for in-window values.
func MinutesToClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Layout positions events on the week grid. Events are bucketed per day
// column (unknown day keys are dropped, not errors), sorted by start then
// end, split into overlap clusters and assigned the lowest free lane within
// their cluster. Intervals are half-open: an event ending at 10:00 does not
// overlap one starting at 10:00.
func Layout(events []models.CalendarEvent, cfg GridConfig) models.WeekLayout {
	if len(cfg.Days) == 0 {
		cfg.Days = models.WeekDays
	}
	if cfg.DayEndMin <= cfg.DayStartMin {
		def := DefaultGridConfig()
		cfg.DayStartMin, cfg.DayEndMin = def.DayStartMin, def.DayEndMin
	}
	if cfg.MinEventHeight <= 0 {
		cfg.MinEventHeight = DefaultGridConfig().MinEventHeight
	}

	known := make(map[models.DayKey]int, len(cfg.Days))
	for i, d := range cfg.Days {
		known[d] = i
	}

	buckets := make([][]timedEvent, len(cfg.Days))
	dropped := 0

	for _, ev := range events {
		col, ok := known[ev.Day]
		if !ok {
			dropped++
			continue
		}
		start, _ := ToMinutes(ev.Start)
		end, _ := ToMinutes(ev.End)
		if end < start {
			end = start // nonsensical range collapses to zero length
		}
		// fully outside the operating window
		if end <= cfg.DayStartMin && start < cfg.DayStartMin || start >= cfg.DayEndMin {
			dropped++
			continue
		}
		buckets[col] = append(buckets[col], timedEvent{event: ev, start: start, end: end})
	}

	window := float64(cfg.DayEndMin - cfg.DayStartMin)
	out := models.WeekLayout{
		Days:      make([]models.DayColumn, len(cfg.Days)),
		GridStart: MinutesToClock(cfg.DayStartMin),
		GridEnd:   MinutesToClock(cfg.DayEndMin),
		Dropped:   dropped,
	}

	for col, day := range cfg.Days {
		positioned := layoutDay(buckets[col], cfg, window)
		out.Days[col] = models.DayColumn{Day: day, Events: positioned}
		for _, pe := range positioned {
			if pe.Lanes > out.TotalLanes {
				out.TotalLanes = pe.Lanes
			}
		}
	}
	return out
}

type timedEvent struct {
	event models.CalendarEvent
	start int
	end   int
}

func layoutDay(evs []timedEvent, cfg GridConfig, window float64) []models.PositionedEvent {
	if len(evs) == 0 {
		return []models.PositionedEvent{}
	}

	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].start != evs[j].start {
			return evs[i].start < evs[j].start
		}
		return evs[i].end < evs[j].end
	})

	positioned := make([]models.PositionedEvent, len(evs))

	// One overlap cluster at a time: the cluster ends when the next event
	// starts at or after the maximum end seen so far.
	clusterStart := 0
	maxEnd := evs[0].end
	for i := 1; i <= len(evs); i++ {
		if i < len(evs) && evs[i].start < maxEnd {
			if evs[i].end > maxEnd {
				maxEnd = evs[i].end
			}
			continue
		}
		assignLanes(evs[clusterStart:i], positioned[clusterStart:i], cfg, window)
		if i < len(evs) {
			clusterStart = i
			maxEnd = evs[i].end
		}
	}
	return positioned
}

// assignLanes greedily gives each event in one cluster the lowest lane whose
// last occupant has already ended. The lane count ends up equal to the
// cluster's maximum concurrency.
func assignLanes(cluster []timedEvent, out []models.PositionedEvent, cfg GridConfig, window float64) {
	var laneEnds []int

	lanes := make([]int, len(cluster))
	for i, te := range cluster {
		lane := -1
		for l, end := range laneEnds {
			if end <= te.start {
				lane = l
				break
			}
		}
		if lane == -1 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, 0)
		}
		laneEnds[lane] = te.end
		lanes[i] = lane
	}

	total := len(laneEnds)
	for i, te := range cluster {
		start := clamp(te.start, cfg.DayStartMin, cfg.DayEndMin)
		end := clamp(te.end, cfg.DayStartMin, cfg.DayEndMin)

		top := float64(start-cfg.DayStartMin) / window
		height := float64(end-start) / window
		if height < cfg.MinEventHeight {
			height = cfg.MinEventHeight
		}

		out[i] = models.PositionedEvent{
			CalendarEvent: te.event,
			Lane:          lanes[i],
			Lanes:         total,
			Top:           top,
			Height:        height,
			Left:          float64(lanes[i]) / float64(total),
			Width:         1.0 / float64(total),
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
