package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talleres-system/models"
)

func ev(id string, day models.DayKey, start, end string) models.CalendarEvent {
	return models.CalendarEvent{ID: id, Title: "Taller " + id, Day: day, Start: start, End: end}
}

func dayEvents(layout models.WeekLayout, day models.DayKey) []models.PositionedEvent {
	for _, col := range layout.Days {
		if col.Day == day {
			return col.Events
		}
	}
	return nil
}

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"14:30", 870, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:99", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ToMinutes(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestLayout_SimpleNonOverlap(t *testing.T) {
	layout := Layout([]models.CalendarEvent{
		ev("a", models.DayLunes, "09:00", "10:00"),
		ev("b", models.DayLunes, "10:00", "11:00"),
	}, DefaultGridConfig())

	lunes := dayEvents(layout, models.DayLunes)
	require.Len(t, lunes, 2)
	for _, pe := range lunes {
		assert.Equal(t, 0, pe.Lane, "event %s", pe.ID)
		assert.Equal(t, 1, pe.Lanes, "event %s", pe.ID)
		assert.Equal(t, 1.0, pe.Width)
	}
}

func TestLayout_TwoWayOverlap(t *testing.T) {
	layout := Layout([]models.CalendarEvent{
		ev("a", models.DayMartes, "09:00", "10:30"),
		ev("b", models.DayMartes, "10:00", "11:00"),
	}, DefaultGridConfig())

	martes := dayEvents(layout, models.DayMartes)
	require.Len(t, martes, 2)
	assert.Equal(t, 0, martes[0].Lane)
	assert.Equal(t, 1, martes[1].Lane)
	assert.Equal(t, 2, martes[0].Lanes)
	assert.Equal(t, 2, martes[1].Lanes)
	assert.Equal(t, 0.5, martes[1].Left)
	assert.Equal(t, 0.5, martes[1].Width)
}

func TestLayout_TouchingEndpointsShareLane(t *testing.T) {
	layout := Layout([]models.CalendarEvent{
		ev("a", models.DayJueves, "09:00", "10:00"),
		ev("b", models.DayJueves, "10:00", "11:00"),
		ev("c", models.DayJueves, "09:30", "10:30"),
	}, DefaultGridConfig())

	jueves := dayEvents(layout, models.DayJueves)
	require.Len(t, jueves, 3)

	byID := map[string]models.PositionedEvent{}
	for _, pe := range jueves {
		byID[pe.ID] = pe
	}
	// a and b touch at 10:00 and must be able to share lane 0
	assert.Equal(t, byID["a"].Lane, byID["b"].Lane)
	assert.NotEqual(t, byID["a"].Lane, byID["c"].Lane)
}

func TestLayout_NoOverlapWithinLane(t *testing.T) {
	events := []models.CalendarEvent{
		ev("a", models.DayViernes, "09:00", "11:00"),
		ev("b", models.DayViernes, "09:30", "10:00"),
		ev("c", models.DayViernes, "10:00", "12:00"),
		ev("d", models.DayViernes, "10:30", "11:30"),
		ev("e", models.DayViernes, "11:30", "13:00"),
		ev("f", models.DayViernes, "13:00", "14:00"),
	}
	layout := Layout(events, DefaultGridConfig())
	viernes := dayEvents(layout, models.DayViernes)
	require.Len(t, viernes, len(events))

	for i, a := range viernes {
		for j, b := range viernes {
			if i == j || a.Lane != b.Lane {
				continue
			}
			aStart, _ := ToMinutes(a.Start)
			aEnd, _ := ToMinutes(a.End)
			bStart, _ := ToMinutes(b.Start)
			bEnd, _ := ToMinutes(b.End)
			assert.True(t, aEnd <= bStart || bEnd <= aStart,
				"events %s and %s overlap in lane %d", a.ID, b.ID, a.Lane)
		}
	}
}

func TestLayout_LaneMinimality(t *testing.T) {
	// max concurrency is 3 (10:00-10:30), so exactly 3 lanes
	layout := Layout([]models.CalendarEvent{
		ev("a", models.DayLunes, "09:00", "10:30"),
		ev("b", models.DayLunes, "09:30", "11:00"),
		ev("c", models.DayLunes, "10:00", "12:00"),
		ev("d", models.DayLunes, "10:30", "13:00"),
	}, DefaultGridConfig())

	lunes := dayEvents(layout, models.DayLunes)
	require.Len(t, lunes, 4)
	for _, pe := range lunes {
		assert.Equal(t, 3, pe.Lanes, "event %s", pe.ID)
		assert.Less(t, pe.Lane, 3)
	}
}

func TestLayout_IndependentClusters(t *testing.T) {
	layout := Layout([]models.CalendarEvent{
		ev("a", models.DaySabado, "09:00", "10:30"),
		ev("b", models.DaySabado, "10:00", "11:00"),
		ev("c", models.DaySabado, "15:00", "16:00"),
	}, DefaultGridConfig())

	sabado := dayEvents(layout, models.DaySabado)
	require.Len(t, sabado, 3)
	// the afternoon event is its own cluster and gets the full width
	assert.Equal(t, "c", sabado[2].ID)
	assert.Equal(t, 1, sabado[2].Lanes)
	assert.Equal(t, 1.0, sabado[2].Width)
}

func TestLayout_UnmatchedDayDropped(t *testing.T) {
	layout := Layout([]models.CalendarEvent{
		ev("a", "feriado", "09:00", "10:00"),
	}, DefaultGridConfig())

	assert.Equal(t, 1, layout.Dropped)
	for _, col := range layout.Days {
		assert.Empty(t, col.Events)
	}
}

func TestLayout_EmptyInput(t *testing.T) {
	layout := Layout(nil, DefaultGridConfig())
	require.Len(t, layout.Days, len(models.WeekDays))
	for _, col := range layout.Days {
		assert.Empty(t, col.Events)
	}
	assert.Equal(t, "08:00", layout.GridStart)
	assert.Equal(t, "22:00", layout.GridEnd)
}

func TestLayout_GeometryAgainstWindow(t *testing.T) {
	cfg := GridConfig{DayStartMin: 8 * 60, DayEndMin: 22 * 60, MinEventHeight: 0.02, Days: models.WeekDays}
	layout := Layout([]models.CalendarEvent{
		ev("a", models.DayLunes, "08:00", "09:00"),  // top of grid
		ev("b", models.DayLunes, "15:00", "22:00"),  // half window down to the end
	}, cfg)

	lunes := dayEvents(layout, models.DayLunes)
	require.Len(t, lunes, 2)

	window := float64(cfg.DayEndMin - cfg.DayStartMin)
	assert.InDelta(t, 0.0, lunes[0].Top, 1e-9)
	assert.InDelta(t, 60.0/window, lunes[0].Height, 1e-9)
	assert.InDelta(t, float64(15*60-cfg.DayStartMin)/window, lunes[1].Top, 1e-9)
	assert.InDelta(t, 7.0*60/window, lunes[1].Height, 1e-9)
}

func TestLayout_OutsideWindowDroppedAndClamped(t *testing.T) {
	layout := Layout([]models.CalendarEvent{
		ev("night", models.DayLunes, "23:00", "23:30"), // fully after the window
		ev("early", models.DayLunes, "06:00", "07:00"), // fully before the window
		ev("spill", models.DayLunes, "07:30", "09:00"), // partially inside, clamped
	}, DefaultGridConfig())

	lunes := dayEvents(layout, models.DayLunes)
	require.Len(t, lunes, 1)
	assert.Equal(t, 2, layout.Dropped)
	assert.InDelta(t, 0.0, lunes[0].Top, 1e-9) // clamped to grid start
}

func TestLayout_ZeroDurationClampedToMinHeight(t *testing.T) {
	cfg := DefaultGridConfig()
	layout := Layout([]models.CalendarEvent{
		ev("z", models.DayMartes, "10:00", "10:00"),
		ev("neg", models.DayMartes, "12:00", "11:00"), // end before start collapses
	}, cfg)

	martes := dayEvents(layout, models.DayMartes)
	require.Len(t, martes, 2)
	for _, pe := range martes {
		assert.Equal(t, cfg.MinEventHeight, pe.Height, "event %s", pe.ID)
	}
}
