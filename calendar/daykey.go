// Package calendar builds the week-grid read model: it normalizes raw
// horario/clase records into calendar events and computes a conflict-free
// column/lane layout for them. Everything in here is pure; callers own
// fetching and rendering.
package calendar

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"talleres-system/models"
)

// weekdayES maps time.Weekday to the canonical es day key.
var weekdayES = map[time.Weekday]models.DayKey{
	time.Monday:    models.DayLunes,
	time.Tuesday:   models.DayMartes,
	time.Wednesday: models.DayMiercoles,
	time.Thursday:  models.DayJueves,
	time.Friday:    models.DayViernes,
	time.Saturday:  models.DaySabado,
	time.Sunday:    models.DayDomingo,
}

// NormalizeDay converts any weekday spelling (" Miércoles ", "MIÉRCOLES",
// "miercoles") to its canonical key: trimmed, lowercased, diacritics
// stripped via NFD decomposition. It is total and idempotent; an unknown
// name passes through transformed and will simply match no grid column.
func NormalizeDay(input string) models.DayKey {
	s := strings.ToLower(strings.TrimSpace(input))
	return models.DayKey(stripDiacritics(s))
}

// DayKeyForDate resolves the canonical day key of an absolute date.
func DayKeyForDate(t time.Time) models.DayKey {
	return weekdayES[t.Weekday()]
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
