package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"talleres-system/models"
)

func TestNormalizeDay_CaseAndAccentInsensitive(t *testing.T) {
	inputs := []string{"Miércoles", "MIERCOLES", "miercoles", " miércoles ", "MiÉrCoLeS"}
	for _, in := range inputs {
		assert.Equal(t, models.DayMiercoles, NormalizeDay(in), "input %q", in)
	}
}

func TestNormalizeDay_Idempotent(t *testing.T) {
	inputs := []string{"Sábado", "DOMINGO", " lunes", "feriado", "", "Miércoles "}
	for _, in := range inputs {
		once := NormalizeDay(in)
		assert.Equal(t, once, NormalizeDay(string(once)), "input %q", in)
	}
}

func TestNormalizeDay_AllCanonicalDays(t *testing.T) {
	cases := map[string]models.DayKey{
		"Lunes":     models.DayLunes,
		"Martes":    models.DayMartes,
		"Miércoles": models.DayMiercoles,
		"Jueves":    models.DayJueves,
		"Viernes":   models.DayViernes,
		"Sábado":    models.DaySabado,
		"Domingo":   models.DayDomingo,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDay(in))
	}
}

func TestNormalizeDay_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, models.DayKey("feriado"), NormalizeDay(" Feriado "))
}

func TestDayKeyForDate(t *testing.T) {
	// 2025-11-19 is a Wednesday
	fecha := time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, models.DayMiercoles, DayKeyForDate(fecha))

	// 2025-11-23 is a Sunday
	assert.Equal(t, models.DayDomingo, DayKeyForDate(fecha.AddDate(0, 0, 4)))
}
