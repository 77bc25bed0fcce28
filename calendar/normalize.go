package calendar

import (
	"fmt"
	"time"

	"talleres-system/models"
)

// ToCalendarEvent maps one raw schedule record to the uniform event shape.
// Recurring slots carry their weekday name directly; dated sessions derive
// it from fecha_clase. Times are passed through untouched.
func ToCalendarEvent(rec models.ScheduleRecord) (models.CalendarEvent, error) {
	switch r := rec.(type) {
	case models.RecurringSlot:
		return models.CalendarEvent{
			ID:       r.ID,
			Title:    eventTitle(r.TallerNombre, r.TallerID),
			Subtitle: eventSubtitle(r.ProfesorNombre, r.Ubicacion),
			Day:      NormalizeDay(r.DiaSemana),
			Start:    r.HoraInicio,
			End:      r.HoraFin,
			Color:    r.Color,
		}, nil

	case models.DatedSession:
		fecha, err := time.Parse("2006-01-02", r.FechaClase)
		if err != nil {
			return models.CalendarEvent{}, fmt.Errorf("fecha_clase %q: %w", r.FechaClase, err)
		}
		return models.CalendarEvent{
			ID:       r.ID,
			Title:    eventTitle(r.TallerNombre, r.TallerID),
			Subtitle: r.ProfesorNombre,
			Day:      DayKeyForDate(fecha),
			Start:    r.HoraInicio,
			End:      r.HoraFin,
			Color:    r.Color,
		}, nil

	default:
		return models.CalendarEvent{}, fmt.Errorf("unsupported schedule record type %T", rec)
	}
}

// ToCalendarEvents maps a batch, skipping records that fail to normalize.
// The skipped count lets callers surface it as a metric instead of an error.
func ToCalendarEvents(records []models.ScheduleRecord) (events []models.CalendarEvent, skipped int) {
	events = make([]models.CalendarEvent, 0, len(records))
	for _, rec := range records {
		ev, err := ToCalendarEvent(rec)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped
}

func eventTitle(nombre, tallerID string) string {
	if nombre != "" {
		return nombre
	}
	return fmt.Sprintf("Taller %s", tallerID)
}

func eventSubtitle(profesor, ubicacion string) string {
	if profesor != "" {
		return profesor
	}
	return ubicacion
}
