package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/teambition/rrule-go"

	"talleres-system/calendar"
	"talleres-system/models"
	"talleres-system/monitoring"
)

// rruleWeekday maps canonical day keys to RRULE weekdays.
var rruleWeekday = map[models.DayKey]rrule.Weekday{
	models.DayLunes:     rrule.MO,
	models.DayMartes:    rrule.TU,
	models.DayMiercoles: rrule.WE,
	models.DayJueves:    rrule.TH,
	models.DayViernes:   rrule.FR,
	models.DaySabado:    rrule.SA,
	models.DayDomingo:   rrule.SU,
}

// ClasesService materializes concrete clase records from the recurring
// horarios of a taller, so attendance can be taken per dated session.
type ClasesService struct {
	App        core.App
	Calendario *CalendarService
	monitor    *monitoring.Monitor
}

func NewClasesService(app core.App, calendario *CalendarService, monitor *monitoring.Monitor) *ClasesService {
	return &ClasesService{
		App:        app,
		Calendario: calendario,
		monitor:    monitor,
	}
}

// GenerarClases expands every horario of the taller into clase records
// within [desde, hasta], skipping sessions that already exist. Returns the
// number of records created.
func (s *ClasesService) GenerarClases(ctx context.Context, tallerID string, desde, hasta time.Time) (int, error) {
	horarios, err := s.App.FindRecordsByFilter(
		"horarios",
		"taller_id = {:taller}",
		"dia_semana",
		0,
		0,
		dbx.Params{"taller": tallerID},
	)
	if err != nil {
		return 0, fmt.Errorf("find horarios for taller %s: %w", tallerID, err)
	}

	collection, err := s.App.FindCollectionByNameOrId("clases")
	if err != nil {
		return 0, fmt.Errorf("find clases collection: %w", err)
	}

	created := 0
	for _, horario := range horarios {
		dia := calendar.NormalizeDay(horario.GetString("dia_semana"))
		weekday, ok := rruleWeekday[dia]
		if !ok {
			log.Printf("Horario %s has unknown weekday %q, skipping", horario.Id, horario.GetString("dia_semana"))
			continue
		}

		horaInicio := horario.GetString("hora_inicio")
		horaFin := horario.GetString("hora_fin")

		startMin, _ := calendar.ToMinutes(horaInicio)
		dtstart := time.Date(desde.Year(), desde.Month(), desde.Day(),
			startMin/60, startMin%60, 0, 0, time.UTC)

		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{weekday},
			Dtstart:   dtstart,
		})
		if err != nil {
			return created, fmt.Errorf("build rrule for horario %s: %w", horario.Id, err)
		}

		for _, occ := range rule.Between(dtstart, hasta, true) {
			fecha := occ.Format("2006-01-02")

			_, err := s.App.FindFirstRecordByFilter(
				"clases",
				"taller_id = {:taller} && fecha_clase = {:fecha} && hora_inicio = {:hora}",
				dbx.Params{"taller": tallerID, "fecha": fecha, "hora": horaInicio},
			)
			if err == nil {
				continue // already generated
			}

			record := core.NewRecord(collection)
			record.Set("taller_id", tallerID)
			record.Set("fecha_clase", fecha)
			record.Set("hora_inicio", horaInicio)
			record.Set("hora_fin", horaFin)
			record.Set("estado", "programada")

			if err := s.App.Save(record); err != nil {
				return created, fmt.Errorf("save clase %s %s: %w", tallerID, fecha, err)
			}
			created++
		}
	}

	if created > 0 {
		if s.monitor != nil {
			s.monitor.TrackClasesGeneradas(created)
		}
		s.Calendario.InvalidateTaller(ctx, tallerID)
	}
	return created, nil
}

// GenerarTodas runs GenerarClases for every active taller over the
// configured horizon. Wired to the nightly cron job.
func (s *ClasesService) GenerarTodas(ctx context.Context, horizonDays int) (int, error) {
	talleres, err := s.App.FindRecordsByFilter(
		"talleres",
		"estado = 'activo'",
		"nombre",
		0,
		0,
	)
	if err != nil {
		return 0, fmt.Errorf("find active talleres: %w", err)
	}

	desde := time.Now().UTC().Truncate(24 * time.Hour)
	hasta := desde.AddDate(0, 0, horizonDays)

	total := 0
	for _, taller := range talleres {
		created, err := s.GenerarClases(ctx, taller.Id, desde, hasta)
		if err != nil {
			log.Printf("Error generating clases for taller %s: %v", taller.Id, err)
			continue
		}
		total += created
	}

	log.Printf("Generated %d clases across %d talleres", total, len(talleres))
	return total, nil
}
