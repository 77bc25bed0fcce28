package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"talleres-system/models"
	"talleres-system/services"
)

type CalendarioHandler struct {
	app        *pocketbase.PocketBase
	calendario *services.CalendarService
}

func NewCalendarioHandler(app *pocketbase.PocketBase, calendario *services.CalendarService) *CalendarioHandler {
	return &CalendarioHandler{
		app:        app,
		calendario: calendario,
	}
}

// GetHorarios returns the week grid of every active taller's recurring
// horarios.
func (h *CalendarioHandler) GetHorarios(e *core.RequestEvent) error {
	vista, err := vistaParam(e)
	if err != nil {
		return err
	}

	// the cached layout is vista independent; aplicarVista runs on the way out
	layout, origen, err := h.calendario.WeekLayout(e.Request.Context(), "horarios", h.buildHorarios(
		"taller_id.estado = 'activo'",
		nil,
	))
	if err != nil {
		return apis.NewBadRequestError("No se pudo armar el calendario", err)
	}

	return ok(e, map[string]any{
		"calendario": aplicarVista(layout, vista),
		"vista":      vista,
		"origen":     origen,
	})
}

// GetClasesSemana returns the week grid of concrete clases for the ISO week
// containing ?fecha= (default: today).
func (h *CalendarioHandler) GetClasesSemana(e *core.RequestEvent) error {
	vista, err := vistaParam(e)
	if err != nil {
		return err
	}

	fecha := time.Now().UTC()
	if raw := e.Request.URL.Query().Get("fecha"); raw != "" {
		fecha, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return apis.NewBadRequestError("Fecha invalida, se espera YYYY-MM-DD", err)
		}
	}

	lunes := mondayOf(fecha)
	desde := lunes.Format("2006-01-02")
	hasta := lunes.AddDate(0, 0, 6).Format("2006-01-02")

	cacheKey := fmt.Sprintf("semana:%s", desde)
	layout, origen, err := h.calendario.WeekLayout(e.Request.Context(), cacheKey, h.buildClases(desde, hasta))
	if err != nil {
		return apis.NewBadRequestError("No se pudo armar el calendario", err)
	}

	return ok(e, map[string]any{
		"calendario": aplicarVista(layout, vista),
		"semana":     desde,
		"vista":      vista,
		"origen":     origen,
	})
}

// GetCalendarioTaller returns the week grid of one taller's horarios.
func (h *CalendarioHandler) GetCalendarioTaller(e *core.RequestEvent) error {
	tallerID := e.Request.PathValue("tallerId")
	if tallerID == "" {
		return apis.NewBadRequestError("Falta el taller", nil)
	}

	vista, err := vistaParam(e)
	if err != nil {
		return err
	}

	if _, err := h.app.FindRecordById("talleres", tallerID); err != nil {
		return apis.NewNotFoundError("Taller no encontrado", err)
	}

	cacheKey := fmt.Sprintf("taller:%s", tallerID)
	layout, origen, err := h.calendario.WeekLayout(e.Request.Context(), cacheKey, h.buildHorarios(
		"taller_id = {:taller}",
		dbx.Params{"taller": tallerID},
	))
	if err != nil {
		return apis.NewBadRequestError("No se pudo armar el calendario", err)
	}

	return ok(e, map[string]any{
		"calendario": aplicarVista(layout, vista),
		"taller_id":  tallerID,
		"vista":      vista,
		"origen":     origen,
	})
}

func (h *CalendarioHandler) buildHorarios(filter string, params dbx.Params) services.BuildFunc {
	return func(ctx context.Context) ([]models.ScheduleRecord, error) {
		horarios, err := h.app.FindRecordsByFilter("horarios", filter, "dia_semana", 0, 0, params)
		if err != nil {
			return nil, fmt.Errorf("find horarios: %w", err)
		}

		records := make([]models.ScheduleRecord, 0, len(horarios))
		for _, horario := range horarios {
			taller := h.tallerInfo(horario.GetString("taller_id"))
			records = append(records, models.RecurringSlot{
				ID:             horario.Id,
				TallerID:       horario.GetString("taller_id"),
				TallerNombre:   taller.nombre,
				ProfesorNombre: taller.profesor,
				DiaSemana:      horario.GetString("dia_semana"),
				HoraInicio:     horario.GetString("hora_inicio"),
				HoraFin:        horario.GetString("hora_fin"),
				Ubicacion:      horario.GetString("ubicacion"),
				Color:          taller.color,
			})
		}
		return records, nil
	}
}

func (h *CalendarioHandler) buildClases(desde, hasta string) services.BuildFunc {
	return func(ctx context.Context) ([]models.ScheduleRecord, error) {
		clases, err := h.app.FindRecordsByFilter(
			"clases",
			"fecha_clase >= {:desde} && fecha_clase <= {:hasta} && estado != 'cancelada'",
			"fecha_clase",
			0,
			0,
			dbx.Params{"desde": desde, "hasta": hasta},
		)
		if err != nil {
			return nil, fmt.Errorf("find clases: %w", err)
		}

		records := make([]models.ScheduleRecord, 0, len(clases))
		for _, clase := range clases {
			taller := h.tallerInfo(clase.GetString("taller_id"))
			records = append(records, models.DatedSession{
				ID:             clase.Id,
				TallerID:       clase.GetString("taller_id"),
				TallerNombre:   taller.nombre,
				ProfesorNombre: taller.profesor,
				FechaClase:     clase.GetString("fecha_clase"),
				HoraInicio:     clase.GetString("hora_inicio"),
				HoraFin:        clase.GetString("hora_fin"),
				Color:          taller.color,
			})
		}
		return records, nil
	}
}

type tallerResumen struct {
	nombre   string
	profesor string
	color    string
}

func (h *CalendarioHandler) tallerInfo(tallerID string) tallerResumen {
	taller, err := h.app.FindRecordById("talleres", tallerID)
	if err != nil {
		return tallerResumen{}
	}

	info := tallerResumen{
		nombre: taller.GetString("nombre"),
		color:  taller.GetString("color"),
	}
	if profesorID := taller.GetString("profesor_id"); profesorID != "" {
		if profesor, err := h.app.FindRecordById("profesores", profesorID); err == nil {
			info.profesor = profesor.GetString("apellido") + ", " + profesor.GetString("nombre")
		}
	}
	return info
}

// vistaParam validates ?vista=, defaulting to the desktop grid.
func vistaParam(e *core.RequestEvent) (string, error) {
	vista := e.Request.URL.Query().Get("vista")
	switch vista {
	case "":
		return "escritorio", nil
	case "movil", "escritorio":
		return vista, nil
	default:
		return "", apis.NewBadRequestError("Vista invalida, se espera movil o escritorio", nil)
	}
}

// aplicarVista drops empty day columns for the mobile view; the desktop view
// always keeps the full week.
func aplicarVista(layout models.WeekLayout, vista string) models.WeekLayout {
	if vista != "movil" {
		return layout
	}
	days := make([]models.DayColumn, 0, len(layout.Days))
	for _, day := range layout.Days {
		if len(day.Events) > 0 {
			days = append(days, day)
		}
	}
	layout.Days = days
	return layout
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Truncate(24 * time.Hour)
}
