package handlers

import (
	"errors"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"talleres-system/internal/status"
	"talleres-system/services"
)

type ReportesHandler struct {
	app      *pocketbase.PocketBase
	reportes *services.ReportesService
}

func NewReportesHandler(app *pocketbase.PocketBase, reportes *services.ReportesService) *ReportesHandler {
	return &ReportesHandler{
		app:      app,
		reportes: reportes,
	}
}

// ExportarICS exports a taller's horario as an iCalendar file and returns a
// presigned download URL.
func (h *ReportesHandler) ExportarICS(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("No autorizado", nil)
	}

	tallerID := e.Request.PathValue("tallerId")

	export, err := h.reportes.ExportarHorarioICS(e.Request.Context(), tallerID)
	if errors.Is(err, status.ErrTallerNotFound) {
		return apis.NewNotFoundError("Taller no encontrado", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo exportar el horario", err)
	}

	return ok(e, export)
}

// ReporteAsistencia exports the attendance CSV of a taller between
// ?desde= and ?hasta= (default: the last 30 days).
func (h *ReportesHandler) ReporteAsistencia(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("No autorizado", nil)
	}

	tallerID := e.Request.PathValue("tallerId")

	query := e.Request.URL.Query()
	desde := query.Get("desde")
	hasta := query.Get("hasta")
	if desde == "" || hasta == "" {
		now := time.Now().UTC()
		hasta = now.Format("2006-01-02")
		desde = now.AddDate(0, 0, -30).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", desde); err != nil {
		return apis.NewBadRequestError("Fecha desde invalida, se espera YYYY-MM-DD", err)
	}
	if _, err := time.Parse("2006-01-02", hasta); err != nil {
		return apis.NewBadRequestError("Fecha hasta invalida, se espera YYYY-MM-DD", err)
	}

	export, err := h.reportes.ReporteAsistenciaCSV(e.Request.Context(), tallerID, desde, hasta)
	if errors.Is(err, status.ErrTallerNotFound) {
		return apis.NewNotFoundError("Taller no encontrado", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo generar el reporte", err)
	}

	return ok(e, export)
}
