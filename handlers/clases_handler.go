package handlers

import (
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"talleres-system/models"
	"talleres-system/services"
)

type ClasesHandler struct {
	app         *pocketbase.PocketBase
	clases      *services.ClasesService
	horizonDays int
}

func NewClasesHandler(app *pocketbase.PocketBase, clases *services.ClasesService, horizonDays int) *ClasesHandler {
	return &ClasesHandler{
		app:         app,
		clases:      clases,
		horizonDays: horizonDays,
	}
}

// GenerarClases materializes clase records for one taller (or all active
// talleres when taller_id is empty). Superuser only.
func (h *ClasesHandler) GenerarClases(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.Collection().Name != core.CollectionNameSuperusers {
		return apis.NewForbiddenError("Solo administradores pueden generar clases", nil)
	}

	var req struct {
		TallerID string `json:"taller_id"`
		Desde    string `json:"desde"`
		Hasta    string `json:"hasta"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Cuerpo invalido", err)
	}

	ctx := e.Request.Context()

	if req.TallerID == "" {
		created, err := h.clases.GenerarTodas(ctx, h.horizonDays)
		if err != nil {
			return apis.NewBadRequestError("No se pudieron generar las clases", err)
		}
		return okMensaje(e, map[string]any{"generadas": created}, "Clases generadas para todos los talleres activos")
	}

	desde, err := time.Parse("2006-01-02", req.Desde)
	if err != nil {
		return apis.NewBadRequestError("Fecha desde invalida, se espera YYYY-MM-DD", err)
	}
	hasta, err := time.Parse("2006-01-02", req.Hasta)
	if err != nil {
		return apis.NewBadRequestError("Fecha hasta invalida, se espera YYYY-MM-DD", err)
	}
	if hasta.Before(desde) {
		return apis.NewBadRequestError("El rango de fechas esta invertido", nil)
	}

	created, err := h.clases.GenerarClases(ctx, req.TallerID, desde, hasta)
	if err != nil {
		return apis.NewBadRequestError("No se pudieron generar las clases", err)
	}

	return okMensaje(e, map[string]any{
		"taller_id": req.TallerID,
		"generadas": created,
	}, "Clases generadas")
}

// GetClasesTaller lists the generated clases of one taller.
func (h *ClasesHandler) GetClasesTaller(e *core.RequestEvent) error {
	tallerID := e.Request.PathValue("tallerId")
	if tallerID == "" {
		return apis.NewBadRequestError("Falta el taller", nil)
	}

	records, err := h.app.FindRecordsByFilter(
		"clases",
		"taller_id = {:taller}",
		"fecha_clase",
		0,
		0,
		dbx.Params{"taller": tallerID},
	)
	if err != nil {
		return apis.NewBadRequestError("No se pudieron listar las clases", err)
	}

	clases := make([]models.Clase, 0, len(records))
	for _, record := range records {
		clases = append(clases, models.Clase{
			ID:         record.Id,
			TallerID:   record.GetString("taller_id"),
			FechaClase: record.GetString("fecha_clase"),
			HoraInicio: record.GetString("hora_inicio"),
			HoraFin:    record.GetString("hora_fin"),
			Estado:     record.GetString("estado"),
		})
	}

	return ok(e, map[string]any{
		"taller_id": tallerID,
		"clases":    clases,
	})
}
