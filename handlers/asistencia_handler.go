package handlers

import (
	"errors"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"talleres-system/internal/status"
	"talleres-system/services"
)

type AsistenciaHandler struct {
	app        *pocketbase.PocketBase
	asistencia *services.AsistenciaService
}

func NewAsistenciaHandler(app *pocketbase.PocketBase, asistencia *services.AsistenciaService) *AsistenciaHandler {
	return &AsistenciaHandler{
		app:        app,
		asistencia: asistencia,
	}
}

// RegistrarAsistencia marks one alumno present or absent for a clase.
func (h *AsistenciaHandler) RegistrarAsistencia(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("No autorizado", nil)
	}

	claseID := e.Request.PathValue("claseId")

	var req struct {
		AlumnoID string `json:"alumno_id"`
		Presente bool   `json:"presente"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Cuerpo invalido", err)
	}
	if req.AlumnoID == "" {
		return apis.NewBadRequestError("Falta el alumno", nil)
	}

	err := h.asistencia.RegistrarAsistencia(e.Request.Context(), claseID, req.AlumnoID, req.Presente)
	if errors.Is(err, status.ErrClaseNotFound) {
		return apis.NewNotFoundError("Clase no encontrada", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo registrar la asistencia", err)
	}

	return okMensaje(e, map[string]any{
		"clase_id":  claseID,
		"alumno_id": req.AlumnoID,
		"presente":  req.Presente,
	}, "Asistencia registrada")
}

// ResumenTaller returns the overall attendance percentage of a taller.
func (h *AsistenciaHandler) ResumenTaller(e *core.RequestEvent) error {
	tallerID := e.Request.PathValue("tallerId")

	resumen, err := h.asistencia.ResumenTaller(e.Request.Context(), tallerID)
	if errors.Is(err, status.ErrSinClases) {
		return apis.NewNotFoundError("El taller no tiene clases registradas", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo calcular el resumen", err)
	}

	return ok(e, resumen)
}

// ResumenAlumno returns one alumno's attendance percentage within a taller.
func (h *AsistenciaHandler) ResumenAlumno(e *core.RequestEvent) error {
	tallerID := e.Request.PathValue("tallerId")
	alumnoID := e.Request.PathValue("alumnoId")

	resumen, err := h.asistencia.ResumenAlumno(e.Request.Context(), alumnoID, tallerID)
	if errors.Is(err, status.ErrSinClases) {
		return apis.NewNotFoundError("El alumno no tiene clases registradas en este taller", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo calcular el resumen", err)
	}

	return ok(e, resumen)
}

// GenerarCodigo issues the self check-in code of a clase. Superuser only;
// the code is shown once and only its hash is stored.
func (h *AsistenciaHandler) GenerarCodigo(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.Collection().Name != core.CollectionNameSuperusers {
		return apis.NewForbiddenError("Solo administradores pueden generar codigos", nil)
	}

	claseID := e.Request.PathValue("claseId")

	code, err := h.asistencia.GenerarCodigoCheckin(e.Request.Context(), claseID)
	if errors.Is(err, status.ErrClaseNotFound) {
		return apis.NewNotFoundError("Clase no encontrada", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo generar el codigo", err)
	}

	return okMensaje(e, map[string]any{
		"clase_id": claseID,
		"codigo":   code,
	}, "Codigo de check-in generado")
}

// Checkin lets an authenticated alumno mark themselves present with the
// clase's check-in code.
func (h *AsistenciaHandler) Checkin(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("No autorizado", nil)
	}

	claseID := e.Request.PathValue("claseId")

	var req struct {
		AlumnoID string `json:"alumno_id"`
		Codigo   string `json:"codigo"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Cuerpo invalido", err)
	}
	if req.AlumnoID == "" || req.Codigo == "" {
		return apis.NewBadRequestError("Faltan alumno o codigo", nil)
	}

	err := h.asistencia.Checkin(e.Request.Context(), claseID, req.AlumnoID, req.Codigo)
	if errors.Is(err, status.ErrCodigoInvalido) {
		return apis.NewForbiddenError("Codigo invalido o vencido", err)
	}
	if errors.Is(err, status.ErrClaseNotFound) {
		return apis.NewNotFoundError("Clase no encontrada", err)
	}
	if err != nil {
		return apis.NewBadRequestError("No se pudo registrar el check-in", err)
	}

	return okMensaje(e, map[string]any{
		"clase_id":  claseID,
		"alumno_id": req.AlumnoID,
	}, "Check-in registrado")
}
