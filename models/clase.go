package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Clase struct {
	ID         string `json:"id"`
	TallerID   string `json:"taller_id"`
	FechaClase string `json:"fecha_clase"` // YYYY-MM-DD
	HoraInicio string `json:"hora_inicio"`
	HoraFin    string `json:"hora_fin"`
	Estado     string `json:"estado"` // programada, dictada, cancelada
}

type Asistencia struct {
	ID         string    `json:"id"`
	ClaseID    string    `json:"clase_id"`
	AlumnoID   string    `json:"alumno_id"`
	Presente   bool      `json:"presente"`
	Registrado time.Time `json:"registrado"`
}

// ResumenAsistencia is the attendance summary for one alumno (or one taller
// when AlumnoID is empty): classes attended over classes held.
type ResumenAsistencia struct {
	AlumnoID   string          `json:"alumno_id,omitempty"`
	TallerID   string          `json:"taller_id"`
	Presentes  int             `json:"presentes"`
	Total      int             `json:"total"`
	Porcentaje decimal.Decimal `json:"porcentaje"`
}
