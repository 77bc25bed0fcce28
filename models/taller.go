package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Taller struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	Disciplina   string          `json:"disciplina"`
	Descripcion  string          `json:"descripcion"`
	Cupo         int             `json:"cupo"`
	CuotaMensual decimal.Decimal `json:"cuota_mensual"`
	Estado       string          `json:"estado"` // activo, suspendido, finalizado
}

type Profesor struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

type Alumno struct {
	ID              string    `json:"id"`
	Nombre          string    `json:"nombre"`
	Apellido        string    `json:"apellido"`
	Documento       string    `json:"documento"`
	FechaNacimiento time.Time `json:"fecha_nacimiento"`
	Email           string    `json:"email"`
	Telefono        string    `json:"telefono"`
}

type Inscripcion struct {
	ID       string    `json:"id"`
	AlumnoID string    `json:"alumno_id"`
	TallerID string    `json:"taller_id"`
	Fecha    time.Time `json:"fecha"`
	Estado   string    `json:"estado"` // activa, baja
}

// OcupacionTaller is the admin-dashboard occupancy row: enrolled vs capacity.
type OcupacionTaller struct {
	TallerID   string          `json:"taller_id"`
	Nombre     string          `json:"nombre"`
	Cupo       int             `json:"cupo"`
	Inscriptos int             `json:"inscriptos"`
	Ocupacion  decimal.Decimal `json:"ocupacion_pct"`
}
