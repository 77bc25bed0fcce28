package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

// respuesta is the JSON envelope every endpoint answers with.
type respuesta struct {
	Status  string `json:"status"`
	Datos   any    `json:"datos,omitempty"`
	Mensaje string `json:"mensaje,omitempty"`
}

func ok(e *core.RequestEvent, datos any) error {
	return e.JSON(http.StatusOK, respuesta{Status: "ok", Datos: datos})
}

func okMensaje(e *core.RequestEvent, datos any, mensaje string) error {
	return e.JSON(http.StatusOK, respuesta{Status: "ok", Datos: datos, Mensaje: mensaje})
}
