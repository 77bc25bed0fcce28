package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClasesHandlerKeepsConfiguredHorizon(t *testing.T) {
	handler := NewClasesHandler(nil, nil, 45)
	assert.Equal(t, 45, handler.horizonDays)
}

func TestGenerarClasesRequiresSuperuser(t *testing.T) {
	handler := NewClasesHandler(nil, nil, 30)

	// no authenticated record at all
	err := handler.GenerarClases(newRequestEvent("/api/v1/clases/generar"))
	assert.Error(t, err)
}
