package services

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"talleres-system/internal/status"
)

func TestCalcularPorcentaje(t *testing.T) {
	tests := []struct {
		name      string
		presentes int
		total     int
		expected  string
	}{
		{"perfect attendance", 10, 10, "100"},
		{"half", 5, 10, "50"},
		{"one third rounds", 1, 3, "33.3"},
		{"two thirds rounds", 2, 3, "66.7"},
		{"no classes", 0, 0, "0"},
		{"never attended", 0, 8, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcularPorcentaje(tt.presentes, tt.total)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestVerificarCodigoOK(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := &AsistenciaService{Redis: db}

	hash, err := bcrypt.GenerateFromPassword([]byte("482913"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectGet("checkin:clase:c1").SetVal(string(hash))

	err = svc.VerificarCodigo(context.Background(), "c1", "482913")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificarCodigoWrongCode(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := &AsistenciaService{Redis: db}

	hash, err := bcrypt.GenerateFromPassword([]byte("482913"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectGet("checkin:clase:c1").SetVal(string(hash))

	err = svc.VerificarCodigo(context.Background(), "c1", "000000")
	assert.ErrorIs(t, err, status.ErrCodigoInvalido)
}

func TestVerificarCodigoExpired(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := &AsistenciaService{Redis: db}

	mock.ExpectGet("checkin:clase:c1").RedisNil()

	err := svc.VerificarCodigo(context.Background(), "c1", "482913")
	assert.ErrorIs(t, err, status.ErrCodigoInvalido)
}
