package status

import "errors"

var (
	ErrTallerNotFound = errors.New("taller: taller not found")
	ErrClaseNotFound  = errors.New("clase: clase not found")
	ErrCodigoInvalido = errors.New("checkin: invalid or expired code")
	ErrSinClases      = errors.New("asistencia: no classes held yet")
)
