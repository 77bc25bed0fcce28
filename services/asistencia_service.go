package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"talleres-system/internal/status"
	"talleres-system/models"
	"talleres-system/monitoring"
	"talleres-system/utils"
)

// AsistenciaService records attendance per dated clase and computes the
// attendance percentages shown on alumno and taller detail screens.
type AsistenciaService struct {
	App     core.App
	Redis   *redis.Client
	monitor *monitoring.Monitor
	codeTTL time.Duration
}

func NewAsistenciaService(app core.App, redisClient *redis.Client, monitor *monitoring.Monitor, codeTTL time.Duration) *AsistenciaService {
	return &AsistenciaService{
		App:     app,
		Redis:   redisClient,
		monitor: monitor,
		codeTTL: codeTTL,
	}
}

// RegistrarAsistencia upserts the attendance mark of one alumno for one
// clase.
func (s *AsistenciaService) RegistrarAsistencia(ctx context.Context, claseID, alumnoID string, presente bool) error {
	if _, err := s.App.FindRecordById("clases", claseID); err != nil {
		return status.ErrClaseNotFound
	}

	record, err := s.App.FindFirstRecordByFilter(
		"asistencia",
		"clase_id = {:clase} && alumno_id = {:alumno}",
		dbx.Params{"clase": claseID, "alumno": alumnoID},
	)
	if err != nil {
		collection, err := s.App.FindCollectionByNameOrId("asistencia")
		if err != nil {
			return fmt.Errorf("find asistencia collection: %w", err)
		}
		record = core.NewRecord(collection)
		record.Set("clase_id", claseID)
		record.Set("alumno_id", alumnoID)
	}

	record.Set("presente", presente)
	record.Set("registrado", time.Now().UTC())

	if err := s.App.Save(record); err != nil {
		return fmt.Errorf("save asistencia: %w", err)
	}
	return nil
}

// ResumenAlumno computes one alumno's attendance ratio within a taller.
func (s *AsistenciaService) ResumenAlumno(ctx context.Context, alumnoID, tallerID string) (models.ResumenAsistencia, error) {
	presentes, total, err := s.contarAsistencia(
		"a.alumno_id = {:alumno} AND c.taller_id = {:taller}",
		dbx.Params{"alumno": alumnoID, "taller": tallerID},
	)
	if err != nil {
		return models.ResumenAsistencia{}, err
	}
	if total == 0 {
		return models.ResumenAsistencia{}, status.ErrSinClases
	}

	return models.ResumenAsistencia{
		AlumnoID:   alumnoID,
		TallerID:   tallerID,
		Presentes:  presentes,
		Total:      total,
		Porcentaje: CalcularPorcentaje(presentes, total),
	}, nil
}

// ResumenTaller computes the overall attendance ratio of a taller.
func (s *AsistenciaService) ResumenTaller(ctx context.Context, tallerID string) (models.ResumenAsistencia, error) {
	presentes, total, err := s.contarAsistencia(
		"c.taller_id = {:taller}",
		dbx.Params{"taller": tallerID},
	)
	if err != nil {
		return models.ResumenAsistencia{}, err
	}
	if total == 0 {
		return models.ResumenAsistencia{}, status.ErrSinClases
	}

	return models.ResumenAsistencia{
		TallerID:   tallerID,
		Presentes:  presentes,
		Total:      total,
		Porcentaje: CalcularPorcentaje(presentes, total),
	}, nil
}

func (s *AsistenciaService) contarAsistencia(where string, params dbx.Params) (presentes, total int, err error) {
	var rows []dbx.NullStringMap
	query := fmt.Sprintf(
		`SELECT COUNT(*) AS total, COALESCE(SUM(a.presente), 0) AS presentes
		 FROM asistencia a
		 JOIN clases c ON c.id = a.clase_id
		 WHERE %s`, where,
	)
	if err := s.App.DB().NewQuery(query).Bind(params).All(&rows); err != nil {
		return 0, 0, fmt.Errorf("count asistencia: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}

	total, _ = strconv.Atoi(rows[0]["total"].String)
	presentes, _ = strconv.Atoi(rows[0]["presentes"].String)
	return presentes, total, nil
}

// CalcularPorcentaje returns presentes/total as a percentage with one
// decimal place.
func CalcularPorcentaje(presentes, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(presentes)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

// GenerarCodigoCheckin issues the self check-in code for a clase. Only the
// bcrypt hash is stored, with the configured expiry.
func (s *AsistenciaService) GenerarCodigoCheckin(ctx context.Context, claseID string) (string, error) {
	if _, err := s.App.FindRecordById("clases", claseID); err != nil {
		return "", status.ErrClaseNotFound
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		return "", fmt.Errorf("generate checkin code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash checkin code: %w", err)
	}

	key := fmt.Sprintf("checkin:clase:%s", claseID)
	if err := s.Redis.Set(ctx, key, hash, s.codeTTL).Err(); err != nil {
		return "", fmt.Errorf("store checkin code: %w", err)
	}

	return code, nil
}

// VerificarCodigo checks a submitted check-in code against the stored hash.
func (s *AsistenciaService) VerificarCodigo(ctx context.Context, claseID, codigo string) error {
	key := fmt.Sprintf("checkin:clase:%s", claseID)

	hash, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		s.trackCheckin("invalid")
		return status.ErrCodigoInvalido
	}
	if err != nil {
		return fmt.Errorf("load checkin code: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(codigo)); err != nil {
		s.trackCheckin("invalid")
		return status.ErrCodigoInvalido
	}

	s.trackCheckin("ok")
	return nil
}

// Checkin verifies the code and marks the alumno present.
func (s *AsistenciaService) Checkin(ctx context.Context, claseID, alumnoID, codigo string) error {
	if err := s.VerificarCodigo(ctx, claseID, codigo); err != nil {
		return err
	}
	return s.RegistrarAsistencia(ctx, claseID, alumnoID, true)
}

func (s *AsistenciaService) trackCheckin(result string) {
	if s.monitor != nil {
		s.monitor.TrackCheckin(result)
	}
}
