package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"talleres-system/calendar"
	"talleres-system/config"
	"talleres-system/internal/status"
	"talleres-system/models"
	"talleres-system/utils"
)

// icalByDay maps canonical day keys to iCalendar BYDAY codes.
var icalByDay = map[models.DayKey]string{
	models.DayLunes:     "MO",
	models.DayMartes:    "TU",
	models.DayMiercoles: "WE",
	models.DayJueves:    "TH",
	models.DayViernes:   "FR",
	models.DaySabado:    "SA",
	models.DayDomingo:   "SU",
}

// ReportesService generates the admin-dashboard exports: an iCalendar feed
// of a taller's horario and attendance CSV reports. Files go to MinIO and
// are handed back as presigned URLs.
type ReportesService struct {
	App    core.App
	client *minio.Client
	bucket string
	urlTTL time.Duration
}

func NewReportesService(app core.App, cfg *config.Config) (*ReportesService, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ReportesService{
		App:    app,
		client: client,
		bucket: cfg.ReportsBucket,
		urlTTL: cfg.PresignedURLTTL,
	}, nil
}

// EnsureBucket creates the reports bucket when it does not exist yet.
func (s *ReportesService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ExportarHorarioICS renders the taller's recurring horario as an
// iCalendar file with weekly RRULEs.
func (s *ReportesService) ExportarHorarioICS(ctx context.Context, tallerID string) (models.PresignedExport, error) {
	taller, err := s.App.FindRecordById("talleres", tallerID)
	if err != nil {
		return models.PresignedExport{}, status.ErrTallerNotFound
	}

	horarios, err := s.App.FindRecordsByFilter(
		"horarios",
		"taller_id = {:taller}",
		"dia_semana",
		0,
		0,
		dbx.Params{"taller": tallerID},
	)
	if err != nil {
		return models.PresignedExport{}, fmt.Errorf("find horarios: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Talleres Deportivos//Calendario//ES")

	now := time.Now().UTC()
	for _, horario := range horarios {
		dia := calendar.NormalizeDay(horario.GetString("dia_semana"))
		byday, ok := icalByDay[dia]
		if !ok {
			continue
		}

		startMin, _ := calendar.ToMinutes(horario.GetString("hora_inicio"))
		endMin, _ := calendar.ToMinutes(horario.GetString("hora_fin"))

		first := nextDateForDay(now, dia)
		start := time.Date(first.Year(), first.Month(), first.Day(), startMin/60, startMin%60, 0, 0, time.UTC)
		end := time.Date(first.Year(), first.Month(), first.Day(), endMin/60, endMin%60, 0, 0, time.UTC)

		event := cal.AddEvent(fmt.Sprintf("horario-%s@talleres", horario.Id))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(taller.GetString("nombre"))
		if ubicacion := horario.GetString("ubicacion"); ubicacion != "" {
			event.SetLocation(ubicacion)
		}
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + byday)
	}

	object := fmt.Sprintf("talleres/%s/horario.ics", tallerID)
	return s.subirYFirmar(ctx, object, []byte(cal.Serialize()), "text/calendar")
}

// ReporteAsistenciaCSV builds the attendance report of a taller between two
// ISO dates (inclusive).
func (s *ReportesService) ReporteAsistenciaCSV(ctx context.Context, tallerID, desde, hasta string) (models.PresignedExport, error) {
	if _, err := s.App.FindRecordById("talleres", tallerID); err != nil {
		return models.PresignedExport{}, status.ErrTallerNotFound
	}

	var rows []dbx.NullStringMap
	err := s.App.DB().NewQuery(
		`SELECT c.fecha_clase, c.hora_inicio, al.apellido, al.nombre, a.presente
		 FROM asistencia a
		 JOIN clases c ON c.id = a.clase_id
		 JOIN alumnos al ON al.id = a.alumno_id
		 WHERE c.taller_id = {:taller}
		   AND c.fecha_clase >= {:desde}
		   AND c.fecha_clase <= {:hasta}
		 ORDER BY c.fecha_clase, al.apellido, al.nombre`,
	).Bind(dbx.Params{"taller": tallerID, "desde": desde, "hasta": hasta}).All(&rows)
	if err != nil {
		return models.PresignedExport{}, fmt.Errorf("query asistencia: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"fecha", "hora", "apellido", "nombre", "presente"})
	for _, row := range rows {
		presente := "no"
		if row["presente"].String == "1" || row["presente"].String == "true" {
			presente = "si"
		}
		w.Write([]string{
			row["fecha_clase"].String,
			row["hora_inicio"].String,
			row["apellido"].String,
			row["nombre"].String,
			presente,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return models.PresignedExport{}, fmt.Errorf("write csv: %w", err)
	}

	code, err := utils.GenerateCode(4)
	if err != nil {
		return models.PresignedExport{}, err
	}
	object := fmt.Sprintf("talleres/%s/asistencia-%s-%s-%s.csv", tallerID, desde, hasta, code)
	return s.subirYFirmar(ctx, object, buf.Bytes(), "text/csv")
}

func (s *ReportesService) subirYFirmar(ctx context.Context, object string, data []byte, contentType string) (models.PresignedExport, error) {
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return models.PresignedExport{}, fmt.Errorf("upload %s: %w", object, err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, object, s.urlTTL, url.Values{})
	if err != nil {
		return models.PresignedExport{}, fmt.Errorf("presign %s: %w", object, err)
	}

	return models.PresignedExport{
		URL:      presigned.String(),
		Archivo:  object,
		ExpiraEn: time.Now().Add(s.urlTTL),
	}, nil
}

// nextDateForDay finds the first date on or after from that falls on the
// given day key.
func nextDateForDay(from time.Time, day models.DayKey) time.Time {
	for i := 0; i < 7; i++ {
		candidate := from.AddDate(0, 0, i)
		if calendar.DayKeyForDate(candidate) == day {
			return candidate
		}
	}
	return from
}
