package handlers

import (
	"strconv"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"talleres-system/models"
)

type AdminHandler struct {
	app *pocketbase.PocketBase
}

func NewAdminHandler(app *pocketbase.PocketBase) *AdminHandler {
	return &AdminHandler{app: app}
}

// GetOcupacion returns enrollment vs capacity for every active taller.
// Superuser only.
func (h *AdminHandler) GetOcupacion(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.Collection().Name != core.CollectionNameSuperusers {
		return apis.NewForbiddenError("Solo administradores", nil)
	}

	var rows []dbx.NullStringMap
	err := h.app.DB().NewQuery(
		`SELECT t.id, t.nombre, t.cupo,
		        COUNT(i.id) AS inscriptos
		 FROM talleres t
		 LEFT JOIN inscripciones i ON i.taller_id = t.id AND i.estado = 'activa'
		 WHERE t.estado = 'activo'
		 GROUP BY t.id, t.nombre, t.cupo
		 ORDER BY t.nombre`,
	).All(&rows)
	if err != nil {
		return apis.NewBadRequestError("No se pudo calcular la ocupacion", err)
	}

	ocupacion := make([]models.OcupacionTaller, 0, len(rows))
	for _, row := range rows {
		cupo, _ := strconv.Atoi(row["cupo"].String)
		inscriptos, _ := strconv.Atoi(row["inscriptos"].String)

		pct := decimal.Zero
		if cupo > 0 {
			pct = decimal.NewFromInt(int64(inscriptos)).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(int64(cupo))).
				Round(1)
		}

		ocupacion = append(ocupacion, models.OcupacionTaller{
			TallerID:   row["id"].String,
			Nombre:     row["nombre"].String,
			Cupo:       cupo,
			Inscriptos: inscriptos,
			Ocupacion:  pct,
		})
	}

	return ok(e, map[string]any{"talleres": ocupacion})
}

// GetStockBajo lists indumentaria items at or below ?umbral= units
// (default 5). Superuser only.
func (h *AdminHandler) GetStockBajo(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.Collection().Name != core.CollectionNameSuperusers {
		return apis.NewForbiddenError("Solo administradores", nil)
	}

	umbral := 5
	if raw := e.Request.URL.Query().Get("umbral"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apis.NewBadRequestError("Umbral invalido", err)
		}
		umbral = parsed
	}

	records, err := h.app.FindRecordsByFilter(
		"indumentaria",
		"stock <= {:umbral}",
		"stock",
		0,
		0,
		dbx.Params{"umbral": umbral},
	)
	if err != nil {
		return apis.NewBadRequestError("No se pudo consultar el stock", err)
	}

	items := make([]models.Indumentaria, 0, len(records))
	for _, record := range records {
		items = append(items, models.Indumentaria{
			ID:       record.Id,
			TallerID: record.GetString("taller_id"),
			Articulo: record.GetString("articulo"),
			Talle:    record.GetString("talle"),
			Precio:   decimal.NewFromFloat(record.GetFloat("precio")),
			Stock:    record.GetInt("stock"),
		})
	}

	return ok(e, map[string]any{
		"umbral": umbral,
		"items":  items,
	})
}
