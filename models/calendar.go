package models

// DayKey is a canonical weekday column key: lowercase, trimmed, with
// diacritics stripped ("miercoles", never "Miércoles").
type DayKey string

const (
	DayLunes     DayKey = "lunes"
	DayMartes    DayKey = "martes"
	DayMiercoles DayKey = "miercoles"
	DayJueves    DayKey = "jueves"
	DayViernes   DayKey = "viernes"
	DaySabado    DayKey = "sabado"
	DayDomingo   DayKey = "domingo"
)

// WeekDays is the fixed column order of the grid.
var WeekDays = []DayKey{
	DayLunes, DayMartes, DayMiercoles, DayJueves,
	DayViernes, DaySabado, DayDomingo,
}

// CalendarEvent is the uniform event shape every raw schedule record is
// normalized into before layout.
type CalendarEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Day      DayKey `json:"day"`
	Start    string `json:"start"` // HH:MM, 24h
	End      string `json:"end"`   // HH:MM, 24h
	Color    string `json:"color,omitempty"`
}

// PositionedEvent is a CalendarEvent plus the geometry computed by the
// layout engine. Top/Height/Left/Width are fractions in [0,1] relative to
// the day column, so clients can scale them to any viewport.
type PositionedEvent struct {
	CalendarEvent
	Lane   int     `json:"lane"`
	Lanes  int     `json:"lanes"` // lanes in this event's overlap cluster
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// DayColumn groups the positioned events of one weekday column.
type DayColumn struct {
	Day    DayKey            `json:"dia"`
	Events []PositionedEvent `json:"eventos"`
}

// WeekLayout is the full computed grid for one week.
type WeekLayout struct {
	Days       []DayColumn `json:"dias"`
	GridStart  string      `json:"hora_desde"` // HH:MM
	GridEnd    string      `json:"hora_hasta"` // HH:MM
	Dropped    int         `json:"descartados"`
	TotalLanes int         `json:"-"`
}

// ScheduleRecord is the tagged union of the two raw shapes the backend
// stores: a recurring weekly slot (horario) and a dated class session
// (clase). The normalizer switches exhaustively over these.
type ScheduleRecord interface {
	isScheduleRecord()
}

// RecurringSlot is a weekly horario row: it already carries a named weekday.
type RecurringSlot struct {
	ID             string `json:"id"`
	TallerID       string `json:"taller_id"`
	TallerNombre   string `json:"taller_nombre,omitempty"`
	ProfesorNombre string `json:"profesor_nombre,omitempty"`
	DiaSemana      string `json:"dia_semana"`
	HoraInicio     string `json:"hora_inicio"`
	HoraFin        string `json:"hora_fin"`
	Ubicacion      string `json:"ubicacion_nombre,omitempty"`
	Color          string `json:"color,omitempty"`
}

// DatedSession is a concrete clase row: the weekday has to be derived from
// its absolute date.
type DatedSession struct {
	ID             string `json:"id"`
	TallerID       string `json:"taller_id"`
	TallerNombre   string `json:"taller_nombre,omitempty"`
	ProfesorNombre string `json:"profesor_nombre,omitempty"`
	FechaClase     string `json:"fecha_clase"` // ISO date, YYYY-MM-DD
	HoraInicio     string `json:"hora_inicio"`
	HoraFin        string `json:"hora_fin"`
	Color          string `json:"color,omitempty"`
}

func (RecurringSlot) isScheduleRecord() {}
func (DatedSession) isScheduleRecord()  {}
