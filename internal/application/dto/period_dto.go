package dto

import "time"

// CreatePeriodRequest entrada para crear un período remunerativo.
type CreatePeriodRequest struct {
	Year       int    `json:"anio" validate:"required,min=2000,max=2100"`
	Month      int    `json:"mes" validate:"required,min=1,max=12"`
	WindowOpen string `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	Cutoff     string `json:"fecha_corte" validate:"required,datetime=2006-01-02"`
}

// SetPeriodStatusRequest entrada para abrir o cerrar un período.
// El estado se valida en el caso de uso para devolver INVALID_STATUS.
type SetPeriodStatusRequest struct {
	Status string `json:"estado"`
}

// PeriodResponse salida de un período (persistido o proyectado).
type PeriodResponse struct {
	ID         string     `json:"id,omitempty"`
	Year       int        `json:"anio"`
	Month      int        `json:"mes"`
	Label      string     `json:"etiqueta"`
	WindowOpen string     `json:"fecha_inicio"`
	Cutoff     string     `json:"fecha_corte"`
	Active     bool       `json:"activo"`
	Status     string     `json:"estado"`
	Projected  bool       `json:"proyectado"`
	CreatedAt  *time.Time `json:"creado_en,omitempty"`
}

// PeriodListResponse listado completo del registro (año y mes descendentes).
type PeriodListResponse struct {
	Items []PeriodResponse `json:"items"`
}

// ResolvedPeriodResponse período que se asignará a las actas creadas hoy.
type ResolvedPeriodResponse struct {
	Period        PeriodResponse `json:"periodo"`
	RolledForward bool           `json:"periodo_adelantado"`
	Notice        string         `json:"aviso,omitempty"`
}
