package dto

import "time"

// CreateActaRequest entrada del formulario "Registrar acta".
// Período, estado, usuario y CESFAM no vienen del cliente: los asigna el caso de uso.
type CreateActaRequest struct {
	Correlativo string `json:"numero_correlativo" validate:"required,max=30"`
	ActaDate    string `json:"fecha_acta" validate:"required,datetime=2006-01-02"`

	FirstNames    string `json:"nombres" validate:"required,max=120"`
	LastNames     string `json:"apellidos" validate:"required,max=120"`
	RUT           string `json:"rut" validate:"required,rut"`
	BirthDate     string `json:"fecha_nacimiento" validate:"required,datetime=2006-01-02"`
	BirthPlace    string `json:"lugar_nacimiento" validate:"required,max=120"`
	Address       string `json:"direccion" validate:"required,max=200"`
	Phone         string `json:"telefono" validate:"required,max=50"`
	Email         string `json:"email" validate:"required,email,max=120"`
	MaritalStatus string `json:"estado_civil" validate:"required,estadocivil"`
	Nationality   string `json:"nacionalidad" validate:"required,nacionalidad"`
	Category      string `json:"categoria" validate:"required,max=80"`

	ContractType string `json:"tipo_contrato" validate:"required,tipocontrato"`
	Reason       string `json:"motivo" validate:"max=200"`
	ReplacedRUT  string `json:"rut_reemplazo" validate:"omitempty,rut"`
	ReplacedName string `json:"nombre_reemplazo" validate:"max=120"`
	Convenio     string `json:"convenio" validate:"max=120"`
	Responsible  string `json:"responsable" validate:"max=120"`
	StartDate    string `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"fecha_termino" validate:"required,datetime=2006-01-02"`

	Workplace    string `json:"lugar_trabajo" validate:"required,establecimiento"`
	Position     string `json:"cargo" validate:"required,max=120"`
	Workday      string `json:"jornada" validate:"required,max=120"`
	WorkSchedule string `json:"horario_jornada"`

	HealthScheme string `json:"salud" validate:"required,oneof=FONASA ISAPRE"`
	IsaprePlan   string `json:"plan_isapre" validate:"max=120"`
	AFP          string `json:"afp" validate:"required,afp"`

	Remarks            string `json:"observaciones"`
	SupervisorName     string `json:"nombre_encargado" validate:"required,max=120"`
	SupervisorPosition string `json:"cargo_encargado" validate:"required,max=120"`
}

// MailingRequest fecha de envío físico del acta.
type MailingRequest struct {
	Date string `json:"fecha_envio" validate:"required,datetime=2006-01-02"`
}

// CorrelativoRequest nuevo número correlativo.
type CorrelativoRequest struct {
	Correlativo string `json:"numero_correlativo" validate:"required,max=30"`
}

// ActaListQuery filtros del listado (solo superusuario puede filtrar por cesfam).
type ActaListQuery struct {
	Cesfam string `query:"cesfam"`
	Year   int    `query:"anio" validate:"omitempty,min=2000,max=2100"`
	Month  int    `query:"mes" validate:"omitempty,min=1,max=12"`
	Status string `query:"estado" validate:"omitempty,oneof=borrador enviado cerrado"`
	PageRequest
}

// ActaResponse salida de un acta.
type ActaResponse struct {
	ID          string `json:"id"`
	Correlativo string `json:"numero_correlativo"`
	ActaDate    string `json:"fecha_acta,omitempty"`

	FirstNames    string `json:"nombres"`
	LastNames     string `json:"apellidos"`
	RUT           string `json:"rut"`
	BirthDate     string `json:"fecha_nacimiento,omitempty"`
	BirthPlace    string `json:"lugar_nacimiento,omitempty"`
	Address       string `json:"direccion,omitempty"`
	Phone         string `json:"telefono,omitempty"`
	Email         string `json:"email,omitempty"`
	MaritalStatus string `json:"estado_civil,omitempty"`
	Nationality   string `json:"nacionalidad,omitempty"`
	Category      string `json:"categoria,omitempty"`

	ContractType string `json:"tipo_contrato"`
	Reason       string `json:"motivo,omitempty"`
	ReplacedRUT  string `json:"rut_reemplazo,omitempty"`
	ReplacedName string `json:"nombre_reemplazo,omitempty"`
	Convenio     string `json:"convenio,omitempty"`
	Responsible  string `json:"responsable,omitempty"`
	StartDate    string `json:"fecha_inicio,omitempty"`
	EndDate      string `json:"fecha_termino,omitempty"`

	Workplace    string `json:"lugar_trabajo"`
	Position     string `json:"cargo"`
	Workday      string `json:"jornada"`
	WorkSchedule string `json:"horario_jornada,omitempty"`

	HealthScheme string `json:"salud"`
	IsaprePlan   string `json:"plan_isapre,omitempty"`
	AFP          string `json:"afp"`

	Remarks            string `json:"observaciones,omitempty"`
	SupervisorName     string `json:"nombre_encargado,omitempty"`
	SupervisorPosition string `json:"cargo_encargado,omitempty"`

	PeriodYear  int    `json:"periodo_anio"`
	PeriodMonth int    `json:"periodo_mes"`
	PeriodLabel string `json:"periodo_etiqueta"`

	Status        string  `json:"estado"`
	UserID        string  `json:"usuario_id"`
	Cesfam        string  `json:"cesfam"`
	SignaturePath string  `json:"firma_path,omitempty"`
	MailedAt      string  `json:"fecha_envio_fisico,omitempty"`
	MailedBy      *string `json:"usuario_envio_fisico,omitempty"`

	CreatedAt time.Time  `json:"creado_en"`
	UpdatedAt *time.Time `json:"modificado_en,omitempty"`
}

// CreateActaResponse acta creada más el aviso de cambio de período, si corresponde.
type CreateActaResponse struct {
	Acta          ActaResponse `json:"acta"`
	RolledForward bool         `json:"periodo_adelantado"`
	Notice        string       `json:"aviso,omitempty"`
}

// ActaListResponse lista paginada de actas.
type ActaListResponse struct {
	Items []ActaResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
