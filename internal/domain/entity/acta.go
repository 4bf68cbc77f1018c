package entity

import "time"

// ContractType tipo de contrato del acta (lista cerrada).
type ContractType string

const (
	ContractPlazoFijo         ContractType = "Plazo Fijo"
	ContractPlazoFijoConvenio ContractType = "Plazo Fijo (Convenio)"
	ContractReemplazo         ContractType = "Reemplazo"
	ContractReemplazoConvenio ContractType = "Reemplazo (Convenio)"
)

// ContractTypes en el orden en que se muestran en el formulario.
var ContractTypes = []ContractType{
	ContractPlazoFijo, ContractPlazoFijoConvenio, ContractReemplazo, ContractReemplazoConvenio,
}

// HealthScheme sistema de salud previsional.
type HealthScheme string

const (
	HealthFonasa HealthScheme = "FONASA"
	HealthIsapre HealthScheme = "ISAPRE"
)

// Estados del acta (coinciden con el CHECK ck_acta_estado).
const (
	ActaStatusDraft  = "borrador"
	ActaStatusSent   = "enviado"
	ActaStatusClosed = "cerrado"
)

// Tipos de firma previstos para la firma digital. Hoy solo se usa "imagen".
const (
	SignatureTypeImage = "imagen"
	SignatureTypeFES   = "FES"
	SignatureTypeFEA   = "FEA"
)

// Acta es el documento de contratación/nombramiento de un funcionario.
// PeriodYear/PeriodMonth se copian del período resuelto al crearla y no se modifican después.
type Acta struct {
	ID          string
	Correlativo string    // número correlativo asignado por administrativos
	ActaDate    time.Time // "Fecha de acta"

	// Identificación del funcionario
	FirstNames    string
	LastNames     string
	RUT           string
	BirthDate     time.Time
	BirthPlace    string
	Address       string
	Phone         string
	Email         string
	MaritalStatus string
	Nationality   string
	Category      string

	// Contrato y campos condicionales
	ContractType ContractType
	Reason       string
	ReplacedRUT  string // solo Reemplazo
	ReplacedName string // solo Reemplazo
	Convenio     string // solo (Convenio)
	Responsible  string // solo (Convenio)
	StartDate    time.Time
	EndDate      time.Time

	// Datos laborales
	Workplace    string
	Position     string
	Workday      string
	WorkSchedule string

	// Salud y AFP
	HealthScheme HealthScheme
	IsaprePlan   string // solo ISAPRE
	AFP          string

	Remarks            string
	SupervisorName     string
	SupervisorPosition string

	// Período remunerativo asignado automáticamente
	PeriodYear  int
	PeriodMonth int

	Status string // borrador | enviado | cerrado
	UserID string
	Cesfam string

	// Firma escaneada y envío físico
	SignaturePath string
	MailedAt      *time.Time
	MailedBy      *string

	// Preparación firma digital: se persisten pero ninguna lógica los procesa.
	SignatureType    string
	SignedAt         *time.Time
	SignatureHash    string
	SignatureCN      string
	SignatureSerial  string
	SignatureP7SPath string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// OwnedBy indica si el acta fue creada por userID.
func (a *Acta) OwnedBy(userID string) bool {
	return a != nil && a.UserID == userID
}

// FullName nombres + apellidos.
func (a *Acta) FullName() string {
	if a.LastNames == "" {
		return a.FirstNames
	}
	return a.FirstNames + " " + a.LastNames
}
