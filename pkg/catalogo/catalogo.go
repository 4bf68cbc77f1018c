// Package catalogo contiene las listas cerradas que usa el formulario de actas:
// establecimientos de la red de salud de Coquimbo, AFP, nacionalidades y estado civil.
package catalogo

// =============================================================================
// Establecimientos (lugar de trabajo)
// =============================================================================

var Establecimientos = []string{
	"CESFAM Santa Cecilia",
	"CESFAM San Juan",
	"CESFAM Sergio Aguilar",
	"CESFAM Tierras Blancas",
	"CESFAM Tongoy",
	"CESFAM Pan de Azúcar",
	"CESFAM El Sauce",
	"CESFAM Lila Cortés Godoy",
	"CECOSF Punta Mira",
	"PSR Guanaqueros",
	"Departamento de Salud Coquimbo",
}

// =============================================================================
// Administradoras de Fondos de Pensiones
// =============================================================================

var AFPs = []string{
	"AFP Capital",
	"AFP Cuprum",
	"AFP Habitat",
	"AFP Modelo",
	"AFP PlanVital",
	"AFP Provida",
	"AFP Uno",
}

var Nacionalidades = []string{
	"Chilena", "Peruana", "Boliviana", "Colombiana", "Española", "Argentina",
	"Brasileña", "Ecuatoriana", "Venezolana", "Uruguaya", "Paraguaya",
}

var EstadosCiviles = []string{"Soltero/a", "Casado/a", "Viudo/a", "Divorciado/a"}

var (
	establecimientoSet = toSet(Establecimientos)
	afpSet             = toSet(AFPs)
	nacionalidadSet    = toSet(Nacionalidades)
	estadoCivilSet     = toSet(EstadosCiviles)
)

// EsEstablecimiento informa si s es un establecimiento de la red.
func EsEstablecimiento(s string) bool { return establecimientoSet[s] }

// EsAFP informa si s es una AFP vigente del catálogo.
func EsAFP(s string) bool { return afpSet[s] }

func EsNacionalidad(s string) bool { return nacionalidadSet[s] }

func EsEstadoCivil(s string) bool { return estadoCivilSet[s] }

// NombreMes devuelve el nombre del mes en español (1 = Enero). Fuera de rango devuelve "".
func NombreMes(mes int) string {
	if mes < 1 || mes > 12 {
		return ""
	}
	return meses[mes-1]
}

var meses = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func toSet(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, s := range list {
		m[s] = true
	}
	return m
}
