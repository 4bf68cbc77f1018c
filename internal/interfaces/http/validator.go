package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/pkg/catalogo"
	"github.com/janonimox/actas-api/pkg/rut"
)

// newValidator validador de requests con las reglas de catálogo de la red de salud.
// Los errores se reportan con el nombre JSON del campo.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("rut", stringRule(rut.IsValid))
	_ = v.RegisterValidation("establecimiento", stringRule(catalogo.EsEstablecimiento))
	_ = v.RegisterValidation("afp", stringRule(catalogo.EsAFP))
	_ = v.RegisterValidation("nacionalidad", stringRule(catalogo.EsNacionalidad))
	_ = v.RegisterValidation("estadocivil", stringRule(catalogo.EsEstadoCivil))
	_ = v.RegisterValidation("tipocontrato", stringRule(isContractType))
	return v
}

func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	}
}

func isContractType(s string) bool {
	for _, ct := range entity.ContractTypes {
		if string(ct) == s {
			return true
		}
	}
	return false
}
