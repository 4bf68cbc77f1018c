package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janonimox/actas-api/internal/domain/entity"
)

type noSignatures struct{ calls int }

func (n *noSignatures) ReadAll(string) ([]byte, error) {
	n.calls++
	return nil, assert.AnError
}

func actaPDF() *entity.Acta {
	mailed := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	return &entity.Acta{
		ID:           "0b7c5f7e-1111-4a3b-9c1d-2a2a2a2a2a2a",
		Correlativo:  "2025-014",
		ActaDate:     time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		FirstNames:   "María José",
		LastNames:    "Rojas Pizarro",
		RUT:          "12345678-5",
		ContractType: entity.ContractReemplazoConvenio,
		ReplacedRUT:  "11111111-1",
		ReplacedName: "Pedro Soto",
		Convenio:     "Programa Más Adultos Mayores",
		Responsible:  "Dirección CESFAM",
		StartDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		Workplace:    "CESFAM Tongoy",
		Position:     "TENS",
		Workday:      "44 horas",
		HealthScheme: entity.HealthIsapre,
		IsaprePlan:   "Plan Base",
		AFP:          "AFP Modelo",
		Remarks:      "Reemplazo por licencia médica.",
		PeriodYear:   2025,
		PeriodMonth:  7,
		Status:       entity.ActaStatusSent,
		Cesfam:       "CESFAM Tongoy",
		MailedAt:     &mailed,
	}
}

func TestGenerateActaPDF(t *testing.T) {
	g := NewActaPDFGenerator(nil)

	out, err := g.GenerateActaPDF(context.Background(), actaPDF())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateActaPDF_FirmaIlegibleNoFalla(t *testing.T) {
	sig := &noSignatures{}
	g := NewActaPDFGenerator(sig)

	a := actaPDF()
	a.SignaturePath = "firmas/x.png"
	out, err := g.GenerateActaPDF(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 1, sig.calls)

	a.SignaturePath = "firmas/x.webp"
	_, err = g.GenerateActaPDF(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 1, sig.calls, "webp no se incrusta")
}

func TestGenerateActaPDF_Nil(t *testing.T) {
	_, err := NewActaPDFGenerator(nil).GenerateActaPDF(context.Background(), nil)
	assert.Error(t, err)
}

func TestContractFields_SoloCamposDelTipo(t *testing.T) {
	a := actaPDF()
	a.ContractType = entity.ContractPlazoFijo
	labels := map[string]bool{}
	for _, f := range contractFields(a) {
		labels[f[0]] = true
	}
	assert.False(t, labels["Titular reemplazado"])
	assert.False(t, labels["Convenio"])

	a.ContractType = entity.ContractReemplazoConvenio
	labels = map[string]bool{}
	for _, f := range contractFields(a) {
		labels[f[0]] = true
	}
	assert.True(t, labels["Titular reemplazado"])
	assert.True(t, labels["Convenio"])
}
