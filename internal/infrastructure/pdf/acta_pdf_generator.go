// Package pdf genera la versión imprimible del acta de contratación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Establecimiento + CESFAM  │  N° correlativo + fecha │
//	│  ─────────────────────────────────────────────────────────  │
//	│  IDENTIFICACIÓN DEL FUNCIONARIO                              │
//	│  CONTRATO (+ reemplazo / convenio según tipo)                │
//	│  DATOS LABORALES · PREVISIÓN                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMA + QR   │   Período remunerativo + estado               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/domain/entity"
	domacta "github.com/janonimox/actas-api/internal/domain/acta"
	"github.com/janonimox/actas-api/pkg/rut"
)

var _ acta.ActaPDFGenerator = (*ActaPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 84, Blue: 147}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// SignatureReader lee la imagen de firma guardada (storage.Local la implementa).
type SignatureReader interface {
	ReadAll(relPath string) ([]byte, error)
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ActaPDFGenerator implementa acta.ActaPDFGenerator con Maroto v2.
type ActaPDFGenerator struct {
	signatures SignatureReader
}

// NewActaPDFGenerator construye el generador. signatures puede ser nil: el PDF sale sin imagen de firma.
func NewActaPDFGenerator(signatures SignatureReader) *ActaPDFGenerator {
	return &ActaPDFGenerator{signatures: signatures}
}

// GenerateActaPDF genera el PDF y devuelve sus bytes.
func (g *ActaPDFGenerator) GenerateActaPDF(_ context.Context, a *entity.Acta) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("pdf: acta nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta de contratación "+a.Correlativo, true).
		WithAuthor(a.Cesfam, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(a))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRows("IDENTIFICACIÓN DEL FUNCIONARIO", [][2]string{
		{"Nombre", a.FullName()},
		{"RUT", rut.Format(a.RUT)},
		{"Fecha de nacimiento", date(a.BirthDate)},
		{"Lugar de nacimiento", a.BirthPlace},
		{"Nacionalidad", a.Nationality},
		{"Estado civil", a.MaritalStatus},
		{"Dirección", a.Address},
		{"Teléfono", a.Phone},
		{"Email", a.Email},
		{"Categoría", a.Category},
	})...)

	m.AddRows(sectionRows("CONTRATO", contractFields(a))...)

	m.AddRows(sectionRows("DATOS LABORALES", [][2]string{
		{"Lugar de trabajo", a.Workplace},
		{"Cargo", a.Position},
		{"Jornada", a.Workday},
		{"Horario", a.WorkSchedule},
		{"Encargado", joinNonEmpty(" · ", a.SupervisorName, a.SupervisorPosition)},
	})...)

	health := string(a.HealthScheme)
	if a.IsaprePlan != "" {
		health += " (" + a.IsaprePlan + ")"
	}
	m.AddRows(sectionRows("PREVISIÓN", [][2]string{
		{"Salud", health},
		{"AFP", a.AFP},
	})...)

	if strings.TrimSpace(a.Remarks) != "" {
		m.AddRows(sectionRows("OBSERVACIONES", [][2]string{{"", a.Remarks}})...)
	}

	m.AddRows(row.New(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRow(a))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(a *entity.Acta) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ACTA DE CONTRATACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(a.Cesfam, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("N° "+nonEmpty(a.Correlativo, "—"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+nonEmpty(date(a.ActaDate), "—"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// contractFields incluye reemplazo y convenio solo cuando el tipo de contrato los exige.
func contractFields(a *entity.Acta) [][2]string {
	fields := [][2]string{
		{"Tipo de contrato", string(a.ContractType)},
		{"Motivo", a.Reason},
		{"Vigencia", joinNonEmpty(" al ", date(a.StartDate), date(a.EndDate))},
	}
	rules, err := domacta.RulesFor(a.ContractType)
	if err != nil {
		return fields
	}
	if rules.RequiresReplacement {
		fields = append(fields,
			[2]string{"Titular reemplazado", a.ReplacedName},
			[2]string{"RUT titular", rut.Format(a.ReplacedRUT)},
		)
	}
	if rules.RequiresConvenio {
		fields = append(fields,
			[2]string{"Convenio", a.Convenio},
			[2]string{"Responsable", a.Responsible},
		)
	}
	return fields
}

// sectionRows título de sección y una fila por campo; los campos vacíos se omiten.
func sectionRows(title string, fields [][2]string) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}))),
	}
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			continue
		}
		if f[0] == "" {
			rows = append(rows, row.New(12).Add(col.New(12).Add(
				text.New(f[1], props.Text{Size: 8, Top: 1, Left: 2}),
			)))
			continue
		}
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(f[0]+":", props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 0.5, Left: 2,
			})),
			col.New(8).Add(text.New(f[1], props.Text{Size: 8, Top: 0.5})),
		))
	}
	return rows
}

// footerRow firma (si existe) y QR con el identificador del acta; a la derecha el período.
func (g *ActaPDFGenerator) footerRow(a *entity.Acta) core.Row {
	p := entity.Period{Year: a.PeriodYear, Month: a.PeriodMonth}
	info := col.New(6).Add(
		text.New("Período remunerativo: "+p.Label(), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 4, Align: align.Right,
		}),
		text.New("Estado: "+a.Status, props.Text{Size: 8, Top: 11, Align: align.Right, Color: colorGray}),
	)
	if a.MailedAt != nil {
		info.Add(text.New("Envío físico: "+a.MailedAt.Format("02/01/2006"), props.Text{
			Size: 8, Top: 17, Align: align.Right, Color: colorGray,
		}))
	}
	return row.New(40).Add(
		g.signatureCol(a),
		col.New(2).Add(code.NewQr("acta:"+a.ID, props.Rect{Percent: 90, Center: true})),
		info,
	)
}

func (g *ActaPDFGenerator) signatureCol(a *entity.Acta) core.Col {
	c := col.New(4)
	if g.signatures != nil && a.SignaturePath != "" {
		if ext, ok := imageExtension(a.SignaturePath); ok {
			if data, err := g.signatures.ReadAll(a.SignaturePath); err == nil {
				return c.Add(image.NewFromBytes(data, ext, props.Rect{Percent: 80, Center: true}))
			}
		}
	}
	return c.Add(
		line.New(props.Line{Color: colorGray, Thickness: 0.3, OffsetPercent: 70}),
		text.New("Firma", props.Text{Size: 8, Top: 30, Align: align.Center, Color: colorGray}),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// imageExtension formatos que maroto puede incrustar (webp no).
func imageExtension(path string) (extension.Type, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return extension.Png, true
	case ".jpg":
		return extension.Jpg, true
	case ".jpeg":
		return extension.Jpeg, true
	default:
		return "", false
	}
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
