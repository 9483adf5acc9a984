// Package pdf genera el certificado de registro en PDF (tamaño A4) que luego
// pasa a firma electrónica externa.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  ENCABEZADO: Oficina Nacional de Derecho de Autor            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CERTIFICADO DE REGISTRO + número de registro                │
//	│  Datos: solicitante / título de la obra / trámite            │
//	│  Libro y folio del asiento                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  QR con el número de registro + leyenda legal                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/onda-do/registro-api/internal/application/workflow"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const officeName = "Oficina Nacional de Derecho de Autor"

// CertificateRenderer implementa workflow.CertificateRenderer usando Maroto v2.
type CertificateRenderer struct{}

// NewCertificateRenderer construye el generador.
func NewCertificateRenderer() *CertificateRenderer { return &CertificateRenderer{} }

var _ workflow.CertificateRenderer = (*CertificateRenderer)(nil)

// RenderCertificate genera el PDF del certificado y devuelve sus bytes.
func (g *CertificateRenderer) RenderCertificate(_ context.Context, data workflow.CertificateData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Certificado de Registro "+data.RegistryNumber, true).
		WithAuthor(officeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(titleRow(data))
	m.AddRows(bodyRows(data)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar certificado: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow() core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New(officeName, props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
			text.New("República Dominicana", props.Text{
				Size: 9, Align: align.Center, Top: 10, Color: colorGray,
			}),
		),
	)
}

func titleRow(data workflow.CertificateData) core.Row {
	return row.New(24).Add(
		col.New(12).Add(
			text.New("CERTIFICADO DE REGISTRO", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center,
				Color: colorPrimary, Top: 4,
			}),
			text.New(data.RegistryNumber, props.Text{
				Style: fontstyle.Bold, Size: 16, Align: align.Center, Top: 12,
			}),
		),
	)
}

func bodyRows(data workflow.CertificateData) []core.Row {
	field := func(label, value string) core.Row {
		return row.New(10).Add(
			col.New(4).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2, Color: colorGray,
			})),
			col.New(8).Add(text.New(value, props.Text{Size: 10, Top: 2})),
		)
	}
	return []core.Row{
		row.New(6),
		field("Solicitante:", data.Applicant),
		field("Título de la obra:", data.WorkTitle),
		field("Trámite:", data.ServiceName),
		field("Libro:", data.BookNumber),
		field("Folio:", data.PageNumber),
		field("Fecha de emisión:", data.IssuedAt.Format("02/01/2006")),
		row.New(6),
	}
}

func footerRow(data workflow.CertificateData) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(data.RegistryNumber, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Escanee el código QR para verificar el asiento\nen el registro nacional.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(
				"El presente certificado acredita el asiento del registro indicado "+
					"y carece de validez sin la firma electrónica de la oficina.",
				props.Text{Size: 7.5, Top: 24, Left: 3, Color: colorGray},
			),
		),
	)
}
