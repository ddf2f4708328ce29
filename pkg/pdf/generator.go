package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// SignaturePayload carries the visible signature block contents.
type SignaturePayload struct {
	FullName             string
	IdentificationNumber string
	SigningTime          time.Time
	IPAddress            string
	OriginalHash         string
}

type Renderer interface {
	AppendSignatureBlock(ctx context.Context, original []byte, payload SignaturePayload) ([]byte, error)
}

type signatureRenderer struct{}

func NewRenderer() Renderer {
	return &signatureRenderer{}
}

// AppendSignatureBlock renders a signature certificate page and appends it
// after the original document. The original bytes are never modified.
func (r *signatureRenderer) AppendSignatureBlock(ctx context.Context, original []byte, payload SignaturePayload) ([]byte, error) {
	page, err := r.renderCertificatePage(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to render signature page: %w", err)
	}

	var merged bytes.Buffer
	sources := []io.ReadSeeker{
		bytes.NewReader(original),
		bytes.NewReader(page),
	}
	if err := api.MergeRaw(sources, &merged, false, nil); err != nil {
		return nil, fmt.Errorf("failed to append signature page: %w", err)
	}
	return merged.Bytes(), nil
}

func (r *signatureRenderer) renderCertificatePage(payload SignaturePayload) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "Letter", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 12, "Constancia de Firma Electronica", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetDrawColor(120, 120, 120)
	doc.Line(20, doc.GetY(), 196, doc.GetY())
	doc.Ln(8)

	rows := [][2]string{
		{"Firmado por", payload.FullName},
		{"Identificacion", payload.IdentificationNumber},
		{"Fecha y hora", payload.SigningTime.UTC().Format(time.RFC3339)},
		{"Direccion IP", payload.IPAddress},
		{"Hash del documento original", payload.OriginalHash},
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(60, 8, row[0], "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 8, row[1], "", "L", false)
	}

	doc.Ln(6)
	doc.SetFont("Helvetica", "I", 9)
	doc.MultiCell(0, 6,
		"Este documento fue firmado electronicamente. El hash SHA-256 permite verificar "+
			"la integridad del documento original al momento de la firma.",
		"", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
