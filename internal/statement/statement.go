// Package statement renders a card's monthly invoice as a downloadable
// document. Two formats are supported: PDF for reading and XLSX for
// spreadsheet work. Both render the same data: the card header, one row per
// line item, and the totals.
package statement

import (
	"io"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"

	"github.com/shopspring/decimal"
)

// Format identifies a statement output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format query value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatXLSX:
		return Format(s), nil
	default:
		return "", apperrors.ErrStatementFormatUnknown
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Renderer writes a card invoice to an output stream in one format.
type Renderer interface {
	Render(w io.Writer, card *models.Card, invoice *services.Invoice) error
}

// NewRenderer returns the renderer for the given format.
func NewRenderer(format Format) Renderer {
	if format == FormatXLSX {
		return &xlsxRenderer{}
	}
	return &pdfRenderer{}
}

// formatMoney renders cents as a decimal string, e.g. 123456 -> "1234.56".
func formatMoney(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func statusLabel(status models.InvoiceItemStatus) string {
	switch status {
	case models.InvoiceItemStatusPaid:
		return "Paid"
	case models.InvoiceItemStatusCanceled:
		return "Canceled"
	default:
		return "Pending"
	}
}
