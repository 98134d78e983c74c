package statement

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// pdfRenderer writes an A4 portrait statement with a header block and one
// table row per line item.
type pdfRenderer struct{}

func (r *pdfRenderer) Render(w io.Writer, card *models.Card, invoice *services.Invoice) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", card.Name, invoice.StatementMonth), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s - %s", card.Name, invoice.StatementMonth), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Closing day %d, due day %d", card.ClosingDay, card.DueDay), "", 1, "L", false, 0, "")
	status := "Open"
	if invoice.IsPaid {
		status = "Paid"
		if invoice.PaymentDate != nil {
			status = fmt.Sprintf("Paid on %s", invoice.PaymentDate.Format("2006-01-02"))
		}
	}
	pdf.CellFormat(0, 6, status, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(25, 8, "Due date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Status", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "Amount (R$)", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i := range invoice.Items {
		item := &invoice.Items[i]
		pdf.CellFormat(25, 7, item.DueDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, statusLabel(item.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, formatMoney(item.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(145, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, formatMoney(invoice.Total), "", 1, "R", false, 0, "")
	pdf.CellFormat(145, 7, "Paid", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, formatMoney(invoice.TotalPaid), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
