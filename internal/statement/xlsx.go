package statement

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// xlsxRenderer writes a one-sheet workbook with a header row and one row per
// line item. Amounts are written as numbers so spreadsheet formulas work.
type xlsxRenderer struct{}

func (r *xlsxRenderer) Render(w io.Writer, card *models.Card, invoice *services.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, invoice.StatementMonth); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sheet = invoice.StatementMonth

	set := func(col, row int, value interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, value)
	}

	writeHeader := func() error {
		if err := set(1, 1, fmt.Sprintf("%s - %s", card.Name, invoice.StatementMonth)); err != nil {
			return err
		}
		headers := []string{"Due date", "Description", "Status", "Installment", "Amount (R$)"}
		for col, h := range headers {
			if err := set(col+1, 3, h); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeHeader(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	row := 4
	for i := range invoice.Items {
		item := &invoice.Items[i]
		installment := ""
		if item.InstallmentNumber != nil && item.InstallmentTotal != nil {
			installment = fmt.Sprintf("%d/%d", *item.InstallmentNumber, *item.InstallmentTotal)
		}
		values := []interface{}{
			item.DueDate.Format("2006-01-02"),
			item.Description,
			statusLabel(item.Status),
			installment,
			float64(item.Amount) / 100,
		}
		for col, v := range values {
			if err := set(col+1, row, v); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		row++
	}

	row++
	if err := set(4, row, "Total"); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := set(5, row, float64(invoice.Total)/100); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	row++
	if err := set(4, row, "Paid"); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := set(5, row, float64(invoice.TotalPaid)/100); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
