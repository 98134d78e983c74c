package services

import (
	"time"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// parseStatementMonth parses a "YYYY-MM" statement month into the first
// instant of that month, UTC.
func parseStatementMonth(month string) (time.Time, error) {
	t, err := time.Parse(models.StatementMonthLayout, month)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "statement month must be in YYYY-MM format")
	}
	return t, nil
}

// statementMonthOf returns the statement month a purchase on the given date
// belongs to for a card closing on closingDay. Purchases after the closing
// day roll over to the next month's invoice.
func statementMonthOf(date time.Time, closingDay int) time.Time {
	month := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	if date.Day() > closingDay {
		month = month.AddDate(0, 1, 0)
	}
	return month
}

// invoiceDueDate places the due date on the card's due day in the month
// following the statement month.
func invoiceDueDate(statementMonth time.Time, dueDay int) time.Time {
	next := statementMonth.AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), dueDay, 0, 0, 0, 0, time.UTC)
}
