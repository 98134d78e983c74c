package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// invoiceService reads invoices. It has no side effects and every call
// recomputes from current rows, so it is safe to use as a refetch source
// after any mutation.
type invoiceService struct {
	db *gorm.DB
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB) InvoiceServicer {
	return &invoiceService{db: db}
}

// GetInvoice aggregates the card's line items for one statement month.
// Canceled items are listed but excluded from every total.
func (s *invoiceService) GetInvoice(cardID, statementMonth string) (*Invoice, error) {
	if _, err := parseStatementMonth(statementMonth); err != nil {
		return nil, err
	}

	var card models.Card
	if err := s.db.Where("id = ?", cardID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.InvoiceItem
	if err := s.db.
		Where("card_id = ? AND statement_month = ?", cardID, statementMonth).
		Order("due_date, created_at").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	invoice := &Invoice{
		CardID:         cardID,
		StatementMonth: statementMonth,
		Items:          items,
	}

	pendingInMonth := 0
	for i := range items {
		switch items[i].Status {
		case models.InvoiceItemStatusPaid:
			invoice.Total += items[i].Amount
			invoice.TotalPaid += items[i].Amount
			invoice.PaidCount++
		case models.InvoiceItemStatusPending:
			invoice.Total += items[i].Amount
			pendingInMonth++
		}
	}
	invoice.IsPaid = invoice.PaidCount > 0 && pendingInMonth == 0

	// Limit usage is card-wide: every pending item holds limit regardless of
	// which statement month it sits on.
	var limitUsed int64
	if err := s.db.Model(&models.InvoiceItem{}).
		Where("card_id = ? AND status = ?", cardID, models.InvoiceItemStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&limitUsed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	invoice.LimitUsed = limitUsed
	invoice.LimitAvailable = card.CreditLimit - limitUsed

	// Payment date comes from the most recent non-reversed payment of the
	// month; FK linkage makes this a lookup, not a guess.
	var payment models.InvoicePayment
	err := s.db.
		Where("card_id = ? AND statement_month = ? AND reversed_at IS NULL", cardID, statementMonth).
		Order("payment_date DESC").
		First(&payment).Error
	switch {
	case err == nil:
		invoice.PaymentDate = &payment.PaymentDate
	case errors.Is(err, gorm.ErrRecordNotFound):
		// unpaid month
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return invoice, nil
}
