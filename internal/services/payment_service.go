package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// paymentService handles invoice payment and reversal. Both directions run
// as a single database transaction: the item status flips, the ledger entry,
// and the balance adjustment commit together or not at all.
type paymentService struct {
	db             *gorm.DB
	accountService AccountServicer
	bus            events.Bus
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB, accountService AccountServicer, bus events.Bus) PaymentServicer {
	return &paymentService{db: db, accountService: accountService, bus: bus}
}

// PayInvoice pays every pending item of the card's statement month.
func (s *paymentService) PayInvoice(cardID, accountID, statementMonth string, paymentDate time.Time) (*models.InvoicePayment, error) {
	return s.pay(cardID, accountID, statementMonth, nil, paymentDate)
}

// PayInvoiceItems pays only the selected pending items of the month.
func (s *paymentService) PayInvoiceItems(cardID, accountID, statementMonth string, itemIDs []string, paymentDate time.Time) (*models.InvoicePayment, error) {
	if len(itemIDs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item_ids must not be empty")
	}
	return s.pay(cardID, accountID, statementMonth, itemIDs, paymentDate)
}

// pay runs the payment transaction. itemIDs == nil means a full payment.
func (s *paymentService) pay(cardID, accountID, statementMonth string, itemIDs []string, paymentDate time.Time) (*models.InvoicePayment, error) {
	if _, err := parseStatementMonth(statementMonth); err != nil {
		return nil, err
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	var card models.Card
	if err := s.db.Where("id = ?", cardID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payment *models.InvoicePayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ?", accountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAccountNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// A second full payment of an already-paid month fails here. Under
		// concurrency this check alone is not enough: two in-flight
		// transactions can both count zero, so the unique index on
		// (card_id, statement_month) for live full payments backs it, and
		// the losing insert below maps to the same error.
		if itemIDs == nil {
			var existing int64
			if err := tx.Model(&models.InvoicePayment{}).
				Where("card_id = ? AND statement_month = ? AND partial = ? AND reversed_at IS NULL",
					cardID, statementMonth, false).
				Count(&existing).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if existing > 0 {
				return apperrors.ErrInvoiceAlreadyPaid
			}
		}

		items, err := s.payableItems(tx, cardID, statementMonth, itemIDs)
		if err != nil {
			return err
		}

		var total int64
		for i := range items {
			total += items[i].Amount
		}
		if account.Balance < total {
			return apperrors.ErrInsufficientBalance
		}

		payment = &models.InvoicePayment{
			CardID:         cardID,
			AccountID:      account.ID,
			StatementMonth: statementMonth,
			Amount:         total,
			PaymentDate:    paymentDate,
			Partial:        itemIDs != nil,
		}
		if err := tx.Create(payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrInvoiceAlreadyPaid
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		result := tx.Model(&models.InvoiceItem{}).
			Where("id IN ? AND status = ?", ids, models.InvoiceItemStatusPending).
			Updates(map[string]interface{}{
				"status":     models.InvoiceItemStatusPaid,
				"paid_at":    paymentDate,
				"payment_id": payment.ID,
			})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		// A concurrent payment that grabbed any of these items first shows
		// up as a short row count.
		if result.RowsAffected != int64(len(ids)) {
			return apperrors.WithMessage(apperrors.ErrItemNotPayable, "item is no longer pending")
		}

		ledger := &models.Transaction{
			AccountID:        account.ID,
			Type:             models.TransactionTypeExpense,
			Amount:           total,
			Description:      fmt.Sprintf("Invoice payment %s %s", card.Name, statementMonth),
			Date:             paymentDate,
			Scope:            account.Scope,
			InvoicePaymentID: &payment.ID,
		}
		if err := tx.Create(ledger).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.accountService.ApplyBalanceChange(tx, &account, models.TransactionTypeExpense, total)
	})
	if err != nil {
		return nil, err
	}

	s.publishRefresh(events.ActionPaid, payment.ID)
	return payment, nil
}

// payableItems loads and validates the items a payment covers.
func (s *paymentService) payableItems(tx *gorm.DB, cardID, statementMonth string, itemIDs []string) ([]models.InvoiceItem, error) {
	if itemIDs == nil {
		var items []models.InvoiceItem
		if err := tx.
			Where("card_id = ? AND statement_month = ? AND status = ?",
				cardID, statementMonth, models.InvoiceItemStatusPending).
			Find(&items).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(items) == 0 {
			return nil, apperrors.ErrNoPendingItems
		}
		return items, nil
	}

	var items []models.InvoiceItem
	if err := tx.Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(items) != len(itemIDs) {
		return nil, apperrors.ErrInvoiceItemNotFound
	}
	for i := range items {
		if items[i].CardID != cardID || items[i].StatementMonth != statementMonth {
			return nil, apperrors.WithMessage(apperrors.ErrItemNotPayable,
				"item does not belong to this card and statement month")
		}
		if items[i].Status != models.InvoiceItemStatusPending {
			return nil, apperrors.WithMessage(apperrors.ErrItemNotPayable,
				"item is not pending")
		}
	}
	return items, nil
}

// ReversePayment undoes an invoice payment in one transaction: items return
// to pending, the linked ledger entry is removed, and the account is
// credited back. The paid-items sum is revalidated against the recorded
// payment amount before anything changes.
func (s *paymentService) ReversePayment(paymentID string) (*models.InvoicePayment, error) {
	var payment models.InvoicePayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if payment.Reversed() {
			return apperrors.ErrPaymentAlreadyReversed
		}

		var items []models.InvoiceItem
		if err := tx.Where("payment_id = ?", payment.ID).Find(&items).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var paidSum int64
		for i := range items {
			paidSum += items[i].Amount
		}
		if paidSum != payment.Amount {
			return apperrors.ErrPaymentAmountMismatch
		}

		if err := tx.Model(&models.InvoiceItem{}).
			Where("payment_id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":     models.InvoiceItemStatusPending,
				"paid_at":    nil,
				"payment_id": nil,
			}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// The ledger entry is found by its foreign key, never by matching
		// descriptions or dates.
		if err := tx.Where("invoice_payment_id = ?", payment.ID).
			Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var account models.Account
		if err := tx.Where("id = ?", payment.AccountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAccountNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.accountService.ApplyBalanceChange(tx, &account, models.TransactionTypeIncome, payment.Amount); err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&models.InvoicePayment{}).
			Where("id = ? AND reversed_at IS NULL", payment.ID).
			Update("reversed_at", now)
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		// A concurrent reversal that committed first leaves nothing to stamp.
		if result.RowsAffected == 0 {
			return apperrors.ErrPaymentAlreadyReversed
		}
		payment.ReversedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRefresh(events.ActionReversed, payment.ID)
	return &payment, nil
}

// GetPaymentByID retrieves a payment by ID.
func (s *paymentService) GetPaymentByID(paymentID string) (*models.InvoicePayment, error) {
	var payment models.InvoicePayment
	if err := s.db.Where("id = ?", paymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payment, nil
}

// GetPayments retrieves a paginated list of payments with optional filters.
func (s *paymentService) GetPayments(cardID, statementMonth *string, page pagination.PageRequest) (*pagination.PageResponse[models.InvoicePayment], error) {
	page.Defaults()

	base := s.db.Model(&models.InvoicePayment{})
	if cardID != nil {
		base = base.Where("card_id = ?", *cardID)
	}
	if statementMonth != nil {
		base = base.Where("statement_month = ?", *statementMonth)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.InvoicePayment
	if err := base.Scopes(pagination.Paginate(page)).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// publishRefresh broadcasts the four invalidations a payment or reversal
// touches, once each, after commit.
func (s *paymentService) publishRefresh(action events.Action, paymentID string) {
	ctx := context.Background()
	s.bus.Publish(ctx, events.New(events.TopicCards, action, paymentID))
	s.bus.Publish(ctx, events.New(events.TopicAccounts, action, paymentID))
	s.bus.Publish(ctx, events.New(events.TopicTransactions, action, paymentID))
	s.bus.Publish(ctx, events.New(events.TopicInvoiceItems, action, paymentID))
}
