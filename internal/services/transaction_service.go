package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// transactionService handles ledger-transaction business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	bus            events.Bus
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, bus events.Bus) TransactionServicer {
	return &transactionService{db: db, accountService: accountService, bus: bus}
}

// CreateTransaction records an income or expense and applies it to the
// account balance in the same database transaction.
func (s *transactionService) CreateTransaction(
	accountID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount int64,
	description string,
	date time.Time,
	scope models.Scope,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if date.IsZero() {
		date = time.Now()
	}

	account, err := s.accountService.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if scope == "" {
		scope = account.Scope
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ?", *categoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	transaction := &models.Transaction{
		AccountID:   account.ID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      amount,
		Description: description,
		Date:        date,
		Scope:       scope,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.ApplyBalanceChange(tx, account, transactionType, amount)
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	s.bus.Publish(ctx, events.New(events.TopicTransactions, events.ActionCreated, transaction.ID))
	s.bus.Publish(ctx, events.New(events.TopicAccounts, events.ActionUpdated, account.ID))
	return transaction, nil
}

// GetAccountTransactions retrieves a paginated, filtered list of
// transactions for a specific account.
func (s *transactionService) GetAccountTransactions(accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.accountService.GetAccountByID(accountID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)
	base = applyTransactionFilters(base, filter)

	return s.listTransactions(base, page)
}

// GetTransactions retrieves a paginated, filtered list of all transactions.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.Model(&models.Transaction{}), filter)
	return s.listTransactions(base, page)
}

func (s *transactionService) listTransactions(base *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Scope != nil {
		q = q.Where("scope = ?", *f.Scope)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID.
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction deletes a transaction and rolls its effect back out of
// the account balance. Entries written by an invoice payment are refused;
// those only leave the ledger through payment reversal, keeping the item
// status and the ledger consistent.
func (s *transactionService) DeleteTransaction(transactionID string) error {
	transaction, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return err
	}
	if transaction.InvoicePaymentID != nil {
		return apperrors.ErrPaymentEntryImmutable
	}

	account, err := s.accountService.GetAccountByID(transaction.AccountID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var reverseType models.TransactionType
		switch transaction.Type {
		case models.TransactionTypeIncome:
			reverseType = models.TransactionTypeExpense
		case models.TransactionTypeExpense:
			reverseType = models.TransactionTypeIncome
		default:
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported transaction type")
		}

		return s.accountService.ApplyBalanceChange(tx, account, reverseType, transaction.Amount)
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	s.bus.Publish(ctx, events.New(events.TopicTransactions, events.ActionDeleted, transaction.ID))
	s.bus.Publish(ctx, events.New(events.TopicAccounts, events.ActionUpdated, account.ID))
	return nil
}
