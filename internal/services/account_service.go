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

// accountService handles bank-account business logic.
type accountService struct {
	db  *gorm.DB
	bus events.Bus
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, bus events.Bus) AccountServicer {
	return &accountService{db: db, bus: bus}
}

// CreateAccount creates a new bank account. A non-zero initial balance is
// recorded as an income transaction so the ledger explains the balance.
func (s *accountService) CreateAccount(name, description string, scope models.Scope, currency string, initialBalance int64) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if scope == "" {
		scope = models.ScopePersonal
	}
	if currency == "" {
		currency = "BRL"
	}

	account := &models.Account{
		Name:        name,
		Scope:       scope,
		Description: description,
		Balance:     initialBalance,
		Currency:    currency,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if initialBalance > 0 {
			transaction := &models.Transaction{
				AccountID:   account.ID,
				Type:        models.TransactionTypeIncome,
				Amount:      initialBalance,
				Description: "Initial balance",
				Date:        time.Now(),
				Scope:       scope,
			}
			if err := tx.Create(transaction).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(context.Background(), events.New(events.TopicAccounts, events.ActionCreated, account.ID))
	return account, nil
}

// GetAccounts retrieves a paginated list of active accounts, optionally
// filtered by scope.
func (s *accountService) GetAccounts(scope *models.Scope, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("is_active = ?", true)
	if scope != nil {
		base = base.Where("scope = ?", *scope)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID.
func (s *accountService) GetAccountByID(accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an existing account.
func (s *accountService) UpdateAccount(accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.bus.Publish(context.Background(), events.New(events.TopicAccounts, events.ActionUpdated, account.ID))
	}

	return account, nil
}

// ApplyBalanceChange adjusts the materialized balance within the caller's
// transaction. This is the only code path that writes Account.Balance after
// creation. The update is relative (balance = balance + delta) with a funds
// guard in the WHERE clause, so concurrent writers serialize on the row and
// a debit can never be computed from a stale in-memory snapshot.
func (s *accountService) ApplyBalanceChange(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount int64) error {
	var delta int64
	switch transactionType {
	case models.TransactionTypeIncome:
		delta = amount
	case models.TransactionTypeExpense:
		delta = -amount
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported transaction type")
	}

	query := tx.Model(&models.Account{}).Where("id = ?", account.ID)
	if delta < 0 {
		query = query.Where("balance >= ?", -delta)
	}

	result := query.Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInsufficientBalance
	}

	account.Balance += delta
	return nil
}
