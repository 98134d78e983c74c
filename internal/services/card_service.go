package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/events"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// cardService handles card business logic.
type cardService struct {
	db  *gorm.DB
	bus events.Bus
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB, bus events.Bus) CardServicer {
	return &cardService{db: db, bus: bus}
}

// CreateCard creates a new card linked to its default paying account.
func (s *cardService) CreateCard(name string, scope models.Scope, creditLimit int64, closingDay, dueDay int, accountID, color string) (*models.Card, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
	}
	if creditLimit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit must be greater than zero")
	}
	if closingDay < 1 || closingDay > 28 || dueDay < 1 || dueDay > 28 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "closing day and due day must be between 1 and 28")
	}
	if scope == "" {
		scope = models.ScopePersonal
	}

	// Verify the paying account exists
	var account models.Account
	if err := s.db.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	card := &models.Card{
		Name:        name,
		Scope:       scope,
		CreditLimit: creditLimit,
		ClosingDay:  closingDay,
		DueDay:      dueDay,
		AccountID:   accountID,
		Color:       color,
		IsActive:    true,
	}

	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.bus.Publish(context.Background(), events.New(events.TopicCards, events.ActionCreated, card.ID))
	return card, nil
}

// GetCards retrieves a paginated list of active cards with their aggregate
// limit figures. Limit used is the sum of pending items across all months.
func (s *cardService) GetCards(scope *models.Scope, page pagination.PageRequest) (*pagination.PageResponse[CardSummary], error) {
	page.Defaults()

	base := s.db.Model(&models.Card{}).Where("is_active = ?", true)
	if scope != nil {
		base = base.Where("scope = ?", *scope)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.Card
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summaries := make([]CardSummary, len(cards))
	for i := range cards {
		summaries[i] = CardSummary{Card: cards[i]}
	}
	if err := s.fillLimitUsage(summaries); err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(summaries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// fillLimitUsage computes pending-item sums for the given cards in one query.
func (s *cardService) fillLimitUsage(summaries []CardSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	ids := make([]string, len(summaries))
	for i := range summaries {
		ids[i] = summaries[i].ID
	}

	type usage struct {
		CardID string
		Used   int64
	}
	var usages []usage
	if err := s.db.Model(&models.InvoiceItem{}).
		Select("card_id, COALESCE(SUM(amount), 0) AS used").
		Where("card_id IN ? AND status = ?", ids, models.InvoiceItemStatusPending).
		Group("card_id").
		Scan(&usages).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	used := make(map[string]int64, len(usages))
	for _, u := range usages {
		used[u.CardID] = u.Used
	}
	for i := range summaries {
		summaries[i].LimitUsed = used[summaries[i].ID]
		summaries[i].LimitAvailable = summaries[i].CreditLimit - summaries[i].LimitUsed
	}
	return nil
}

// GetCardByID retrieves a card by ID.
func (s *cardService) GetCardByID(cardID string) (*models.Card, error) {
	var card models.Card
	if err := s.db.Where("id = ?", cardID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCard updates an existing card.
func (s *cardService) UpdateCard(cardID string, fields CardUpdateFields) (*models.Card, error) {
	card, err := s.GetCardByID(cardID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.CreditLimit != nil {
		if *fields.CreditLimit <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit must be greater than zero")
		}
		updates["credit_limit"] = *fields.CreditLimit
	}
	if fields.ClosingDay != nil {
		if *fields.ClosingDay < 1 || *fields.ClosingDay > 28 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "closing day must be between 1 and 28")
		}
		updates["closing_day"] = *fields.ClosingDay
	}
	if fields.DueDay != nil {
		if *fields.DueDay < 1 || *fields.DueDay > 28 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 28")
		}
		updates["due_day"] = *fields.DueDay
	}
	if fields.AccountID != nil {
		var account models.Account
		if err := s.db.Where("id = ?", *fields.AccountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAccountNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["account_id"] = *fields.AccountID
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(card).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", card.ID).First(card).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.bus.Publish(context.Background(), events.New(events.TopicCards, events.ActionUpdated, card.ID))
	}

	return card, nil
}

// DeleteCard removes a card. When invoice items or payments still reference
// it, the card is deactivated instead so history stays intact.
func (s *cardService) DeleteCard(cardID string) (bool, error) {
	card, err := s.GetCardByID(cardID)
	if err != nil {
		return false, err
	}

	var linked int64
	if err := s.db.Model(&models.InvoiceItem{}).Where("card_id = ?", card.ID).Count(&linked).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if linked == 0 {
		var payments int64
		if err := s.db.Model(&models.InvoicePayment{}).Where("card_id = ?", card.ID).Count(&payments).Error; err != nil {
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		linked = payments
	}

	if linked > 0 {
		if err := s.db.Model(card).Update("is_active", false).Error; err != nil {
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.bus.Publish(context.Background(), events.New(events.TopicCards, events.ActionUpdated, card.ID))
		return true, nil
	}

	if err := s.db.Delete(card).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.bus.Publish(context.Background(), events.New(events.TopicCards, events.ActionDeleted, card.ID))
	return false, nil
}

// CreatePurchase records a card purchase, splitting it into installment
// line items. Amounts are divided with decimal arithmetic; remainder cents
// go to the first installment so the parts always sum to the purchase.
func (s *cardService) CreatePurchase(cardID string, input PurchaseInput) ([]models.InvoiceItem, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Installments < 1 {
		input.Installments = 1
	}
	if input.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "purchase date is required")
	}

	card, err := s.GetCardByID(cardID)
	if err != nil {
		return nil, err
	}
	if !card.IsActive {
		return nil, apperrors.ErrCardInactive
	}

	if input.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ?", *input.CategoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	n := input.Installments
	per := decimal.NewFromInt(input.Amount).
		Div(decimal.NewFromInt(int64(n))).
		Floor().
		IntPart()
	remainder := input.Amount - per*int64(n)

	firstMonth := statementMonthOf(input.Date, card.ClosingDay)

	items := make([]models.InvoiceItem, n)
	for i := 0; i < n; i++ {
		month := firstMonth.AddDate(0, i, 0)
		amount := per
		if i == 0 {
			amount += remainder
		}

		item := models.InvoiceItem{
			CardID:         card.ID,
			CategoryID:     input.CategoryID,
			StatementMonth: month.Format(models.StatementMonthLayout),
			Description:    input.Description,
			Amount:         amount,
			DueDate:        invoiceDueDate(month, card.DueDay),
			Status:         models.InvoiceItemStatusPending,
		}
		if n > 1 {
			num := i + 1
			total := n
			original := input.Amount
			item.Description = fmt.Sprintf("%s (%d/%d)", input.Description, num, total)
			item.InstallmentNumber = &num
			item.InstallmentTotal = &total
			item.OriginalAmount = &original
		}
		items[i] = item
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(context.Background(), events.New(events.TopicInvoiceItems, events.ActionCreated, card.ID))
	s.bus.Publish(context.Background(), events.New(events.TopicCards, events.ActionUpdated, card.ID))
	return items, nil
}
