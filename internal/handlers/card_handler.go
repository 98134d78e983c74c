package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// CardHandler handles credit-card requests.
type CardHandler struct {
	cardService  services.CardServicer
	auditService services.AuditServicer
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService services.CardServicer, auditService services.AuditServicer) *CardHandler {
	return &CardHandler{cardService: cardService, auditService: auditService}
}

// CreateCardRequest represents the request payload for creating a card.
type CreateCardRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Scope       string `json:"scope" binding:"omitempty,account_scope"`
	CreditLimit int64  `json:"credit_limit" binding:"required,gt=0"`
	ClosingDay  int    `json:"closing_day" binding:"required,min=1,max=28"`
	DueDay      int    `json:"due_day" binding:"required,min=1,max=28"`
	AccountID   string `json:"account_id" binding:"required,uuid"`
	Color       string `json:"color" binding:"omitempty,hex_color"`
}

// UpdateCardRequest represents the request payload for updating a card.
type UpdateCardRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	CreditLimit *int64  `json:"credit_limit" binding:"omitempty,gt=0"`
	ClosingDay  *int    `json:"closing_day" binding:"omitempty,min=1,max=28"`
	DueDay      *int    `json:"due_day" binding:"omitempty,min=1,max=28"`
	AccountID   *string `json:"account_id" binding:"omitempty,uuid"`
	Color       *string `json:"color" binding:"omitempty,hex_color"`
	IsActive    *bool   `json:"is_active"`
}

// CreatePurchaseRequest represents the request payload for recording a card
// purchase, optionally split into monthly installments.
type CreatePurchaseRequest struct {
	Description  string  `json:"description" binding:"required,min=1,max=500"`
	Amount       int64   `json:"amount" binding:"required,gt=0"`
	Date         string  `json:"date" binding:"required"`
	Installments int     `json:"installments" binding:"omitempty,min=1,max=48"`
	CategoryID   *string `json:"category_id" binding:"omitempty,uuid"`
}

// CreateCard handles the creation of a new card.
// @Summary     Create a card
// @Tags        cards
// @Accept      json
// @Produce     json
// @Param       request body CreateCardRequest true "Card details"
// @Success     201 {object} models.Card "Card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Paying account not found"
// @Router      /cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.CreateCard(req.Name, models.Scope(req.Scope), req.CreditLimit, req.ClosingDay, req.DueDay, req.AccountID, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_CARD", "card", card.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "credit_limit": req.CreditLimit})

	c.JSON(http.StatusCreated, gin.H{"card": card})
}

// GetCards handles listing cards with their limit usage.
// @Summary     List cards
// @Description Get a paginated list of active cards with used and available limit
// @Tags        cards
// @Produce     json
// @Param       scope query string false "Scope filter (personal or business)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Items per page"
// @Success     200 {object} pagination.PageResponse[services.CardSummary]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /cards [get]
func (h *CardHandler) GetCards(c *gin.Context) {
	scope, err := parseScopeQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.cardService.GetCards(scope, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCard handles fetching a single card.
// @Summary     Get a card
// @Tags        cards
// @Produce     json
// @Param       id path string true "Card ID"
// @Success     200 {object} models.Card
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCardByID(cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// UpdateCard handles updating a card.
// @Summary     Update a card
// @Tags        cards
// @Accept      json
// @Produce     json
// @Param       id path string true "Card ID"
// @Param       request body UpdateCardRequest true "Fields to update"
// @Success     200 {object} models.Card
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id} [put]
func (h *CardHandler) UpdateCard(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.UpdateCard(cardID, services.CardUpdateFields{
		Name:        req.Name,
		CreditLimit: req.CreditLimit,
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
		AccountID:   req.AccountID,
		Color:       req.Color,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_CARD", "card", card.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// DeleteCard handles deleting a card.
// @Summary     Delete a card
// @Description Delete a card. Cards with invoice history are deactivated instead so records stay intact.
// @Tags        cards
// @Produce     json
// @Param       id path string true "Card ID"
// @Success     200 {object} map[string]bool "deactivated flag"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id} [delete]
func (h *CardHandler) DeleteCard(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	deactivated, err := h.cardService.DeleteCard(cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_CARD", "card", cardID, c.ClientIP(),
		map[string]interface{}{"deactivated": deactivated})

	c.JSON(http.StatusOK, gin.H{"deactivated": deactivated})
}

// CreatePurchase handles recording a card purchase.
// @Summary     Record a purchase
// @Description Record a card purchase, split into installment line items across statement months
// @Tags        cards
// @Accept      json
// @Produce     json
// @Param       id path string true "Card ID"
// @Param       request body CreatePurchaseRequest true "Purchase details"
// @Success     201 {array} models.InvoiceItem "Created line items"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Failure     409 {object} ErrorResponse "Card inactive"
// @Router      /cards/{id}/purchases [post]
func (h *CardHandler) CreatePurchase(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.cardService.CreatePurchase(cardID, services.PurchaseInput{
		Description:  req.Description,
		Amount:       req.Amount,
		Date:         date,
		Installments: req.Installments,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_PURCHASE", "card", cardID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "installments": len(items)})

	c.JSON(http.StatusCreated, gin.H{"items": items})
}
