package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// PaymentHandler handles invoice-payment reads and reversal.
type PaymentHandler struct {
	paymentService services.PaymentServicer
	auditService   services.AuditServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer, auditService services.AuditServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, auditService: auditService}
}

// GetPayments handles listing invoice payments.
// @Summary     List payments
// @Tags        payments
// @Produce     json
// @Param       card_id query string false "Card filter"
// @Param       month query string false "Statement month filter (YYYY-MM)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Items per page"
// @Success     200 {object} pagination.PageResponse[models.InvoicePayment]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /payments [get]
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var cardID, month *string
	if raw := c.Query("card_id"); raw != "" {
		cardID = &raw
	}
	if raw := c.Query("month"); raw != "" {
		month = &raw
	}

	result, err := h.paymentService.GetPayments(cardID, month, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayment handles fetching a single payment.
// @Summary     Get a payment
// @Tags        payments
// @Produce     json
// @Param       id path string true "Payment ID"
// @Success     200 {object} models.InvoicePayment
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Router      /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.GetPaymentByID(paymentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// ReversePayment handles undoing an invoice payment.
// @Summary     Reverse a payment
// @Description Undo a payment in one transaction: items return to pending, the ledger entry is removed, and the account is credited back.
// @Tags        payments
// @Produce     json
// @Param       id path string true "Payment ID"
// @Success     200 {object} models.InvoicePayment "Reversed payment"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     409 {object} ErrorResponse "Payment already reversed or ledger inconsistent"
// @Router      /payments/{id}/reverse [post]
func (h *PaymentHandler) ReversePayment(c *gin.Context) {
	paymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.ReversePayment(paymentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("REVERSE_PAYMENT", "invoice_payment", payment.ID, c.ClientIP(),
		map[string]interface{}{"card_id": payment.CardID, "amount": payment.Amount})

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}
