package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
	"centavo/internal/statement"
)

// InvoiceHandler handles invoice reads, payment, and statement export.
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	paymentService services.PaymentServicer
	cardService    services.CardServicer
	auditService   services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, paymentService services.PaymentServicer, cardService services.CardServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		cardService:    cardService,
		auditService:   auditService,
	}
}

// PayInvoiceRequest represents the request payload for paying an invoice.
// When item_ids is empty, every pending item of the month is paid.
type PayInvoiceRequest struct {
	AccountID   string   `json:"account_id" binding:"required,uuid"`
	Month       string   `json:"month" binding:"required,statement_month"`
	ItemIDs     []string `json:"item_ids" binding:"omitempty,dive,uuid"`
	PaymentDate string   `json:"payment_date"`
}

// monthQuery reads the ?month= parameter, defaulting to the current month.
func monthQuery(c *gin.Context) string {
	if month := c.Query("month"); month != "" {
		return month
	}
	return time.Now().UTC().Format("2006-01")
}

// GetInvoice handles fetching a card's invoice for one statement month.
// @Summary     Get an invoice
// @Description Get a card's line items and totals for a statement month
// @Tags        invoices
// @Produce     json
// @Param       id path string true "Card ID"
// @Param       month query string false "Statement month (YYYY-MM, defaults to current)"
// @Success     200 {object} services.Invoice
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id}/invoice [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoice(cardID, monthQuery(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// PayInvoice handles paying an invoice in full or by item subset.
// @Summary     Pay an invoice
// @Description Pay all pending items of the month, or only the listed items. Runs as one transaction: items are marked paid, a ledger entry is written, and the account is debited.
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Param       id path string true "Card ID"
// @Param       request body PayInvoiceRequest true "Payment details"
// @Success     201 {object} models.InvoicePayment "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     402 {object} ErrorResponse "Insufficient balance"
// @Failure     404 {object} ErrorResponse "Card or account not found"
// @Failure     409 {object} ErrorResponse "Invoice already paid or item not payable"
// @Router      /cards/{id}/invoice/pay [post]
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		parsed, err := parseFlexibleTime(req.PaymentDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		paymentDate = parsed
	}

	var payment *models.InvoicePayment
	if len(req.ItemIDs) > 0 {
		payment, err = h.paymentService.PayInvoiceItems(cardID, req.AccountID, req.Month, req.ItemIDs, paymentDate)
	} else {
		payment, err = h.paymentService.PayInvoice(cardID, req.AccountID, req.Month, paymentDate)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("PAY_INVOICE", "invoice_payment", payment.ID, c.ClientIP(),
		map[string]interface{}{"card_id": cardID, "month": req.Month, "partial": payment.Partial})

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// GetStatement handles exporting an invoice as a document.
// @Summary     Export a statement
// @Description Download a card's monthly invoice as a PDF or XLSX document
// @Tags        invoices
// @Produce     application/pdf
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param       id path string true "Card ID"
// @Param       month query string false "Statement month (YYYY-MM, defaults to current)"
// @Param       format query string true "pdf or xlsx"
// @Success     200 {file} binary "Statement document"
// @Failure     400 {object} ErrorResponse "Unknown format or invalid month"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id}/invoice/statement [get]
func (h *InvoiceHandler) GetStatement(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	format, err := statement.ParseFormat(c.DefaultQuery("format", "pdf"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	month := monthQuery(c)
	card, err := h.cardService.GetCardByID(cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	invoice, err := h.invoiceService.GetInvoice(cardID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("statement-%s-%s.%s", card.ID, month, format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)

	if err := statement.NewRenderer(format).Render(c.Writer, card, invoice); err != nil {
		// Headers are already out; log and abort the stream.
		respondWithError(c, err)
	}
}
