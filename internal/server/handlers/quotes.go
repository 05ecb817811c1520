package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/server/middleware"
	"materiaux-pro/internal/service"
)

type QuoteHandler struct {
	quotes *service.QuoteService
}

func NewQuoteHandler(quotes *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

type CreateQuoteRequest struct {
	ClientID   *int64             `json:"client_id,omitempty"`
	SupplierID *int64             `json:"supplier_id,omitempty"`
	Lines      []OrderLineRequest `json:"lines" binding:"required"`
	ValidUntil *time.Time         `json:"valid_until,omitempty"`
}

type UpdateQuoteStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	lines := make([]service.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.LineInput{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	quote, err := h.quotes.CreateQuote(c.Request.Context(), identity, service.QuoteInput{
		ClientID:   req.ClientID,
		SupplierID: req.SupplierID,
		Lines:      lines,
		ValidUntil: req.ValidUntil,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("quote created", quote))
}

func (h *QuoteHandler) GetQuote(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	quote, err := h.quotes.GetQuote(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("quote", quote))
}

func (h *QuoteHandler) ClientQuotes(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	quotes, err := h.quotes.ListClientQuotes(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("quotes", quotes))
}

func (h *QuoteHandler) SupplierQuotes(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	quotes, err := h.quotes.ListSupplierQuotes(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("quotes", quotes))
}

func (h *QuoteHandler) UpdateQuoteStatus(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	quote, err := h.quotes.UpdateQuoteStatus(c.Request.Context(), identity, id, models.QuoteStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("quote status updated", quote))
}
