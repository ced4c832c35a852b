package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/decor-booking/httpx"
	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/booking"
	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/catalog"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/quote"
	"github.com/diewo77/decor-booking/internal/session"
	"github.com/diewo77/decor-booking/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QuoteHandler drives a client's quote stored in a session. Every request
// rebuilds the quote from the stored selections and the current catalog, so
// prices and surcharges are never taken from the client.
type QuoteHandler struct {
	sessions session.Store
	catalog  catalog.Provider
	dates    *availability.Resolver
	bookings *booking.Service
	currency string
	log      *zap.Logger
}

func NewQuoteHandler(sessions session.Store, cat catalog.Provider, dates *availability.Resolver, bookings *booking.Service, currency string, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		sessions: sessions,
		catalog:  cat,
		dates:    dates,
		bookings: bookings,
		currency: currency,
		log:      logging.OrNop(log),
	}
}

type quoteResponse struct {
	ID string `json:"id"`
	quote.Summary
}

func (h *QuoteHandler) restore(ctx context.Context, id string) (*quote.Builder, error) {
	st, err := h.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(ctx, h.catalog)
	if err != nil {
		return nil, err
	}
	return quote.Restore(st, cat, h.dates), nil
}

// edit loads the session's quote, applies fn and saves the result.
// fn returning false means the edit was refused with a response already written.
func (h *QuoteHandler) edit(c *gin.Context, fn func(b *quote.Builder) bool) {
	ctx := c.Request.Context()
	id := c.Param("id")
	b, err := h.restore(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !fn(b) {
		return
	}
	if err := h.sessions.Save(ctx, id, b.State()); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{ID: id, Summary: b.Summary(h.currency)})
}

func (h *QuoteHandler) Create(c *gin.Context) {
	id, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	b := quote.NewBuilder(catalog.NewSnapshot(nil), h.dates)
	c.JSON(http.StatusCreated, quoteResponse{ID: id, Summary: b.Summary(h.currency)})
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	b, err := h.restore(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{ID: id, Summary: b.Summary(h.currency)})
}

// Reset clears the quote but keeps the session.
func (h *QuoteHandler) Reset(c *gin.Context) {
	h.edit(c, func(b *quote.Builder) bool {
		b.Reset()
		return true
	})
}

type addLineRequest struct {
	ServiceID uint `json:"service_id" binding:"required"`
}

func (h *QuoteHandler) AddLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, func(b *quote.Builder) bool {
		if !b.AddLine(req.ServiceID) {
			httpx.Error(c, http.StatusNotFound, "not_found", "service_id")
			return false
		}
		return true
	})
}

// RemoveLine is a no-op for a service that is not in the quote.
func (h *QuoteHandler) RemoveLine(c *gin.Context) {
	serviceID, ok := idParam(c, "serviceID")
	if !ok {
		return
	}
	h.edit(c, func(b *quote.Builder) bool {
		b.RemoveLine(serviceID)
		return true
	})
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SetQuantity removes the line when the quantity is zero or less.
func (h *QuoteHandler) SetQuantity(c *gin.Context) {
	serviceID, ok := idParam(c, "serviceID")
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, func(b *quote.Builder) bool {
		b.SetQuantity(serviceID, *req.Quantity)
		return true
	})
}

func (h *QuoteHandler) ToggleOption(c *gin.Context) {
	serviceID, ok := idParam(c, "serviceID")
	if !ok {
		return
	}
	optionID, ok := idParam(c, "optionID")
	if !ok {
		return
	}
	h.edit(c, func(b *quote.Builder) bool {
		b.ToggleOption(serviceID, optionID)
		return true
	})
}

type dateRequest struct {
	Date string `json:"date"`
}

// SetDate accepts any valid date; non-bookable dates are flagged in the
// summary and refused at submission. An empty date clears it.
func (h *QuoteHandler) SetDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var d calendar.Date
	if req.Date != "" {
		v := make(validation.Violations)
		d = validation.Date("date", req.Date, v)
		if !v.Empty() {
			httpx.Error(c, http.StatusUnprocessableEntity, "invalid_date", violations(v))
			return
		}
	}
	h.edit(c, func(b *quote.Builder) bool {
		b.SetEventDate(d)
		return true
	})
}

// Submit turns the quote into a pending booking request. The date is
// re-checked against the store; the session is dropped once stored.
func (h *QuoteHandler) Submit(c *gin.Context) {
	var contact booking.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	b, err := h.restore(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	fin, err := b.Finalize()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	req, err := h.bookings.Submit(ctx, fin, contact)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.sessions.Delete(ctx, id); err != nil {
		h.log.Warn("drop submitted quote session", zap.String("session", id), zap.Error(err))
	}
	c.JSON(http.StatusCreated, req)
}
