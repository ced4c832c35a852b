package handlers

import (
	"net/http"

	"github.com/diewo77/decor-booking/httpx"
	"github.com/diewo77/decor-booking/internal/booking"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler lets administrators review submitted requests.
type BookingHandler struct {
	bookings *booking.Service
	log      *zap.Logger
}

func NewBookingHandler(b *booking.Service, log *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: b, log: logging.OrNop(log)}
}

func (h *BookingHandler) List(c *gin.Context) {
	status := models.BookingStatus(c.Query("status"))
	switch status {
	case "", models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusDeclined:
	default:
		httpx.Error(c, http.StatusBadRequest, "invalid_request", "status")
		return
	}
	list, err := h.bookings.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	req, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
