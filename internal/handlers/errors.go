package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/decor-booking/httpx"
	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/booking"
	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/catalog"
	"github.com/diewo77/decor-booking/internal/quote"
	"github.com/diewo77/decor-booking/internal/session"
	"github.com/diewo77/decor-booking/internal/settings"
	"github.com/diewo77/decor-booking/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors to status codes and error codes.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var (
		contactErr  *booking.ContactError
		catalogErr  *catalog.InvalidError
		settingsErr *settings.InvalidError
	)
	switch {
	case errors.As(err, &contactErr):
		httpx.Error(c, http.StatusUnprocessableEntity, "invalid_contact", violations(contactErr.Violations))
	case errors.As(err, &catalogErr):
		httpx.Error(c, http.StatusUnprocessableEntity, "validation_failed", violations(catalogErr.Violations))
	case errors.As(err, &settingsErr):
		httpx.Error(c, http.StatusUnprocessableEntity, "invalid_settings", violations(settingsErr.Violations))
	case errors.Is(err, availability.ErrInvalidOverride):
		httpx.Error(c, http.StatusUnprocessableEntity, "invalid_override", err.Error())
	case errors.Is(err, availability.ErrInvalidRange):
		httpx.Error(c, http.StatusUnprocessableEntity, "invalid_range", err.Error())
	case errors.Is(err, quote.ErrEmptyQuote):
		httpx.Error(c, http.StatusUnprocessableEntity, "empty_quote", nil)
	case errors.Is(err, quote.ErrNoEventDate):
		httpx.Error(c, http.StatusUnprocessableEntity, "no_event_date", nil)
	case errors.Is(err, booking.ErrDateUnavailable):
		httpx.Error(c, http.StatusConflict, "date_no_longer_available", nil)
	case errors.Is(err, booking.ErrSurchargeChanged):
		httpx.Error(c, http.StatusConflict, "surcharge_changed", nil)
	case errors.Is(err, session.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "session_not_found", nil)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, booking.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, availability.ErrPersistence):
		log.Error("availability store failure", zap.String("path", c.FullPath()), zap.Error(err))
		httpx.Error(c, http.StatusServiceUnavailable, "storage_unavailable", nil)
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		httpx.Error(c, http.StatusInternalServerError, "internal_error", nil)
	}
}

func violations(v validation.Violations) map[string]string {
	return map[string]string(v)
}

func badRequest(c *gin.Context, err error) {
	httpx.Error(c, http.StatusBadRequest, "invalid_request", err.Error())
}

// dateParam parses a YYYY-MM-DD path parameter.
func dateParam(c *gin.Context, name string) (calendar.Date, bool) {
	v := make(validation.Violations)
	d := validation.Date(name, c.Param(name), v)
	if !v.Empty() {
		httpx.Error(c, http.StatusBadRequest, "invalid_date", violations(v))
		return calendar.Date{}, false
	}
	return d, true
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		httpx.Error(c, http.StatusBadRequest, "invalid_request", name)
		return 0, false
	}
	return uint(n), true
}
