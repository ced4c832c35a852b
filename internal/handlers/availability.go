package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/decor-booking/httpx"
	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reloader refreshes a cached snapshot from its store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// AvailabilityHandler serves the client calendar and the administrator's
// override editing.
type AvailabilityHandler struct {
	dates    *availability.Resolver
	settings Reloader
	log      *zap.Logger
}

func NewAvailabilityHandler(dates *availability.Resolver, settings Reloader, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{dates: dates, settings: settings, log: logging.OrNop(log)}
}

// Month renders the calendar grid from the in-memory snapshot.
func (h *AvailabilityHandler) Month(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		httpx.Error(c, http.StatusBadRequest, "invalid_date", "year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		httpx.Error(c, http.StatusBadRequest, "invalid_date", "month")
		return
	}
	c.JSON(http.StatusOK, h.dates.Month(year, time.Month(month)))
}

type dateResponse struct {
	availability.Resolution
	Bookable bool `json:"bookable"`
}

// Date resolves one date against the store so clients see current state.
func (h *AvailabilityHandler) Date(c *gin.Context) {
	d, ok := dateParam(c, "date")
	if !ok {
		return
	}
	bookable, res, err := h.dates.IsBookableFresh(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dateResponse{Resolution: res, Bookable: bookable})
}

// ListOverrides returns the snapshot's overrides, optionally limited to [from, to].
func (h *AvailabilityHandler) ListOverrides(c *gin.Context) {
	var from, to calendar.Date
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = calendar.Parse(v); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid_date", "from")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = calendar.Parse(v); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid_date", "to")
			return
		}
	}
	out := make([]models.DateOverride, 0)
	for _, o := range h.dates.Overrides() {
		d, err := calendar.Parse(o.Date)
		if err != nil {
			continue
		}
		if (!from.IsZero() && d.Before(from)) || (!to.IsZero() && d.After(to)) {
			continue
		}
		out = append(out, o)
	}
	loaded, at := h.dates.Loaded()
	c.JSON(http.StatusOK, gin.H{"overrides": out, "loaded": loaded, "loaded_at": at})
}

type overrideRequest struct {
	Status           models.OverrideStatus `json:"status" binding:"required"`
	SurchargePercent int                   `json:"surcharge_percent"`
	Note             string                `json:"note"`
}

func (h *AvailabilityHandler) PutOverride(c *gin.Context) {
	d, ok := dateParam(c, "date")
	if !ok {
		return
	}
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rec, err := h.dates.SetOverride(c.Request.Context(), d, req.Status, req.SurchargePercent, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *AvailabilityHandler) DeleteOverride(c *gin.Context) {
	d, ok := dateParam(c, "date")
	if !ok {
		return
	}
	if err := h.dates.RemoveOverride(c.Request.Context(), d); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type rangeRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
	Note  string `json:"note"`
}

func (r rangeRequest) dates(c *gin.Context) (calendar.Date, calendar.Date, bool) {
	start, err := calendar.Parse(r.Start)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid_date", "start")
		return calendar.Date{}, calendar.Date{}, false
	}
	end, err := calendar.Parse(r.End)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid_date", "end")
		return calendar.Date{}, calendar.Date{}, false
	}
	return start, end, true
}

func (h *AvailabilityHandler) BlockRange(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start, end, ok := req.dates(c)
	if !ok {
		return
	}
	n, err := h.dates.SetRangeBlocked(c.Request.Context(), start, end, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n})
}

func (h *AvailabilityHandler) ClearRange(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start, end, ok := req.dates(c)
	if !ok {
		return
	}
	n, err := h.dates.ClearRangeBlocked(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n})
}

type makeAvailableRequest struct {
	Dates []string `json:"dates" binding:"required"`
	// Nil lets each date take the policy default.
	SurchargePercent *int `json:"surcharge_percent"`
}

func (h *AvailabilityHandler) MakeAvailable(c *gin.Context) {
	var req makeAvailableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dates := make([]calendar.Date, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := calendar.Parse(raw)
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid_date", raw)
			return
		}
		dates = append(dates, d)
	}
	n, err := h.dates.SetManyAvailable(c.Request.Context(), dates, req.SurchargePercent)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n})
}

// Reload refreshes the policy and the override snapshot from the store.
func (h *AvailabilityHandler) Reload(c *gin.Context) {
	ctx := c.Request.Context()
	if h.settings != nil {
		if err := h.settings.Reload(ctx); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	if err := h.dates.Reload(ctx); err != nil {
		respondError(c, h.log, err)
		return
	}
	_, at := h.dates.Loaded()
	c.JSON(http.StatusOK, gin.H{"loaded": true, "loaded_at": at, "overrides": len(h.dates.Overrides())})
}
