package handlers

import (
	"net/http"

	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/settings"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	provider *settings.Provider
	log      *zap.Logger
}

func NewSettingsHandler(p *settings.Provider, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{provider: p, log: logging.OrNop(log)}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.provider.Current())
}

// Put replaces the whole policy. The new values apply to the next resolution.
func (h *SettingsHandler) Put(c *gin.Context) {
	var s settings.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.provider.Update(c.Request.Context(), s); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.provider.Current())
}
