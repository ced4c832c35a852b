package handlers

import (
	"net/http"

	"github.com/diewo77/decor-booking/internal/catalog"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *catalog.GormCatalog
	log     *zap.Logger
}

func NewCatalogHandler(c *catalog.GormCatalog, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, log: logging.OrNop(log)}
}

func (h *CatalogHandler) services(c *gin.Context, activeOnly bool) {
	snap, err := catalog.Load(c.Request.Context(), h.catalog)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": snap.Services(activeOnly)})
}

// List returns the services clients can add to a quote.
func (h *CatalogHandler) List(c *gin.Context) { h.services(c, true) }

// AdminList includes inactive services.
func (h *CatalogHandler) AdminList(c *gin.Context) { h.services(c, false) }

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var in catalog.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.catalog.CreateService(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in catalog.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.catalog.UpdateService(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteService(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) AddOption(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in catalog.OptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	opt, err := h.catalog.AddOption(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, opt)
}

func (h *CatalogHandler) UpdateOption(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in catalog.OptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	opt, err := h.catalog.UpdateOption(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (h *CatalogHandler) DeleteOption(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteOption(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
