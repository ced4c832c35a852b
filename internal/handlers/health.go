package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports database reachability and the snapshot state.
func Health(db *gorm.DB, dates *availability.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		loaded, at := dates.Loaded()
		c.JSON(code, gin.H{"status": status, "snapshot_loaded": loaded, "snapshot_loaded_at": at})
	}
}
