package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/campus-services-go/utils"
)

const healthTimeout = 2 * time.Second

// Health reports 503 while the store does not answer a ping. With no store wired
// it only reports that the process is up.
func Health(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := d.Store.Ping(ctx); err != nil {
				utils.Warn("health check failed", map[string]any{"error": err.Error()})
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
