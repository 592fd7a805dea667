package overlay

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"
)

func Register(rg *gin.RouterGroup, svc *overlaysvc.Service) {
	rg.GET("", status(svc))
	rg.POST("/text", drawText(svc))
}

func status(svc *overlaysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":    svc.Ready(),
			"viewport": svc.Viewport(),
			"pending":  svc.Pending(),
			"culled":   svc.Culled(),
		})
	}
}

func drawText(svc *overlaysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd overlaysvc.TextCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.DrawText(cmd); err != nil {
			if errors.Is(err, overlaysvc.ErrNotReady) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
	}
}
