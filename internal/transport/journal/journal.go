package journal

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	journalsvc "github.com/alanyang/polybus/internal/service/journal"
)

const maxLimit = 1000

func Register(rg *gin.RouterGroup, svc *journalsvc.Service) {
	rg.GET("", recent(svc))
}

func recent(svc *journalsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxLimit)
		}

		records, err := svc.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}
