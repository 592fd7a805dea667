package input

import (
	"net/http"

	"github.com/gin-gonic/gin"

	framesvc "github.com/alanyang/polybus/internal/service/frame"
)

func Register(rg *gin.RouterGroup, svc *framesvc.Service) {
	rg.POST("/key", key(svc))
	rg.POST("/mouse/move", mouseMove(svc))
	rg.POST("/mouse/click", mouseClick(svc))
	rg.POST("/resize", resize(svc))
}

type keyRequest struct {
	Key    string `json:"key" binding:"required"`
	Action string `json:"action" binding:"required,oneof=press release tap"`
}

// key posts Keyboard events. "tap" is a press followed by a release.
func key(svc *framesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req keyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var err error
		switch req.Action {
		case "press":
			err = svc.Press(req.Key)
		case "release":
			err = svc.Release(req.Key)
		case "tap":
			if err = svc.Press(req.Key); err == nil {
				err = svc.Release(req.Key)
			}
		}
		respond(c, err)
	}
}

type mouseMoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func mouseMove(svc *framesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mouseMoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respond(c, svc.MoveMouse(req.X, req.Y))
	}
}

type mouseClickRequest struct {
	Button string `json:"button" binding:"required"`
}

func mouseClick(svc *framesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mouseClickRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respond(c, svc.Click(req.Button))
	}
}

type resizeRequest struct {
	Width  int `json:"width" binding:"required,gt=0"`
	Height int `json:"height" binding:"required,gt=0"`
}

func resize(svc *framesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respond(c, svc.Resize(req.Width, req.Height))
	}
}

func respond(c *gin.Context, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}
