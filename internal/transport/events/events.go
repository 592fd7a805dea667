package events

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
)

const maxPayloadBytes = 1 << 20

func Register(rg *gin.RouterGroup, svc *eventssvc.Service) {
	rg.GET("/categories", listCategories(svc))
	rg.POST("/:category", postEvent(svc))
}

func postEvent(svc *eventssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reading body: " + err.Error()})
			return
		}
		if len(body) > maxPayloadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}

		rec, err := svc.PostNamed(c.Request.Context(), c.Param("category"), body)
		if err != nil {
			status, resp := postError(err)
			if rec.ID != uuid.Nil {
				resp["record"] = rec
			}
			c.JSON(status, resp)
			return
		}
		c.JSON(http.StatusAccepted, rec)
	}
}

func postError(err error) (int, gin.H) {
	resp := gin.H{"error": err.Error()}
	switch {
	case errors.Is(err, event.ErrUnknownCategory):
		resp["categories"] = event.Names()
		return http.StatusBadRequest, resp
	case errors.Is(err, event.ErrInvalidPayload):
		return http.StatusBadRequest, resp
	}

	var invErr *memeventbus.HandlerInvocationError
	if errors.As(err, &invErr) {
		resp["listener"] = invErr.Listener
		resp["method"] = invErr.Method
		var panicErr *memeventbus.PanicError
		resp["panic"] = errors.As(err, &panicErr)
	}
	return http.StatusInternalServerError, resp
}

func listCategories(svc *eventssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"known":    svc.Names(),
			"registry": svc.Categories(),
		})
	}
}
