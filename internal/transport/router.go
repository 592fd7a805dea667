package transport

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyang/polybus/internal/port/idempotency"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
	framesvc "github.com/alanyang/polybus/internal/service/frame"
	journalsvc "github.com/alanyang/polybus/internal/service/journal"
	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"

	eventshandler "github.com/alanyang/polybus/internal/transport/events"
	inputhandler "github.com/alanyang/polybus/internal/transport/input"
	journalhandler "github.com/alanyang/polybus/internal/transport/journal"
	mcptransport "github.com/alanyang/polybus/internal/transport/mcp"
	overlayhandler "github.com/alanyang/polybus/internal/transport/overlay"
	wshandler "github.com/alanyang/polybus/internal/transport/ws"
)

// Deps is everything the router mounts. A nil MCP server or Gatherer leaves its
// endpoint unmounted.
type Deps struct {
	Events  *eventssvc.Service
	Journal *journalsvc.Service
	Overlay *overlaysvc.Service
	Frames  *framesvc.Service
	Hub     *wshandler.Hub
	MCP     *mcptransport.Server
	Metrics prometheus.Gatherer

	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	if d.Idempotency != nil {
		r.Use(IdempotencyMiddleware(d.Idempotency, d.IdempotencyTTL))
	}

	api := r.Group("/api")

	eventshandler.Register(api.Group("/events"), d.Events)
	journalhandler.Register(api.Group("/journal"), d.Journal)
	overlayhandler.Register(api.Group("/overlay"), d.Overlay)
	inputhandler.Register(api.Group("/input"), d.Frames)
	d.Hub.Register(api.Group("/ws"))

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}
	if d.MCP != nil {
		r.Any("/mcp", gin.WrapH(d.MCP.Handler()))
	}

	return r
}
