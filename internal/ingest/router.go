package ingest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps holds what NewRouter wires into the HTTP surface.
type RouterDeps struct {
	ComplaintHandler *ComplaintHandler
	Logger           *zap.Logger
	ServiceName      string
	RateLimit        float64
}

// NewRouter builds the gin engine with middleware and routes installed.
func NewRouter(deps RouterDeps) *gin.Engine {
	RegisterValidators()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "complaint-api"
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(CorrelationID())
	r.Use(Tracing(deps.ServiceName))
	r.Use(Logging(deps.Logger))

	r.GET("/health", Liveness)

	limited := r.Group("")
	if deps.RateLimit > 0 {
		limited.Use(RateLimit(deps.RateLimit))
	}
	limited.POST("/complaints", deps.ComplaintHandler.Submit)
	limited.POST("/api/complaints", deps.ComplaintHandler.Submit)

	return r
}
