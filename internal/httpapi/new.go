package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/protocol-flow/internal/jobs"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

type implServer struct {
	addr   string
	engine *gin.Engine
	jobs   jobs.Service
	health HealthChecker
	logger logger.Logger
}

// New builds the router. A nil health checker always reports healthy.
func New(addr string, svc jobs.Service, health HealthChecker, log logger.Logger) Server {
	gin.SetMode(gin.ReleaseMode)

	s := &implServer{
		addr:   addr,
		engine: gin.New(),
		jobs:   svc,
		health: health,
		logger: log.With(map[string]interface{}{logger.FieldComponent: "http"}),
	}
	s.engine.Use(requestID(), s.recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *implServer) routes() {
	s.engine.GET("/healthz", s.healthz)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/meetings", s.submit)
	v1.GET("/meetings/:id", s.status)
	v1.POST("/meetings/:id/enqueue", s.enqueue)
	v1.POST("/meetings/:id/cancel", s.cancel)
}

func (s *implServer) Handler() http.Handler {
	return s.engine
}

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)
