package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// requestID injects a unique X-Request-Id header into every request/response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *implServer) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.With(logger.Fields(
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stack", string(debug.Stack()),
				)).Error(c.Request.Context(), "Panic recovered: %s", fmt.Sprint(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: errorBody{
					Code:    "INTERNAL_ERROR",
					Message: "Internal server error",
				}})
			}
		}()
		c.Next()
	}
}

func (s *implServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		l := s.logger.With(logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			logger.FieldDuration, time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		))
		switch {
		case status >= http.StatusInternalServerError:
			l.Error(c.Request.Context(), "HTTP request failed")
		case status >= http.StatusBadRequest:
			l.Warn(c.Request.Context(), "HTTP request rejected")
		default:
			l.Debug(c.Request.Context(), "HTTP request served")
		}
	}
}
