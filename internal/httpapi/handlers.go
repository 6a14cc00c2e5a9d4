package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/jobs"
)

func (s *implServer) submit(c *gin.Context) {
	var req jobs.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, domain.InvalidInput("decode submission", err))
		return
	}

	job, err := s.jobs.Submit(c.Request.Context(), req)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	respondCreated(c, job)
}

func (s *implServer) status(c *gin.Context) {
	snap, err := s.jobs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	respondOK(c, snap)
}

func (s *implServer) enqueue(c *gin.Context) {
	id := c.Param("id")
	if err := s.jobs.Enqueue(c.Request.Context(), id); err != nil {
		s.respondFailure(c, err)
		return
	}
	respondAccepted(c, gin.H{"job_id": id, "status": domain.StatusScheduled})
}

func (s *implServer) cancel(c *gin.Context) {
	id := c.Param("id")
	if err := s.jobs.Cancel(c.Request.Context(), id); err != nil {
		s.respondFailure(c, err)
		return
	}
	respondAccepted(c, gin.H{"job_id": id})
}

func (s *implServer) healthz(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "Health check failed: %v", err)
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":    status,
		"service":   "protocol-flow",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// respondFailure logs unexpected errors before answering.
func (s *implServer) respondFailure(c *gin.Context, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	respondWithError(c, err)
}
