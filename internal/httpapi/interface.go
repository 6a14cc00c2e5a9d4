package httpapi

import (
	"context"
	"net/http"
)

// Server exposes job submission, status and cancellation over HTTP.
type Server interface {
	Handler() http.Handler
	// Run serves until ctx is done, then shuts down gracefully.
	Run(ctx context.Context) error
}

// HealthChecker reports whether the service dependencies are reachable.
type HealthChecker func(ctx context.Context) error
