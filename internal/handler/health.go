package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns a health check endpoint.
func HealthHandler(store Pinger, strategy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"strategy": strategy,
				"error":    err.Error(),
			})
			return
		}
		RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"strategy": strategy,
		})
	}
}
