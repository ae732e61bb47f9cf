package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthDeps are the dependencies the health check reports on
type HealthDeps struct {
	// BreakerState reports the mentor API circuit breaker
	BreakerState func() string
	// TokenStoreBackend names the token store in use
	TokenStoreBackend string
	// PingTokenStore checks the token store; nil when it cannot fail
	PingTokenStore func(ctx context.Context) error
	// ViewCount reports the number of mounted views
	ViewCount func() int
}

type HealthHandler struct {
	deps HealthDeps
}

func NewHealthHandler(deps HealthDeps) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	body := gin.H{"status": "ok"}

	if h.deps.TokenStoreBackend != "" {
		body["tokenStore"] = h.deps.TokenStoreBackend
	}
	if h.deps.ViewCount != nil {
		body["views"] = h.deps.ViewCount()
	}

	if h.deps.PingTokenStore != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.PingTokenStore(ctx); err != nil {
			attachError(c, err)
			body["status"] = "unavailable"
			body["reason"] = "token store unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}

	if h.deps.BreakerState != nil {
		state := h.deps.BreakerState()
		body["mentorApi"] = gin.H{"circuitBreaker": state}
		if state == "open" {
			body["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, body)
}
