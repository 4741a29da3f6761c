package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/formstore/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, h *handlers.HealthHandler) {
	registerHealthEndpoints(r, h)
	registerHealthEndpoints(r.Group("/api"), h)
	r.GET("/api/db-test", h.DBTest)
}

func registerHealthEndpoints(router gin.IRouter, h *handlers.HealthHandler) {
	router.GET("/health", h.Health)
	router.GET("/health/ready", h.Ready)
}
