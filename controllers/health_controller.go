package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"snack-shop/models"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	orders  *services.OrderService
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthController(orders *services.OrderService, checks map[string]HealthCheck) *HealthController {
	return &HealthController{orders: orders, checks: checks, timeout: 2 * time.Second}
}

// @Summary Health check
// @Description Projection liveness and reachability of the database, cache and print queue
// @Tags Health
// @Produce json
// @Success 200 {object} models.Response
// @Failure 503 {object} models.ErrorResponse
// @Router /health [get]
func (ctrl *HealthController) GetHealth(c *gin.Context) {
	names := make([]string, 0, len(ctrl.checks))
	for name := range ctrl.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := gin.H{}
	healthy := true
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), ctrl.timeout)
		err := ctrl.checks[name](ctx)
		cancel()
		if err != nil {
			healthy = false
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	data := gin.H{"live": ctrl.orders.Snapshot().Live, "checks": results}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Message: "Service degraded",
			Error:   "one or more dependencies are unreachable",
			Details: data,
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Service healthy",
		Data:    data,
	})
}
