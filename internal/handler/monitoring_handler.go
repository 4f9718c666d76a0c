package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-backoffice-api/internal/service"
)

// MonitoringHandler exposes liveness and metrics endpoints. These are the
// only routes served without a token.
type MonitoringHandler struct {
	db      *sqlx.DB
	metrics *service.MetricsService
}

// NewMonitoringHandler constructs MonitoringHandler.
func NewMonitoringHandler(db *sqlx.DB, metrics *service.MetricsService) *MonitoringHandler {
	return &MonitoringHandler{db: db, metrics: metrics}
}

// Ping godoc
// @Summary Report database reachability
// @Tags Monitoring
// @Produce json
// @Success 200 {object} map[string]string
// @Router /v1/monitoring/ping [get]
func (h *MonitoringHandler) Ping(c *gin.Context) {
	status := "ok"
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		status = "internal_error"
	}
	c.JSON(http.StatusOK, gin.H{"db_status": status})
}

// Metrics serves the Prometheus scrape endpoint.
func (h *MonitoringHandler) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
