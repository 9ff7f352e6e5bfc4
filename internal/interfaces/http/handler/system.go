package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/flowweek/flowweek/internal/infrastructure/persistence"
	"github.com/flowweek/flowweek/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "FlowWeek API",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Database *DatabaseHealth `json:"database,omitempty"`
}

// DatabaseHealth reports database connectivity and pool usage
type DatabaseHealth struct {
	Healthy         bool `json:"healthy"`
	OpenConnections int  `json:"open_connections"`
	InUse           int  `json:"in_use"`
	Idle            int  `json:"idle"`
}

// Health reports whether the server and its database are reachable
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}

	if h.db != nil {
		dbHealth := DatabaseHealth{Healthy: true}
		if err := h.db.Ping(); err != nil {
			dbHealth.Healthy = false
			resp.Status = "degraded"
		} else if stats, err := h.db.Stats(); err == nil {
			dbHealth.OpenConnections = stats.OpenConnections
			dbHealth.InUse = stats.InUse
			dbHealth.Idle = stats.Idle
		}
		resp.Database = &dbHealth
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/health", h.Health)
	}
}
