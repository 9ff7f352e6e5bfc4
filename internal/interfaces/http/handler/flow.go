package handler

import (
	boardapp "github.com/flowweek/flowweek/internal/application/board"
	"github.com/flowweek/flowweek/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// FlowHandler handles flow lane API endpoints
type FlowHandler struct {
	BaseHandler
	service *boardapp.Service
}

// NewFlowHandler creates a new FlowHandler
func NewFlowHandler(service *boardapp.Service) *FlowHandler {
	return &FlowHandler{service: service}
}

// List returns all flow lanes on a board ordered by vertical offset
func (h *FlowHandler) List(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	flows, err := h.service.ListFlows(c.Request.Context(), boardID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flows)
}

// Create adds a flow lane to a board
func (h *FlowHandler) Create(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	var req boardapp.CreateFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	flow, err := h.service.CreateFlow(c.Request.Context(), boardID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, flow)
}

// RegisterRoutes registers flow routes
func (h *FlowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResourceGroup("/boards/:boardId/flows").
		GET("", h.List).
		POST("", h.Create).
		RegisterRoutes(rg)
}
