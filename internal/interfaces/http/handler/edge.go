package handler

import (
	boardapp "github.com/flowweek/flowweek/internal/application/board"
	"github.com/flowweek/flowweek/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// EdgeHandler handles edge API endpoints
type EdgeHandler struct {
	BaseHandler
	service *boardapp.Service
}

// NewEdgeHandler creates a new EdgeHandler
func NewEdgeHandler(service *boardapp.Service) *EdgeHandler {
	return &EdgeHandler{service: service}
}

// List returns all edges on a board
func (h *EdgeHandler) List(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	edges, err := h.service.ListEdges(c.Request.Context(), boardID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, edges)
}

// Create links two nodes. Both endpoints must exist on the board and an
// edge cannot point at its own source.
func (h *EdgeHandler) Create(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	var req boardapp.CreateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	edge, err := h.service.CreateEdge(c.Request.Context(), boardID, getClientID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, edge)
}

// Update reassigns one or both edge endpoints
func (h *EdgeHandler) Update(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}
	edgeID, ok := idParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid edge ID")
		return
	}

	var req boardapp.UpdateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	edge, err := h.service.UpdateEdge(c.Request.Context(), boardID, edgeID, getClientID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, edge)
}

// Delete removes an edge and returns the removed record
func (h *EdgeHandler) Delete(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}
	edgeID, ok := idParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid edge ID")
		return
	}

	removed, err := h.service.DeleteEdge(c.Request.Context(), boardID, edgeID, getClientID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, removed)
}

// RegisterRoutes registers edge routes
func (h *EdgeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResourceGroup("/boards/:boardId/edges").
		GET("", h.List).
		POST("", h.Create).
		PATCH("/:id", h.Update).
		DELETE("/:id", h.Delete).
		RegisterRoutes(rg)
}
