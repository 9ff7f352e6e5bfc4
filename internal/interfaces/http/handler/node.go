package handler

import (
	boardapp "github.com/flowweek/flowweek/internal/application/board"
	"github.com/flowweek/flowweek/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// NodeHandler handles node API endpoints
type NodeHandler struct {
	BaseHandler
	service *boardapp.Service
}

// NewNodeHandler creates a new NodeHandler
func NewNodeHandler(service *boardapp.Service) *NodeHandler {
	return &NodeHandler{service: service}
}

// List returns all nodes on a board
func (h *NodeHandler) List(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	nodes, err := h.service.ListNodes(c.Request.Context(), boardID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nodes)
}

// Create adds a node to a board. The response carries the server-assigned
// ID that replaces the client's negative placeholder.
func (h *NodeHandler) Create(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	var req boardapp.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	node, err := h.service.CreateNode(c.Request.Context(), boardID, getClientID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, node)
}

// Update applies a partial patch to a node. Requests carrying
// expected_updated_at fail with 409 and the current record when another
// client changed the node in the meantime.
func (h *NodeHandler) Update(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}
	nodeID, ok := idParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid node ID")
		return
	}

	var req boardapp.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	node, err := h.service.UpdateNode(c.Request.Context(), boardID, nodeID, getClientID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, node)
}

// Delete removes a node and returns the removed record. Edges touching
// the node are removed with it.
func (h *NodeHandler) Delete(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}
	nodeID, ok := idParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid node ID")
		return
	}

	removed, err := h.service.DeleteNode(c.Request.Context(), boardID, nodeID, getClientID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, removed)
}

// RegisterRoutes registers node routes
func (h *NodeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResourceGroup("/boards/:boardId/nodes").
		GET("", h.List).
		POST("", h.Create).
		PATCH("/:id", h.Update).
		DELETE("/:id", h.Delete).
		RegisterRoutes(rg)
}
