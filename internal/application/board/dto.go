package board

import (
	"time"

	"github.com/flowweek/flowweek/internal/domain/board"
)

// FlowResponse is the wire representation of a flow lane
type FlowResponse struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"board_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	YLane     float64   `json:"y_lane"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toFlowResponse(f *board.Flow) *FlowResponse {
	return &FlowResponse{
		ID:        f.ID,
		BoardID:   f.BoardID,
		Name:      f.Name,
		Color:     f.Color,
		YLane:     f.YLane,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// CreateFlowRequest describes a new flow lane
type CreateFlowRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100"`
	Color string  `json:"color" binding:"omitempty,max=20"`
	YLane float64 `json:"y_lane"`
}

// CreateNodeRequest describes a new node. Geometry below the minimum
// viable size is clamped, not rejected.
type CreateNodeRequest struct {
	FlowID      *int64     `json:"flow_id"`
	Type        string     `json:"type" binding:"required,nodetype"`
	Status      *string    `json:"status" binding:"omitempty,taskstatus"`
	Tags        []string   `json:"tags"`
	JournaledAt *time.Time `json:"journaled_at"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Title       string     `json:"title" binding:"max=255"`
	Content     string     `json:"content"`
}

// UpdateNodeRequest is a partial node patch. Nil fields are left
// untouched. FlowID zero detaches the node from its lane (server node
// identifiers are always positive, so zero is unambiguous).
// ExpectedUpdatedAt, when present, is the version marker the client last
// saw; a mismatch makes the update fail with a conflict carrying the
// current canonical record.
type UpdateNodeRequest struct {
	FlowID            *int64     `json:"flow_id"`
	Type              *string    `json:"type" binding:"omitempty,nodetype"`
	Status            *string    `json:"status" binding:"omitempty,taskstatus"`
	Tags              *[]string  `json:"tags"`
	JournaledAt       *time.Time `json:"journaled_at"`
	X                 *float64   `json:"x"`
	Y                 *float64   `json:"y"`
	Width             *float64   `json:"width"`
	Height            *float64   `json:"height"`
	Title             *string    `json:"title" binding:"omitempty,max=255"`
	Content           *string    `json:"content"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

// CreateEdgeRequest describes a new directed edge
type CreateEdgeRequest struct {
	SourceNodeID int64 `json:"source_node_id" binding:"required"`
	TargetNodeID int64 `json:"target_node_id" binding:"required"`
}

// UpdateEdgeRequest reassigns one or both edge endpoints
type UpdateEdgeRequest struct {
	SourceNodeID      *int64     `json:"source_node_id"`
	TargetNodeID      *int64     `json:"target_node_id"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}
