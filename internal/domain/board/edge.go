package board

import (
	"github.com/flowweek/flowweek/internal/domain/shared"
)

// Edge is a directed link between two distinct nodes on the same board.
// Multiple edges between the same pair are allowed; self-loops are not.
// Edges reference nodes by identifier only, never by object pointer.
type Edge struct {
	shared.BaseAggregateRoot
	BoardID      int64 `gorm:"not null;index"`
	SourceNodeID int64 `gorm:"not null;index"`
	TargetNodeID int64 `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Edge) TableName() string {
	return "edges"
}

// NewEdge creates a directed edge between two distinct nodes.
func NewEdge(boardID, sourceNodeID, targetNodeID int64) (*Edge, error) {
	if sourceNodeID == targetNodeID {
		return nil, shared.NewDomainError("SELF_LOOP", "An edge cannot link a node to itself")
	}
	return &Edge{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BoardID:           boardID,
		SourceNodeID:      sourceNodeID,
		TargetNodeID:      targetNodeID,
	}, nil
}

// SetSource reassigns the edge's source endpoint.
func (e *Edge) SetSource(nodeID int64) error {
	if nodeID == e.TargetNodeID {
		return shared.NewDomainError("SELF_LOOP", "An edge cannot link a node to itself")
	}
	e.SourceNodeID = nodeID
	e.Touch()
	return nil
}

// SetTarget reassigns the edge's target endpoint.
func (e *Edge) SetTarget(nodeID int64) error {
	if nodeID == e.SourceNodeID {
		return shared.NewDomainError("SELF_LOOP", "An edge cannot link a node to itself")
	}
	e.TargetNodeID = nodeID
	e.Touch()
	return nil
}

// Touches reports whether the edge references the given node at either end.
func (e *Edge) Touches(nodeID int64) bool {
	return e.SourceNodeID == nodeID || e.TargetNodeID == nodeID
}
