package board

import (
	"context"
)

// BoardRepository defines the interface for board persistence
type BoardRepository interface {
	// EnsureExists creates the board row if no board with this ID exists
	// yet. Boards are created lazily on first access.
	EnsureExists(ctx context.Context, id int64) (*Board, error)
}

// FlowRepository defines the interface for flow persistence
type FlowRepository interface {
	// FindByBoard returns all flows on a board ordered by lane offset
	FindByBoard(ctx context.Context, boardID int64) ([]Flow, error)

	// FindByID finds a flow by ID within a board
	FindByID(ctx context.Context, boardID, id int64) (*Flow, error)

	// Save creates or updates a flow
	Save(ctx context.Context, flow *Flow) error
}

// NodeRepository defines the interface for node persistence
type NodeRepository interface {
	// FindByBoard returns all nodes on a board in creation order
	FindByBoard(ctx context.Context, boardID int64) ([]Node, error)

	// FindByID finds a node by ID within a board
	FindByID(ctx context.Context, boardID, id int64) (*Node, error)

	// Save creates or updates a node
	Save(ctx context.Context, node *Node) error

	// Delete removes a node
	Delete(ctx context.Context, boardID, id int64) error
}

// EdgeRepository defines the interface for edge persistence
type EdgeRepository interface {
	// FindByBoard returns all edges on a board in creation order
	FindByBoard(ctx context.Context, boardID int64) ([]Edge, error)

	// FindByID finds an edge by ID within a board
	FindByID(ctx context.Context, boardID, id int64) (*Edge, error)

	// FindByNode returns all edges with the given node at either endpoint
	FindByNode(ctx context.Context, boardID, nodeID int64) ([]Edge, error)

	// Save creates or updates an edge
	Save(ctx context.Context, edge *Edge) error

	// Delete removes an edge
	Delete(ctx context.Context, boardID, id int64) error

	// DeleteByNode removes every edge incident to a node and returns the
	// removed records, so deletion of a node cascades to its edges.
	DeleteByNode(ctx context.Context, boardID, nodeID int64) ([]Edge, error)
}
