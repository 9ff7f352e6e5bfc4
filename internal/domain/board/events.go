package board

import (
	"time"

	"github.com/flowweek/flowweek/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeNode = "Node"
	AggregateTypeEdge = "Edge"
)

// Event type constants
const (
	EventTypeNodeCreated = "NodeCreated"
	EventTypeNodeUpdated = "NodeUpdated"
	EventTypeNodeDeleted = "NodeDeleted"
	EventTypeEdgeCreated = "EdgeCreated"
	EventTypeEdgeUpdated = "EdgeUpdated"
	EventTypeEdgeDeleted = "EdgeDeleted"
)

// NodePayload is the full node record carried by node events. Its JSON
// shape matches the REST wire contract so realtime consumers can apply
// it to their caches directly.
type NodePayload struct {
	ID          int64      `json:"id"`
	BoardID     int64      `json:"board_id"`
	FlowID      *int64     `json:"flow_id"`
	Type        NodeType   `json:"type"`
	Status      *TaskStatus `json:"status"`
	Tags        []string   `json:"tags"`
	JournaledAt *time.Time `json:"journaled_at"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SnapshotNode captures a node's current state as an event payload.
func SnapshotNode(n *Node) NodePayload {
	return NodePayload{
		ID:          n.ID,
		BoardID:     n.BoardID,
		FlowID:      n.FlowID,
		Type:        n.Type,
		Status:      n.Status,
		Tags:        append([]string(nil), n.Tags...),
		JournaledAt: n.JournaledAt,
		X:           n.X,
		Y:           n.Y,
		Width:       n.Width,
		Height:      n.Height,
		Title:       n.Title,
		Content:     n.Content,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// EdgePayload is the full edge record carried by edge events.
type EdgePayload struct {
	ID           int64     `json:"id"`
	BoardID      int64     `json:"board_id"`
	SourceNodeID int64     `json:"source_node_id"`
	TargetNodeID int64     `json:"target_node_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SnapshotEdge captures an edge's current state as an event payload.
func SnapshotEdge(e *Edge) EdgePayload {
	return EdgePayload{
		ID:           e.ID,
		BoardID:      e.BoardID,
		SourceNodeID: e.SourceNodeID,
		TargetNodeID: e.TargetNodeID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// NodeCreatedEvent is published when a node is persisted
type NodeCreatedEvent struct {
	shared.BaseDomainEvent
	Node NodePayload `json:"node"`
}

// NewNodeCreatedEvent creates a new NodeCreatedEvent. The client ID is
// the identifier of the API client whose request produced the change.
func NewNodeCreatedEvent(n *Node, clientID string) *NodeCreatedEvent {
	return &NodeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNodeCreated, AggregateTypeNode, n.ID, n.BoardID, clientID),
		Node:            SnapshotNode(n),
	}
}

// NodeUpdatedEvent is published when a node is mutated
type NodeUpdatedEvent struct {
	shared.BaseDomainEvent
	Node NodePayload `json:"node"`
}

// NewNodeUpdatedEvent creates a new NodeUpdatedEvent
func NewNodeUpdatedEvent(n *Node, clientID string) *NodeUpdatedEvent {
	return &NodeUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNodeUpdated, AggregateTypeNode, n.ID, n.BoardID, clientID),
		Node:            SnapshotNode(n),
	}
}

// NodeDeletedEvent is published when a node is removed. Edges incident
// to the node cascade; each cascaded edge gets its own EdgeDeletedEvent.
type NodeDeletedEvent struct {
	shared.BaseDomainEvent
	Node NodePayload `json:"node"`
}

// NewNodeDeletedEvent creates a new NodeDeletedEvent
func NewNodeDeletedEvent(n *Node, clientID string) *NodeDeletedEvent {
	return &NodeDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNodeDeleted, AggregateTypeNode, n.ID, n.BoardID, clientID),
		Node:            SnapshotNode(n),
	}
}

// EdgeCreatedEvent is published when an edge is persisted
type EdgeCreatedEvent struct {
	shared.BaseDomainEvent
	Edge EdgePayload `json:"edge"`
}

// NewEdgeCreatedEvent creates a new EdgeCreatedEvent
func NewEdgeCreatedEvent(e *Edge, clientID string) *EdgeCreatedEvent {
	return &EdgeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEdgeCreated, AggregateTypeEdge, e.ID, e.BoardID, clientID),
		Edge:            SnapshotEdge(e),
	}
}

// EdgeUpdatedEvent is published when an edge endpoint is reassigned
type EdgeUpdatedEvent struct {
	shared.BaseDomainEvent
	Edge EdgePayload `json:"edge"`
}

// NewEdgeUpdatedEvent creates a new EdgeUpdatedEvent
func NewEdgeUpdatedEvent(e *Edge, clientID string) *EdgeUpdatedEvent {
	return &EdgeUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEdgeUpdated, AggregateTypeEdge, e.ID, e.BoardID, clientID),
		Edge:            SnapshotEdge(e),
	}
}

// EdgeDeletedEvent is published when an edge is removed, either directly
// or by node-deletion cascade
type EdgeDeletedEvent struct {
	shared.BaseDomainEvent
	Edge EdgePayload `json:"edge"`
}

// NewEdgeDeletedEvent creates a new EdgeDeletedEvent
func NewEdgeDeletedEvent(e *Edge, clientID string) *EdgeDeletedEvent {
	return &EdgeDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEdgeDeleted, AggregateTypeEdge, e.ID, e.BoardID, clientID),
		Edge:            SnapshotEdge(e),
	}
}
