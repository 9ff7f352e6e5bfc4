// Package model holds the wire-level board records shared by the client
// cache, filter engine, sync client and realtime channel. Records are
// plain values; components reference each other only by identifier.
package model

import "time"

// NodeType is the closed set of content-node variants
type NodeType string

const (
	NodeTypeTask    NodeType = "task"
	NodeTypeNote    NodeType = "note"
	NodeTypeJournal NodeType = "journal"
)

// TaskStatus is the status of a task-type node
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// Next returns the status following s in the todo → in-progress → done cycle.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskStatusTodo:
		return TaskStatusInProgress
	case TaskStatusInProgress:
		return TaskStatusDone
	default:
		return TaskStatusTodo
	}
}

// MinNodeSize is the smallest node width/height in world units.
const MinNodeSize = 40.0

// Node is a typed content rectangle on the board. UpdatedAt doubles as
// the version marker for optimistic-concurrency checks.
type Node struct {
	ID          int64       `json:"id"`
	BoardID     int64       `json:"board_id"`
	FlowID      *int64      `json:"flow_id"`
	Type        NodeType    `json:"type"`
	Status      *TaskStatus `json:"status"`
	Tags        []string    `json:"tags"`
	JournaledAt *time.Time  `json:"journaled_at"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Title       string      `json:"title"`
	Content     string      `json:"content,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// EffectiveStatus returns the node's status, defaulting to todo for task
// nodes with no stored value. Non-task nodes return the empty status.
func (n Node) EffectiveStatus() TaskStatus {
	if n.Type != NodeTypeTask {
		return ""
	}
	if n.Status == nil {
		return TaskStatusTodo
	}
	return *n.Status
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Tags = append([]string(nil), n.Tags...)
	if n.FlowID != nil {
		v := *n.FlowID
		out.FlowID = &v
	}
	if n.Status != nil {
		v := *n.Status
		out.Status = &v
	}
	if n.JournaledAt != nil {
		v := *n.JournaledAt
		out.JournaledAt = &v
	}
	return out
}

// Edge is a directed link between two nodes on the same board.
type Edge struct {
	ID           int64     `json:"id"`
	BoardID      int64     `json:"board_id"`
	SourceNodeID int64     `json:"source_node_id"`
	TargetNodeID int64     `json:"target_node_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Touches reports whether the edge references the given node.
func (e Edge) Touches(nodeID int64) bool {
	return e.SourceNodeID == nodeID || e.TargetNodeID == nodeID
}

// Flow is a named horizontal lane used for visual grouping.
type Flow struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"board_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	YLane     float64   `json:"y_lane"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPlaceholder reports whether id is a client-generated placeholder.
// Server identifiers are always positive; placeholders always negative.
func IsPlaceholder(id int64) bool {
	return id < 0
}
