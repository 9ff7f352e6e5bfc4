package board

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowweek/flowweek/internal/domain/shared"
)

// MinNodeSize is the smallest width/height a node may have, in world units.
const MinNodeSize = 40.0

// NodeType is the closed set of content-node variants
type NodeType string

const (
	NodeTypeTask    NodeType = "task"
	NodeTypeNote    NodeType = "note"
	NodeTypeJournal NodeType = "journal"
)

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeTask, NodeTypeNote, NodeTypeJournal:
		return true
	}
	return false
}

// TaskStatus is the status of a task-type node
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known task statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

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

// TagList stores a node's tags as a JSON array column. Order is preserved
// for display; matching is case-insensitive and order-independent.
type TagList []string

// Value implements driver.Valuer
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TagList", value)
	}
	if len(raw) == 0 {
		*t = TagList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(t))
}

// Node is the primary content unit placed on a board: a typed rectangle
// in world space with a title, optional body text and tags.
//
// Invariants:
//   - Status is non-nil iff Type is task; it defaults to todo whenever the
//     type is set or changes to task.
//   - JournaledAt is only meaningful when Type is journal.
//   - Width and Height never drop below MinNodeSize.
type Node struct {
	shared.BaseAggregateRoot
	BoardID     int64       `gorm:"not null;index"`
	FlowID      *int64      `gorm:"index"`
	Type        NodeType    `gorm:"type:varchar(20);not null"`
	Status      *TaskStatus `gorm:"type:varchar(20)"`
	Tags        TagList     `gorm:"type:text"`
	JournaledAt *time.Time
	X           float64 `gorm:"not null;default:0"`
	Y           float64 `gorm:"not null;default:0"`
	Width       float64 `gorm:"not null"`
	Height      float64 `gorm:"not null"`
	Title       string  `gorm:"type:varchar(255)"`
	Content     string  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Node) TableName() string {
	return "nodes"
}

// NewNode creates a new node on a board. Geometry is clamped to the
// minimum viable size rather than rejected.
func NewNode(boardID int64, flowID *int64, nodeType NodeType, title string, x, y, width, height float64) (*Node, error) {
	if !nodeType.Valid() {
		return nil, shared.NewDomainError("INVALID_NODE_TYPE", fmt.Sprintf("Unknown node type %q", nodeType))
	}

	n := &Node{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BoardID:           boardID,
		FlowID:            flowID,
		Type:              nodeType,
		Tags:              TagList{},
		X:                 x,
		Y:                 y,
		Width:             clampSize(width),
		Height:            clampSize(height),
		Title:             title,
	}
	n.applyTypeInvariants()
	return n, nil
}

func clampSize(v float64) float64 {
	if v < MinNodeSize {
		return MinNodeSize
	}
	return v
}

// applyTypeInvariants keeps status and journaled_at consistent with the
// node's type.
func (n *Node) applyTypeInvariants() {
	if n.Type == NodeTypeTask {
		if n.Status == nil {
			s := TaskStatusTodo
			n.Status = &s
		}
	} else {
		n.Status = nil
	}
	if n.Type != NodeTypeJournal {
		n.JournaledAt = nil
	}
}

// SetType changes the node's type, adjusting status and journaled_at to
// keep the type invariants.
func (n *Node) SetType(t NodeType) error {
	if !t.Valid() {
		return shared.NewDomainError("INVALID_NODE_TYPE", fmt.Sprintf("Unknown node type %q", t))
	}
	if n.Type == t {
		return nil
	}
	n.Type = t
	if t == NodeTypeTask {
		// fresh default regardless of any stray prior value
		s := TaskStatusTodo
		n.Status = &s
	}
	n.applyTypeInvariants()
	n.Touch()
	return nil
}

// SetStatus sets the task status. Only task nodes carry a status.
func (n *Node) SetStatus(s TaskStatus) error {
	if n.Type != NodeTypeTask {
		return shared.NewDomainError("INVALID_STATE", "Only task nodes have a status")
	}
	if !s.Valid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown task status %q", s))
	}
	n.Status = &s
	n.Touch()
	return nil
}

// EffectiveStatus returns the node's status, defaulting to todo for task
// nodes with no stored value. Non-task nodes return the empty status.
func (n *Node) EffectiveStatus() TaskStatus {
	if n.Type != NodeTypeTask {
		return ""
	}
	if n.Status == nil {
		return TaskStatusTodo
	}
	return *n.Status
}

// CycleStatus advances a task node's status along todo → in-progress →
// done → todo.
func (n *Node) CycleStatus() error {
	if n.Type != NodeTypeTask {
		return shared.NewDomainError("INVALID_STATE", "Only task nodes have a status")
	}
	next := n.EffectiveStatus().Next()
	n.Status = &next
	n.Touch()
	return nil
}

// MoveTo places the node at a new world-space position.
func (n *Node) MoveTo(x, y float64) {
	n.X = x
	n.Y = y
	n.Touch()
}

// ResizeTo sets the node's dimensions, clamped to the minimum size.
func (n *Node) ResizeTo(width, height float64) {
	n.Width = clampSize(width)
	n.Height = clampSize(height)
	n.Touch()
}

// SetFlow assigns the node to a flow lane, or detaches it when nil.
func (n *Node) SetFlow(flowID *int64) {
	n.FlowID = flowID
	n.Touch()
}

// SetTitle updates the display title.
func (n *Node) SetTitle(title string) {
	n.Title = title
	n.Touch()
}

// SetContent updates the free-text body.
func (n *Node) SetContent(content string) {
	n.Content = content
	n.Touch()
}

// SetTags replaces the tag list, preserving the given order.
func (n *Node) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	n.Tags = TagList(tags)
	n.Touch()
}

// SetJournaledAt sets the journal timestamp. Only journal nodes carry one.
func (n *Node) SetJournaledAt(t *time.Time) error {
	if n.Type != NodeTypeJournal {
		return shared.NewDomainError("INVALID_STATE", "Only journal nodes have a journal timestamp")
	}
	n.JournaledAt = t
	n.Touch()
	return nil
}
