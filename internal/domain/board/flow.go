package board

import (
	"strings"

	"github.com/flowweek/flowweek/internal/domain/shared"
)

// Flow is a named horizontal lane used to group nodes visually. A flow
// carries a display color and the vertical offset of its lane; nodes
// reference it by optional identifier only.
type Flow struct {
	shared.BaseEntity
	BoardID int64   `gorm:"not null;index"`
	Name    string  `gorm:"type:varchar(100);not null"`
	Color   string  `gorm:"type:varchar(20);not null"`
	YLane   float64 `gorm:"column:y_lane;not null;default:0"`
}

// TableName returns the table name for GORM
func (Flow) TableName() string {
	return "flows"
}

// NewFlow creates a new flow lane on a board.
func NewFlow(boardID int64, name, color string, yLane float64) (*Flow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Flow name is required")
	}
	if color == "" {
		color = "#64748b"
	}
	return &Flow{
		BaseEntity: shared.NewBaseEntity(),
		BoardID:    boardID,
		Name:       name,
		Color:      color,
		YLane:      yLane,
	}, nil
}

// Rename changes the flow's display name.
func (f *Flow) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Flow name is required")
	}
	f.Name = name
	f.Touch()
	return nil
}
