package board

import (
	"github.com/flowweek/flowweek/internal/domain/shared"
)

// Board is the root container for flows, nodes and edges. Boards are
// created lazily on first access to a board identifier and are never
// deleted through the API.
type Board struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Board) TableName() string {
	return "boards"
}

// NewBoard creates a board with a caller-chosen identifier.
func NewBoard(id int64, name string) *Board {
	b := &Board{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}
	b.ID = id
	return b
}
