package persistence

import (
	"context"
	"errors"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"gorm.io/gorm"
)

// GormNodeRepository implements board.NodeRepository using GORM
type GormNodeRepository struct {
	db *gorm.DB
}

// NewGormNodeRepository creates a new GormNodeRepository
func NewGormNodeRepository(db *gorm.DB) *GormNodeRepository {
	return &GormNodeRepository{db: db}
}

// FindByBoard returns all nodes on a board in creation order
func (r *GormNodeRepository) FindByBoard(ctx context.Context, boardID int64) ([]board.Node, error) {
	var nodes []board.Node
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("id ASC").
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// FindByID finds a node by ID within a board
func (r *GormNodeRepository) FindByID(ctx context.Context, boardID, id int64) (*board.Node, error) {
	var node board.Node
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &node, nil
}

// Save creates or updates a node
func (r *GormNodeRepository) Save(ctx context.Context, node *board.Node) error {
	return r.db.WithContext(ctx).Save(node).Error
}

// Delete removes a node by ID
func (r *GormNodeRepository) Delete(ctx context.Context, boardID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		Delete(&board.Node{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure interface compliance
var _ board.NodeRepository = (*GormNodeRepository)(nil)
