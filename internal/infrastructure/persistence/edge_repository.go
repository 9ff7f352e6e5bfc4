package persistence

import (
	"context"
	"errors"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"gorm.io/gorm"
)

// GormEdgeRepository implements board.EdgeRepository using GORM
type GormEdgeRepository struct {
	db *gorm.DB
}

// NewGormEdgeRepository creates a new GormEdgeRepository
func NewGormEdgeRepository(db *gorm.DB) *GormEdgeRepository {
	return &GormEdgeRepository{db: db}
}

// FindByBoard returns all edges on a board in creation order
func (r *GormEdgeRepository) FindByBoard(ctx context.Context, boardID int64) ([]board.Edge, error) {
	var edges []board.Edge
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("id ASC").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// FindByID finds an edge by ID within a board
func (r *GormEdgeRepository) FindByID(ctx context.Context, boardID, id int64) (*board.Edge, error) {
	var edge board.Edge
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// FindByNode returns all edges touching a node as source or target
func (r *GormEdgeRepository) FindByNode(ctx context.Context, boardID, nodeID int64) ([]board.Edge, error) {
	var edges []board.Edge
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND (source_node_id = ? OR target_node_id = ?)", boardID, nodeID, nodeID).
		Order("id ASC").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// Save creates or updates an edge
func (r *GormEdgeRepository) Save(ctx context.Context, edge *board.Edge) error {
	return r.db.WithContext(ctx).Save(edge).Error
}

// Delete removes an edge by ID
func (r *GormEdgeRepository) Delete(ctx context.Context, boardID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		Delete(&board.Edge{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByNode removes every edge touching a node and reports the removed rows.
// Callers use the returned edges to emit deletion events for each one.
func (r *GormEdgeRepository) DeleteByNode(ctx context.Context, boardID, nodeID int64) ([]board.Edge, error) {
	removed, err := r.FindByNode(ctx, boardID, nodeID)
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(removed))
	for _, e := range removed {
		ids = append(ids, e.ID)
	}
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND id IN ?", boardID, ids).
		Delete(&board.Edge{}).Error; err != nil {
		return nil, err
	}
	return removed, nil
}

// Ensure interface compliance
var _ board.EdgeRepository = (*GormEdgeRepository)(nil)
