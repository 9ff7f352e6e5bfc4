package persistence

import (
	"context"
	"errors"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"gorm.io/gorm"
)

// GormFlowRepository implements board.FlowRepository using GORM
type GormFlowRepository struct {
	db *gorm.DB
}

// NewGormFlowRepository creates a new GormFlowRepository
func NewGormFlowRepository(db *gorm.DB) *GormFlowRepository {
	return &GormFlowRepository{db: db}
}

// FindByBoard returns all flows on a board ordered by lane offset
func (r *GormFlowRepository) FindByBoard(ctx context.Context, boardID int64) ([]board.Flow, error) {
	var flows []board.Flow
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("y_lane ASC, id ASC").
		Find(&flows).Error; err != nil {
		return nil, err
	}
	return flows, nil
}

// FindByID finds a flow by ID within a board
func (r *GormFlowRepository) FindByID(ctx context.Context, boardID, id int64) (*board.Flow, error) {
	var flow board.Flow
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		First(&flow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &flow, nil
}

// Save creates or updates a flow
func (r *GormFlowRepository) Save(ctx context.Context, flow *board.Flow) error {
	return r.db.WithContext(ctx).Save(flow).Error
}

// Ensure interface compliance
var _ board.FlowRepository = (*GormFlowRepository)(nil)
