package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowweek/flowweek/internal/domain/board"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBoardRepository implements board.BoardRepository using GORM
type GormBoardRepository struct {
	db *gorm.DB
}

// NewGormBoardRepository creates a new GormBoardRepository
func NewGormBoardRepository(db *gorm.DB) *GormBoardRepository {
	return &GormBoardRepository{db: db}
}

// EnsureExists creates the board row on first access. Concurrent first
// accesses are safe: the insert ignores the duplicate-key failure and
// re-reads.
func (r *GormBoardRepository) EnsureExists(ctx context.Context, id int64) (*board.Board, error) {
	var b board.Board
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	nb := board.NewBoard(id, fmt.Sprintf("Board %d", id))
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(nb).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Ensure interface compliance
var _ board.BoardRepository = (*GormBoardRepository)(nil)
