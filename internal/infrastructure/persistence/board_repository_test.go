package persistence

import (
	"context"
	"testing"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBoardTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&board.Board{}, &board.Flow{}, &board.Node{}, &board.Edge{})
	require.NoError(t, err)

	return db
}

func TestGormBoardRepository_EnsureExists(t *testing.T) {
	db := setupBoardTestDB(t)
	repo := NewGormBoardRepository(db)
	ctx := context.Background()

	t.Run("creates board on first touch", func(t *testing.T) {
		b, err := repo.EnsureExists(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
	})

	t.Run("returns existing board on repeat touch", func(t *testing.T) {
		first, err := repo.EnsureExists(ctx, 2)
		require.NoError(t, err)

		second, err := repo.EnsureExists(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&board.Board{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}
