package persistence

import (
	"context"
	"testing"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFlowRepository_FindByBoard(t *testing.T) {
	db := setupBoardTestDB(t)
	repo := NewGormFlowRepository(db)
	ctx := context.Background()

	t.Run("orders flows by lane", func(t *testing.T) {
		for _, lane := range []float64{300, 100, 200} {
			flow, err := board.NewFlow(1, "Lane", "#64748b", lane)
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, flow))
		}

		flows, err := repo.FindByBoard(ctx, 1)
		require.NoError(t, err)
		require.Len(t, flows, 3)
		assert.Equal(t, float64(100), flows[0].YLane)
		assert.Equal(t, float64(200), flows[1].YLane)
		assert.Equal(t, float64(300), flows[2].YLane)
	})

	t.Run("is empty for untouched board", func(t *testing.T) {
		flows, err := repo.FindByBoard(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, flows)
	})
}

func TestGormFlowRepository_FindByID(t *testing.T) {
	db := setupBoardTestDB(t)
	repo := NewGormFlowRepository(db)
	ctx := context.Background()

	t.Run("finds existing flow", func(t *testing.T) {
		flow, err := board.NewFlow(1, "Deep work", "#0ea5e9", 120)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, flow))

		found, err := repo.FindByID(ctx, 1, flow.ID)
		require.NoError(t, err)
		assert.Equal(t, "Deep work", found.Name)
		assert.Equal(t, "#0ea5e9", found.Color)
	})

	t.Run("returns not found for missing flow", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 1, 55555)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
