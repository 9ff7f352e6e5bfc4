package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormNodeRepository_SaveAndFind(t *testing.T) {
	db := setupBoardTestDB(t)
	repo := NewGormNodeRepository(db)
	ctx := context.Background()

	t.Run("saves new node and assigns positive id", func(t *testing.T) {
		node, err := board.NewNode(1, nil, board.NodeTypeTask, "Write release notes", 10, 20, 160, 90)
		require.NoError(t, err)

		err = repo.Save(ctx, node)
		require.NoError(t, err)
		assert.Greater(t, node.ID, int64(0))

		found, err := repo.FindByID(ctx, 1, node.ID)
		require.NoError(t, err)
		assert.Equal(t, board.NodeTypeTask, found.Type)
		require.NotNil(t, found.Status)
		assert.Equal(t, board.TaskStatusTodo, *found.Status)
		assert.Equal(t, "Write release notes", found.Title)
	})

	t.Run("round-trips tags and journaled_at", func(t *testing.T) {
		node, err := board.NewNode(1, nil, board.NodeTypeJournal, "Standup notes", 0, 0, 200, 120)
		require.NoError(t, err)
		node.SetTags([]string{"retro", "week-35"})
		day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
		require.NoError(t, node.SetJournaledAt(&day))

		require.NoError(t, repo.Save(ctx, node))

		found, err := repo.FindByID(ctx, 1, node.ID)
		require.NoError(t, err)
		assert.Equal(t, board.TagList{"retro", "week-35"}, found.Tags)
		require.NotNil(t, found.JournaledAt)
		assert.True(t, found.JournaledAt.Equal(day))
		assert.Nil(t, found.Status)
	})

	t.Run("returns not found for missing node", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 1, 99999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("scopes lookup to board", func(t *testing.T) {
		node, err := board.NewNode(7, nil, board.NodeTypeNote, "Scoped", 0, 0, 160, 90)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, node))

		_, err = repo.FindByID(ctx, 8, node.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormNodeRepository_FindByBoard(t *testing.T) {
	db := setupBoardTestDB(t)
	repo := NewGormNodeRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		node, err := board.NewNode(5, nil, board.NodeTypeNote, "Note", float64(i*100), 0, 160, 90)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, node))
	}
	other, err := board.NewNode(6, nil, board.NodeTypeNote, "Other board", 0, 0, 160, 90)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	nodes, err := repo.FindByBoard(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
	for i := 1; i < len(nodes); i++ {
		assert.Greater(t, nodes[i].ID, nodes[i-1].ID)
	}
}

func TestGormNodeRepository_Delete(t *testing.T) {
	db := setupBoardTestDB(t)
	repo := NewGormNodeRepository(db)
	ctx := context.Background()

	t.Run("deletes existing node", func(t *testing.T) {
		node, err := board.NewNode(1, nil, board.NodeTypeTask, "Doomed", 0, 0, 160, 90)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, node))

		require.NoError(t, repo.Delete(ctx, 1, node.ID))

		_, err = repo.FindByID(ctx, 1, node.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("reports not found for missing node", func(t *testing.T) {
		err := repo.Delete(ctx, 1, 424242)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
