package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	t.Run("creates note node with valid inputs", func(t *testing.T) {
		node, err := NewNode(1, nil, NodeTypeNote, "New note", 100, 50, 160, 64)
		require.NoError(t, err)
		require.NotNil(t, node)

		assert.Equal(t, int64(1), node.BoardID)
		assert.Nil(t, node.FlowID)
		assert.Equal(t, NodeTypeNote, node.Type)
		assert.Nil(t, node.Status)
		assert.Equal(t, "New note", node.Title)
		assert.Equal(t, 160.0, node.Width)
		assert.Equal(t, 64.0, node.Height)
	})

	t.Run("task node gets default todo status", func(t *testing.T) {
		node, err := NewNode(1, nil, NodeTypeTask, "Task", 0, 0, 160, 64)
		require.NoError(t, err)
		require.NotNil(t, node.Status)
		assert.Equal(t, TaskStatusTodo, *node.Status)
	})

	t.Run("clamps geometry to minimum size", func(t *testing.T) {
		node, err := NewNode(1, nil, NodeTypeNote, "Tiny", 0, 0, 10, 5)
		require.NoError(t, err)
		assert.Equal(t, MinNodeSize, node.Width)
		assert.Equal(t, MinNodeSize, node.Height)
	})

	t.Run("fails with unknown type", func(t *testing.T) {
		_, err := NewNode(1, nil, NodeType("reminder"), "x", 0, 0, 100, 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown node type")
	})
}

func TestNode_SetType(t *testing.T) {
	t.Run("changing to task assigns default todo status", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeNote, "n", 0, 0, 100, 100)
		require.NoError(t, node.SetType(NodeTypeTask))
		require.NotNil(t, node.Status)
		assert.Equal(t, TaskStatusTodo, *node.Status)
	})

	t.Run("changing away from task clears status", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeTask, "t", 0, 0, 100, 100)
		done := TaskStatusDone
		node.Status = &done
		require.NoError(t, node.SetType(NodeTypeNote))
		assert.Nil(t, node.Status)
	})

	t.Run("changing away from journal clears journaled_at", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeJournal, "j", 0, 0, 100, 100)
		now := time.Now()
		require.NoError(t, node.SetJournaledAt(&now))
		require.NoError(t, node.SetType(NodeTypeNote))
		assert.Nil(t, node.JournaledAt)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeNote, "n", 0, 0, 100, 100)
		require.Error(t, node.SetType(NodeType("bogus")))
	})
}

func TestNode_Status(t *testing.T) {
	t.Run("cycle advances todo to in-progress to done and wraps", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeTask, "t", 0, 0, 100, 100)

		require.NoError(t, node.CycleStatus())
		assert.Equal(t, TaskStatusInProgress, node.EffectiveStatus())
		require.NoError(t, node.CycleStatus())
		assert.Equal(t, TaskStatusDone, node.EffectiveStatus())
		require.NoError(t, node.CycleStatus())
		assert.Equal(t, TaskStatusTodo, node.EffectiveStatus())
	})

	t.Run("cycle rejected for non-task nodes", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeNote, "n", 0, 0, 100, 100)
		require.Error(t, node.CycleStatus())
	})

	t.Run("effective status defaults to todo when unset", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeTask, "t", 0, 0, 100, 100)
		node.Status = nil
		assert.Equal(t, TaskStatusTodo, node.EffectiveStatus())
	})

	t.Run("effective status empty for non-task", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeJournal, "j", 0, 0, 100, 100)
		assert.Equal(t, TaskStatus(""), node.EffectiveStatus())
	})

	t.Run("set status rejected for non-task", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeNote, "n", 0, 0, 100, 100)
		require.Error(t, node.SetStatus(TaskStatusDone))
	})
}

func TestNode_Geometry(t *testing.T) {
	t.Run("resize clamps to minimum size", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeNote, "n", 0, 0, 200, 100)
		node.ResizeTo(12, 300)
		assert.Equal(t, MinNodeSize, node.Width)
		assert.Equal(t, 300.0, node.Height)
	})

	t.Run("move updates position and version marker", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeNote, "n", 0, 0, 200, 100)
		before := node.UpdatedAt
		time.Sleep(time.Millisecond)
		node.MoveTo(42, -10)
		assert.Equal(t, 42.0, node.X)
		assert.Equal(t, -10.0, node.Y)
		assert.True(t, node.UpdatedAt.After(before))
	})
}

func TestNode_JournaledAt(t *testing.T) {
	t.Run("rejected for non-journal nodes", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeTask, "t", 0, 0, 100, 100)
		now := time.Now()
		require.Error(t, node.SetJournaledAt(&now))
	})

	t.Run("accepted for journal nodes", func(t *testing.T) {
		node, _ := NewNode(1, nil, NodeTypeJournal, "j", 0, 0, 100, 100)
		now := time.Now()
		require.NoError(t, node.SetJournaledAt(&now))
		require.NotNil(t, node.JournaledAt)
		assert.True(t, node.JournaledAt.Equal(now))
	})
}

func TestTagList_Roundtrip(t *testing.T) {
	t.Run("value and scan preserve order", func(t *testing.T) {
		tags := TagList{"design", "backend", "qa"}
		v, err := tags.Value()
		require.NoError(t, err)

		var out TagList
		require.NoError(t, out.Scan(v))
		assert.Equal(t, tags, out)
	})

	t.Run("scan of nil yields empty list", func(t *testing.T) {
		var out TagList
		require.NoError(t, out.Scan(nil))
		assert.Empty(t, out)
	})
}
