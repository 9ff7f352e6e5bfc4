package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEdge(t *testing.T) {
	t.Run("creates directed edge between distinct nodes", func(t *testing.T) {
		edge, err := NewEdge(1, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), edge.BoardID)
		assert.Equal(t, int64(10), edge.SourceNodeID)
		assert.Equal(t, int64(20), edge.TargetNodeID)
	})

	t.Run("rejects self-loop", func(t *testing.T) {
		_, err := NewEdge(1, 10, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot link a node to itself")
	})
}

func TestEdge_Reassign(t *testing.T) {
	t.Run("set source keeps endpoints distinct", func(t *testing.T) {
		edge, _ := NewEdge(1, 10, 20)
		require.NoError(t, edge.SetSource(30))
		assert.Equal(t, int64(30), edge.SourceNodeID)

		require.Error(t, edge.SetSource(20))
	})

	t.Run("set target keeps endpoints distinct", func(t *testing.T) {
		edge, _ := NewEdge(1, 10, 20)
		require.NoError(t, edge.SetTarget(30))
		assert.Equal(t, int64(30), edge.TargetNodeID)

		require.Error(t, edge.SetTarget(10))
	})
}

func TestEdge_Touches(t *testing.T) {
	edge, _ := NewEdge(1, 10, 20)
	assert.True(t, edge.Touches(10))
	assert.True(t, edge.Touches(20))
	assert.False(t, edge.Touches(30))
}
