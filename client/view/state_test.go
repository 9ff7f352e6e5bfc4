package view

import (
	"testing"

	"github.com/flowweek/flowweek/client/filter"
	"github.com/stretchr/testify/assert"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState()

	assert.Equal(t, Camera{X: 0, Y: 0, Zoom: 1}, s.Camera())
	assert.Equal(t, ModeSelect, s.Mode())
	assert.Empty(t, s.SelectedIDs())
	assert.Equal(t, "", s.SearchTerm())
	assert.Equal(t, filter.StatusAll, s.StatusFilter())
	assert.Empty(t, s.TagFilters())
}

func TestSelectNode(t *testing.T) {
	t.Run("replaces selection", func(t *testing.T) {
		s := NewState()
		s.SelectNode(1, false)
		s.SelectNode(2, false)
		assert.Equal(t, []int64{2}, s.SelectedIDs())
	})

	t.Run("additive toggles membership", func(t *testing.T) {
		s := NewState()
		s.SelectNode(1, false)
		s.SelectNode(2, true)
		assert.Equal(t, []int64{1, 2}, s.SelectedIDs())

		s.SelectNode(1, true)
		assert.Equal(t, []int64{2}, s.SelectedIDs())
	})
}

func TestSelectNodes(t *testing.T) {
	s := NewState()
	s.SelectNodes([]int64{1, 2}, false)
	assert.Equal(t, []int64{1, 2}, s.SelectedIDs())

	s.SelectNodes([]int64{2, 3}, true)
	assert.Equal(t, []int64{1, 2, 3}, s.SelectedIDs())

	s.SelectNodes([]int64{5}, false)
	assert.Equal(t, []int64{5}, s.SelectedIDs())

	s.ClearNodeSelection()
	assert.Empty(t, s.SelectedIDs())
}

func TestReplaceSelectedID(t *testing.T) {
	s := NewState()
	s.SelectNode(-1, false)
	s.ReplaceSelectedID(-1, 42)
	assert.Equal(t, []int64{42}, s.SelectedIDs())

	// no-op when the old id is not selected
	s.ReplaceSelectedID(-2, 99)
	assert.Equal(t, []int64{42}, s.SelectedIDs())
}

func TestSetViewMergesPartial(t *testing.T) {
	s := NewState()
	x := 120.0
	s.SetView(CameraPatch{X: &x})
	assert.Equal(t, Camera{X: 120, Y: 0, Zoom: 1}, s.Camera())

	zoom := 2.5
	y := -40.0
	s.SetView(CameraPatch{Y: &y, Zoom: &zoom})
	assert.Equal(t, Camera{X: 120, Y: -40, Zoom: 2.5}, s.Camera())
}

func TestHistorySnapshotsWholeState(t *testing.T) {
	s := NewState()
	h := NewHistory(s)

	h.Do(func(st *State) { st.SelectNode(7, false) })
	h.Do(func(st *State) {
		st.SetSearchTerm("retro")
		st.SetMode(ModeLink)
	})
	assert.Equal(t, []int64{7}, s.SelectedIDs())
	assert.Equal(t, "retro", s.SearchTerm())

	h.Undo()
	assert.Equal(t, []int64{7}, s.SelectedIDs())
	assert.Equal(t, "", s.SearchTerm())
	assert.Equal(t, ModeSelect, s.Mode())

	h.Undo()
	assert.Empty(t, s.SelectedIDs())
	assert.False(t, h.CanUndo())

	h.Redo()
	h.Redo()
	assert.Equal(t, "retro", s.SearchTerm())
	assert.Equal(t, ModeLink, s.Mode())
	assert.False(t, h.CanRedo())
}

func TestHistoryDoDiscardsFuture(t *testing.T) {
	s := NewState()
	h := NewHistory(s)

	h.Do(func(st *State) { st.SetSearchTerm("a") })
	h.Do(func(st *State) { st.SetSearchTerm("b") })
	h.Undo()
	h.Do(func(st *State) { st.SetSearchTerm("c") })

	assert.False(t, h.CanRedo())
	assert.Equal(t, "c", s.SearchTerm())
}
