package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder builds commands that log their redo/undo invocations.
type recorder struct {
	log []string
}

func (r *recorder) cmd(name string) Command {
	return Func{
		Do: func() { r.log = append(r.log, "redo:"+name) },
		Un: func() { r.log = append(r.log, "undo:"+name) },
	}
}

func TestStackExecuteUndoRedo(t *testing.T) {
	rec := &recorder{}
	s := NewStack()

	s.Execute(rec.cmd("a"))
	s.Execute(rec.cmd("b"))
	require.Equal(t, []string{"redo:a", "redo:b"}, rec.log)
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	s.Undo()
	s.Undo()
	require.Equal(t, []string{"redo:a", "redo:b", "undo:b", "undo:a"}, rec.log)
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())

	s.Redo()
	require.Equal(t, []string{"redo:a", "redo:b", "undo:b", "undo:a", "redo:a"}, rec.log)
	assert.True(t, s.CanUndo())
	assert.True(t, s.CanRedo())
}

func TestStackUndoOnEmptyIsNoop(t *testing.T) {
	rec := &recorder{}
	s := NewStack()

	s.Undo()
	s.Redo()
	assert.Empty(t, rec.log)
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestStackExecuteDiscardsFuture(t *testing.T) {
	rec := &recorder{}
	s := NewStack()

	s.Execute(rec.cmd("a"))
	s.Execute(rec.cmd("b"))
	s.Undo()
	s.Execute(rec.cmd("c"))

	assert.False(t, s.CanRedo())
	before := len(rec.log)
	s.Redo()
	assert.Len(t, rec.log, before, "b is permanently discarded")
}

func TestStackSnapshotStability(t *testing.T) {
	s := NewStack()

	first := s.Snapshot()
	assert.Same(t, first, s.Snapshot())

	s.Execute(Func{})
	second := s.Snapshot()
	assert.NotSame(t, first, second)
	assert.True(t, second.CanUndo)
	assert.Same(t, second, s.Snapshot())

	// Undo then redo lands back on (true, false): a fresh allocation, but
	// stable until the next transition.
	s.Undo()
	s.Redo()
	third := s.Snapshot()
	assert.Equal(t, State{CanUndo: true, CanRedo: false}, *third)
	assert.Same(t, third, s.Snapshot())
}

func TestStackListenerFiresOnTransitionsOnly(t *testing.T) {
	s := NewStack()
	var calls []State
	unsubscribe := s.Subscribe(func(st State) { calls = append(calls, st) })

	s.Execute(Func{})
	s.Execute(Func{}) // (true,false) -> (true,false): no notification
	require.Len(t, calls, 1)
	assert.Equal(t, State{CanUndo: true}, calls[0])

	s.Undo()
	require.Len(t, calls, 2)
	assert.Equal(t, State{CanUndo: true, CanRedo: true}, calls[1])

	s.Clear()
	require.Len(t, calls, 3)
	assert.Equal(t, State{}, calls[2])

	s.Clear() // already empty: no notification
	require.Len(t, calls, 3)

	unsubscribe()
	s.Execute(Func{})
	assert.Len(t, calls, 3)
}
