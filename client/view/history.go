package view

import "sync"

// History wraps a State with snapshot-based undo/redo, independent of
// the content-level command stack. Every mutating call made through the
// wrapper captures the whole state first, so Undo restores exactly what
// the user saw before the change.
type History struct {
	mu     sync.Mutex
	state  *State
	past   []snapshot
	future []snapshot
}

// NewHistory wraps state with snapshot undo/redo.
func NewHistory(state *State) *History {
	return &History{state: state}
}

// State returns the wrapped state for read access. Mutations made
// directly on it bypass the history.
func (h *History) State() *State {
	return h.state
}

// Do captures the current state, then applies mutate. Any previously
// undone snapshots are discarded.
func (h *History) Do(mutate func(*State)) {
	h.mu.Lock()
	h.past = append(h.past, h.state.capture())
	h.future = h.future[:0]
	h.mu.Unlock()
	mutate(h.state)
}

// Undo restores the most recent snapshot. No-op when there is none.
func (h *History) Undo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.past) == 0 {
		return
	}
	snap := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.state.capture())
	h.state.restore(snap)
}

// Redo reapplies the most recently undone snapshot.
func (h *History) Redo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.future) == 0 {
		return
	}
	snap := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.state.capture())
	h.state.restore(snap)
}

// CanUndo reports whether a snapshot can be restored.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo reports whether an undone snapshot can be reapplied.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}
