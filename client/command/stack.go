// Package command implements a generic undo/redo history of reversible
// operations. The stack only sequences operations; any asynchronous work
// an operation triggers is fire-and-forget relative to the stack.
package command

import "sync"

// Command is a reversible operation. Redo applies (or reapplies) the
// operation's side effect, Undo reverses it. Implementations must not
// panic out of either method.
type Command interface {
	Redo()
	Undo()
}

// Func adapts a pair of closures into a Command.
type Func struct {
	Do func()
	Un func()
}

// Redo implements Command
func (f Func) Redo() {
	if f.Do != nil {
		f.Do()
	}
}

// Undo implements Command
func (f Func) Undo() {
	if f.Un != nil {
		f.Un()
	}
}

// State is the observable undo/redo availability pair.
type State struct {
	CanUndo bool
	CanRedo bool
}

// Listener is notified when the (CanUndo, CanRedo) pair changes value.
type Listener func(State)

// Stack holds the applied history and the undone future. Executing a new
// command discards the future; there is no redo tree.
type Stack struct {
	mu        sync.Mutex
	history   []Command
	future    []Command
	snapshot  *State
	listeners map[int]Listener
	nextSub   int
}

// NewStack creates an empty command stack.
func NewStack() *Stack {
	return &Stack{
		snapshot:  &State{},
		listeners: make(map[int]Listener),
	}
}

// Execute applies op immediately, records it in history and discards any
// previously undone commands.
func (s *Stack) Execute(op Command) {
	op.Redo()
	s.mu.Lock()
	s.history = append(s.history, op)
	s.future = s.future[:0]
	notify, state := s.refreshLocked()
	s.mu.Unlock()
	s.publish(notify, state)
}

// Undo reverses the most recent history entry. No-op when history is empty.
func (s *Stack) Undo() {
	s.mu.Lock()
	if len(s.history) == 0 {
		s.mu.Unlock()
		return
	}
	op := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.future = append(s.future, op)
	notify, state := s.refreshLocked()
	s.mu.Unlock()
	op.Undo()
	s.publish(notify, state)
}

// Redo reapplies the most recently undone entry. No-op when nothing has
// been undone.
func (s *Stack) Redo() {
	s.mu.Lock()
	if len(s.future) == 0 {
		s.mu.Unlock()
		return
	}
	op := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	s.history = append(s.history, op)
	notify, state := s.refreshLocked()
	s.mu.Unlock()
	op.Redo()
	s.publish(notify, state)
}

// CanUndo reports whether history is non-empty.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 0
}

// CanRedo reports whether any undone command can be reapplied.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.future) > 0
}

// Snapshot returns the current availability pair. The returned pointer is
// only reallocated when the pair changes, so consumers may compare by
// identity to detect transitions.
func (s *Stack) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Subscribe registers a listener called whenever the availability pair
// changes. The returned function removes the listener.
func (s *Stack) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Clear empties both sequences. Listeners fire only if the availability
// pair actually changed.
func (s *Stack) Clear() {
	s.mu.Lock()
	s.history = s.history[:0]
	s.future = s.future[:0]
	notify, state := s.refreshLocked()
	s.mu.Unlock()
	s.publish(notify, state)
}

// refreshLocked recomputes the snapshot. It returns the listeners to
// notify (nil when the pair did not change) and the new state value.
func (s *Stack) refreshLocked() ([]Listener, State) {
	next := State{
		CanUndo: len(s.history) > 0,
		CanRedo: len(s.future) > 0,
	}
	if next == *s.snapshot {
		return nil, next
	}
	s.snapshot = &next
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out, next
}

func (s *Stack) publish(listeners []Listener, state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
