// Package view holds the process-wide UI state: camera transform,
// interaction mode, multi-select set and the active filters. State is an
// injected instance rather than a package-level singleton so multiple
// boards and tests can run in isolation.
package view

import (
	"sort"
	"sync"

	"github.com/flowweek/flowweek/client/filter"
)

// Mode is the active interaction mode.
type Mode string

const (
	ModeSelect Mode = "select"
	ModePan    Mode = "pan"
	ModeLink   Mode = "link"
)

// Camera is the pan/zoom transform. X and Y are the world coordinates at
// the viewport center.
type Camera struct {
	X    float64
	Y    float64
	Zoom float64
}

// CameraPatch is a partial camera update; nil fields are left untouched.
// Zoom clamping is the caller's responsibility.
type CameraPatch struct {
	X    *float64
	Y    *float64
	Zoom *float64
}

// State is the selection and view state for one board session.
type State struct {
	mu           sync.RWMutex
	camera       Camera
	mode         Mode
	selected     map[int64]struct{}
	searchTerm   string
	statusFilter filter.Status
	tagFilters   []string
}

// NewState creates the initial state: camera centered at origin with
// zoom 1, select mode, empty selection, empty filters.
func NewState() *State {
	return &State{
		camera:       Camera{Zoom: 1},
		mode:         ModeSelect,
		selected:     make(map[int64]struct{}),
		statusFilter: filter.StatusAll,
	}
}

// Camera returns the current camera transform.
func (s *State) Camera() Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// SetView merges a partial camera update.
func (s *State) SetView(patch CameraPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.X != nil {
		s.camera.X = *patch.X
	}
	if patch.Y != nil {
		s.camera.Y = *patch.Y
	}
	if patch.Zoom != nil {
		s.camera.Zoom = *patch.Zoom
	}
}

// Mode returns the active interaction mode.
func (s *State) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the interaction mode.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// SelectNode selects a single node. When additive, the node's membership
// in the selection is toggled instead.
func (s *State) SelectNode(id int64, additive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !additive {
		s.selected = map[int64]struct{}{id: {}}
		return
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
}

// SelectNodes selects a set of nodes. When additive, ids are unioned
// into the current selection; otherwise they replace it.
func (s *State) SelectNodes(ids []int64, additive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !additive {
		s.selected = make(map[int64]struct{}, len(ids))
	}
	for _, id := range ids {
		s.selected[id] = struct{}{}
	}
}

// ClearNodeSelection empties the selection set.
func (s *State) ClearNodeSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[int64]struct{})
}

// IsSelected reports whether id is in the selection set.
func (s *State) IsSelected(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the selection as a sorted slice.
func (s *State) SelectedIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SelectionSize returns the number of selected nodes.
func (s *State) SelectionSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// ReplaceSelectedID swaps one selected identifier for another, keeping
// the selection stable when a placeholder resolves to its server record.
func (s *State) ReplaceSelectedID(oldID, newID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[oldID]; ok {
		delete(s.selected, oldID)
		s.selected[newID] = struct{}{}
	}
}

// SearchTerm returns the active search term.
func (s *State) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

// SetSearchTerm sets the search term.
func (s *State) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

// StatusFilter returns the active status filter.
func (s *State) StatusFilter() filter.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusFilter
}

// SetStatusFilter sets the status filter.
func (s *State) SetStatusFilter(f filter.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFilter = f
}

// TagFilters returns a copy of the active tag filters.
func (s *State) TagFilters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tagFilters...)
}

// SetTagFilters replaces the tag filters.
func (s *State) SetTagFilters(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagFilters = append([]string(nil), tags...)
}

// snapshot captures the whole state as a value.
type snapshot struct {
	camera       Camera
	mode         Mode
	selected     map[int64]struct{}
	searchTerm   string
	statusFilter filter.Status
	tagFilters   []string
}

func (s *State) capture() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel := make(map[int64]struct{}, len(s.selected))
	for id := range s.selected {
		sel[id] = struct{}{}
	}
	return snapshot{
		camera:       s.camera,
		mode:         s.mode,
		selected:     sel,
		searchTerm:   s.searchTerm,
		statusFilter: s.statusFilter,
		tagFilters:   append([]string(nil), s.tagFilters...),
	}
}

func (s *State) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := make(map[int64]struct{}, len(snap.selected))
	for id := range snap.selected {
		sel[id] = struct{}{}
	}
	s.camera = snap.camera
	s.mode = snap.mode
	s.selected = sel
	s.searchTerm = snap.searchTerm
	s.statusFilter = snap.statusFilter
	s.tagFilters = append([]string(nil), snap.tagFilters...)
}
