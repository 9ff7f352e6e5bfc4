package canvas

import (
	"sort"

	"github.com/flowweek/flowweek/client/model"
)

// AlignEdge selects which selection edge Align snaps to.
type AlignEdge int

const (
	AlignLeft AlignEdge = iota
	AlignRight
	AlignTop
	AlignBottom
)

// Axis selects the distribution direction.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// Key dispatches a keyboard shortcut. Key values follow the DOM
// KeyboardEvent convention ("z", "Delete", "ArrowLeft", "Escape").
func (e *Engine) Key(key string, mods Modifiers) {
	if mods.Alt && mods.Shift {
		switch key {
		case "ArrowLeft":
			e.Align(AlignLeft)
			return
		case "ArrowRight":
			e.Align(AlignRight)
			return
		case "ArrowUp":
			e.Align(AlignTop)
			return
		case "ArrowDown":
			e.Align(AlignBottom)
			return
		case "h", "H":
			e.Distribute(AxisHorizontal)
			return
		case "v", "V":
			e.Distribute(AxisVertical)
			return
		}
	}

	if mods.primary() {
		switch key {
		case "z", "Z":
			if mods.Shift {
				e.stack.Redo()
			} else {
				e.stack.Undo()
			}
			return
		case "y", "Y":
			e.stack.Redo()
			return
		case "a", "A":
			e.SelectAllVisible()
			return
		case "d", "D":
			e.DuplicateSelection()
			return
		}
	}

	switch key {
	case "Delete", "Backspace":
		e.DeleteSelection()
	case "Escape":
		e.cancelGesture()
		e.view.ClearNodeSelection()
	}
}

// cancelGesture abandons the in-progress gesture without committing.
func (e *Engine) cancelGesture() {
	if e.gesture == gestureDragging {
		// put dragged nodes back where they started
		for id, start := range e.dragStart {
			if n, ok := e.cache.Node(id); ok {
				n.X = start.X
				n.Y = start.Y
				e.cache.UpsertNode(n)
			}
		}
	}
	if e.gesture == gestureResizingGroup {
		for id, r := range e.resizeRects {
			if n, ok := e.cache.Node(id); ok {
				n.X = r.X
				n.Y = r.Y
				n.Width = r.W
				n.Height = r.H
				e.cache.UpsertNode(n)
			}
		}
	}
	e.gesture = gestureIdle
	e.dragStart = nil
	e.resizeRects = nil
}

// SelectAllVisible selects every node matching the active filters.
func (e *Engine) SelectAllVisible() {
	nodes := e.visibleNodes()
	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	e.view.SelectNodes(ids, false)
}

// DeleteSelection removes all selected nodes, cascading their edges,
// as one batched command.
func (e *Engine) DeleteSelection() {
	nodes := e.selectedNodes()
	if len(nodes) == 0 {
		return
	}
	seen := make(map[int64]struct{})
	var edges []model.Edge
	for _, n := range nodes {
		for _, edge := range e.cache.EdgesTouching(n.ID) {
			if _, ok := seen[edge.ID]; ok {
				continue
			}
			seen[edge.ID] = struct{}{}
			edges = append(edges, edge)
		}
	}
	e.stack.Execute(newDeleteSelectionCommand(e, nodes, edges))
}

// DuplicateSelection creates offset copies of every selected node as
// one batched command.
func (e *Engine) DuplicateSelection() {
	nodes := e.selectedNodes()
	if len(nodes) == 0 {
		return
	}
	e.stack.Execute(newDuplicateCommand(e, nodes))
}

// Align snaps each selected node's matching edge to the extreme value
// among the selection. No-op with fewer than two nodes selected.
func (e *Engine) Align(edge AlignEdge) {
	nodes := e.selectedNodes()
	if len(nodes) < 2 {
		return
	}

	var target float64
	switch edge {
	case AlignLeft:
		target = nodes[0].X
		for _, n := range nodes[1:] {
			if n.X < target {
				target = n.X
			}
		}
	case AlignRight:
		target = nodes[0].X + nodes[0].Width
		for _, n := range nodes[1:] {
			if v := n.X + n.Width; v > target {
				target = v
			}
		}
	case AlignTop:
		target = nodes[0].Y
		for _, n := range nodes[1:] {
			if n.Y < target {
				target = n.Y
			}
		}
	case AlignBottom:
		target = nodes[0].Y + nodes[0].Height
		for _, n := range nodes[1:] {
			if v := n.Y + n.Height; v > target {
				target = v
			}
		}
	}

	items := make([]geometryPatch, 0, len(nodes))
	for _, n := range nodes {
		after := NodeRect(n)
		switch edge {
		case AlignLeft:
			after.X = target
		case AlignRight:
			after.X = target - n.Width
		case AlignTop:
			after.Y = target
		case AlignBottom:
			after.Y = target - n.Height
		}
		if after == NodeRect(n) {
			continue
		}
		items = append(items, geometryPatch{id: n.ID, before: NodeRect(n), after: after})
	}
	if len(items) == 0 {
		return
	}
	e.stack.Execute(newGeometryCommand(e, items))
}

// Distribute spaces three or more selected nodes evenly along an axis.
// The first and last nodes anchor; intermediates get equal gaps from
// the span minus the summed extents. Two selected nodes are anchors
// with nothing to space, and a zero span leaves everything in place.
func (e *Engine) Distribute(axis Axis) {
	nodes := e.selectedNodes()
	if len(nodes) < 3 {
		return
	}

	pos := func(n model.Node) float64 { return n.X }
	extent := func(n model.Node) float64 { return n.Width }
	if axis == AxisVertical {
		pos = func(n model.Node) float64 { return n.Y }
		extent = func(n model.Node) float64 { return n.Height }
	}

	sort.Slice(nodes, func(i, j int) bool { return pos(nodes[i]) < pos(nodes[j]) })

	first := nodes[0]
	last := nodes[len(nodes)-1]
	if pos(last) == pos(first) {
		// fully stacked selection, nothing meaningful to space out
		return
	}
	span := pos(last) + extent(last) - pos(first)
	total := 0.0
	for _, n := range nodes {
		total += extent(n)
	}
	gap := (span - total) / float64(len(nodes)-1)

	items := make([]geometryPatch, 0, len(nodes)-2)
	cursor := pos(first) + extent(first) + gap
	for _, n := range nodes[1 : len(nodes)-1] {
		after := NodeRect(n)
		if axis == AxisHorizontal {
			after.X = cursor
		} else {
			after.Y = cursor
		}
		cursor += extent(n) + gap
		if after == NodeRect(n) {
			continue
		}
		items = append(items, geometryPatch{id: n.ID, before: NodeRect(n), after: after})
	}
	if len(items) == 0 {
		return
	}
	e.stack.Execute(newGeometryCommand(e, items))
}
