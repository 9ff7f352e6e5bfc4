package canvas

import (
	"context"

	"github.com/flowweek/flowweek/client/cache"
	"github.com/flowweek/flowweek/client/command"
	"github.com/flowweek/flowweek/client/filter"
	"github.com/flowweek/flowweek/client/model"
	"github.com/flowweek/flowweek/client/sync"
	"github.com/flowweek/flowweek/client/view"
	"go.uber.org/zap"
)

// Default geometry for nodes created by double-click.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 120.0
)

// duplicateOffset displaces duplicated nodes from their originals.
const duplicateOffset = 24.0

// Button identifies the pointer button of a gesture.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers are the keyboard modifiers active during an input event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

func (m Modifiers) primary() bool {
	return m.Ctrl || m.Meta
}

// MenuItem is one contextual action surfaced by a secondary click.
type MenuItem struct {
	Label string
	Run   func()
}

type gesture int

const (
	gestureIdle gesture = iota
	gesturePanning
	gestureDragging
	gestureLinking
	gestureResizingGroup
	gestureMarquee
	gestureEdgeEndpoint
)

// Engine interprets pointer and keyboard input against the shared board
// cache and dispatches undoable commands through the sync client. One
// gesture is active at a time. Not safe for concurrent use: all input
// enters on the UI goroutine, matching the event-driven host.
type Engine struct {
	ctx      context.Context
	sync     *sync.Optimistic
	cache    *cache.BoardCache
	view     *view.State
	stack    *command.Stack
	viewport Viewport
	logger   *zap.Logger

	onEditNode func(nodeID int64)

	gesture gesture

	panLast Point

	dragStart  map[int64]Point
	dragOrigin Point
	dragMoved  bool

	linkSourceID int64
	linkPointer  Point

	resizeHandle ResizeHandle
	resizeStart  Rect
	resizeRects  map[int64]Rect
	resizeBounds Rect

	marqueeStart    Point
	marqueeEnd      Point
	marqueeAdditive bool
	marqueeBase     []int64

	epEdge    model.Edge
	epEnd     edgeEnd
	epPointer Point
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithOnEditNode installs the detail-panel callback invoked when a node
// is double-clicked.
func WithOnEditNode(fn func(nodeID int64)) EngineOption {
	return func(e *Engine) { e.onEditNode = fn }
}

// WithEngineLogger sets the diagnostics logger.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates the interaction engine over the given collaborators.
func NewEngine(syncClient *sync.Optimistic, viewState *view.State, stack *command.Stack, viewport Viewport, opts ...EngineOption) *Engine {
	e := &Engine{
		ctx:      context.Background(),
		sync:     syncClient,
		cache:    syncClient.Cache(),
		view:     viewState,
		stack:    stack,
		viewport: viewport,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetViewport updates the drawing surface dimensions.
func (e *Engine) SetViewport(v Viewport) {
	e.viewport = v
}

// Stack returns the content command stack.
func (e *Engine) Stack() *command.Stack {
	return e.stack
}

// visibleNodes applies the active filters to the cached node set.
func (e *Engine) visibleNodes() []model.Node {
	return filter.Visible(e.cache.Nodes(), e.view.SearchTerm(), e.view.StatusFilter(), e.view.TagFilters())
}

func nodesByID(nodes []model.Node) map[int64]model.Node {
	byID := make(map[int64]model.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return byID
}

// visibleEdges returns edges whose endpoints are both visible.
func (e *Engine) visibleEdges(byID map[int64]model.Node) []model.Edge {
	var out []model.Edge
	for _, edge := range e.cache.Edges() {
		if _, ok := byID[edge.SourceNodeID]; !ok {
			continue
		}
		if _, ok := byID[edge.TargetNodeID]; !ok {
			continue
		}
		out = append(out, edge)
	}
	return out
}

func (e *Engine) selectedNodes() []model.Node {
	ids := e.view.SelectedIDs()
	out := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := e.cache.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

func (e *Engine) world(sx, sy float64) Point {
	return ScreenToWorld(e.view.Camera(), e.viewport, sx, sy)
}

// PointerDown starts a gesture: pan, group resize, link, status cycle,
// node drag, edge endpoint reassignment or marquee selection.
func (e *Engine) PointerDown(sx, sy float64, btn Button, mods Modifiers) {
	cam := e.view.Camera()
	w := e.world(sx, sy)

	if btn == ButtonMiddle || e.view.Mode() == view.ModePan {
		e.gesture = gesturePanning
		e.panLast = Point{sx, sy}
		return
	}
	if btn != ButtonPrimary {
		return
	}

	nodes := e.visibleNodes()
	byID := nodesByID(nodes)

	if len(e.view.SelectedIDs()) >= 2 {
		sel := e.selectedNodes()
		bounds := selectionBounds(sel)
		if h := resizeHandleAt(bounds, w, cam.Zoom); h != HandleNone {
			e.gesture = gestureResizingGroup
			e.resizeHandle = h
			e.resizeStart = bounds
			e.resizeBounds = bounds
			// Immutable snapshot: server-driven updates arriving mid-gesture
			// must not corrupt the relative-transform math.
			e.resizeRects = make(map[int64]Rect, len(sel))
			for _, n := range sel {
				e.resizeRects[n.ID] = NodeRect(n)
			}
			return
		}
	}

	if n, ok := linkHandleNodeAt(nodes, w, cam.Zoom); ok {
		e.startLinking(n.ID, w)
		return
	}

	if edge, end, ok := edgeEndpointAt(e.visibleEdges(byID), byID, w, cam.Zoom); ok {
		e.gesture = gestureEdgeEndpoint
		e.epEdge = edge
		e.epEnd = end
		e.epPointer = w
		return
	}

	if n, ok := nodeAt(nodes, w); ok {
		if e.view.Mode() == view.ModeLink {
			e.startLinking(n.ID, w)
			return
		}
		if n.Type == model.NodeTypeTask && checkboxRect(NodeRect(n)).Contains(w) {
			e.stack.Execute(newStatusCycleCommand(e, n))
			return
		}

		if mods.Shift {
			e.view.SelectNode(n.ID, true)
		} else if !e.view.IsSelected(n.ID) {
			e.view.SelectNode(n.ID, false)
		}
		if !e.view.IsSelected(n.ID) {
			// shift-toggle removed it from the selection, nothing to drag
			return
		}

		e.gesture = gestureDragging
		e.dragOrigin = w
		e.dragMoved = false
		e.dragStart = make(map[int64]Point)
		for _, sel := range e.selectedNodes() {
			e.dragStart[sel.ID] = Point{sel.X, sel.Y}
		}
		return
	}

	e.gesture = gestureMarquee
	e.marqueeStart = w
	e.marqueeEnd = w
	e.marqueeAdditive = mods.Shift
	if mods.Shift {
		e.marqueeBase = e.view.SelectedIDs()
	} else {
		e.marqueeBase = nil
		e.view.ClearNodeSelection()
	}
}

func (e *Engine) startLinking(sourceID int64, w Point) {
	e.gesture = gestureLinking
	e.linkSourceID = sourceID
	e.linkPointer = w
}

// PointerMove advances the active gesture.
func (e *Engine) PointerMove(sx, sy float64) {
	cam := e.view.Camera()
	w := e.world(sx, sy)

	switch e.gesture {
	case gesturePanning:
		nx := cam.X - (sx-e.panLast.X)/cam.Zoom
		ny := cam.Y - (sy-e.panLast.Y)/cam.Zoom
		e.view.SetView(view.CameraPatch{X: &nx, Y: &ny})
		e.panLast = Point{sx, sy}

	case gestureDragging:
		dx := w.X - e.dragOrigin.X
		dy := w.Y - e.dragOrigin.Y
		if dx != 0 || dy != 0 {
			e.dragMoved = true
		}
		for id, start := range e.dragStart {
			if n, ok := e.cache.Node(id); ok {
				n.X = start.X + dx
				n.Y = start.Y + dy
				e.cache.UpsertNode(n)
			}
		}

	case gestureLinking:
		e.linkPointer = w

	case gestureResizingGroup:
		e.applyGroupResize(w)

	case gestureMarquee:
		e.marqueeEnd = w
		rect := Rect{
			X: e.marqueeStart.X,
			Y: e.marqueeStart.Y,
			W: e.marqueeEnd.X - e.marqueeStart.X,
			H: e.marqueeEnd.Y - e.marqueeStart.Y,
		}.Normalized()
		ids := append([]int64(nil), e.marqueeBase...)
		for _, n := range e.visibleNodes() {
			if rect.Intersects(NodeRect(n)) {
				ids = append(ids, n.ID)
			}
		}
		e.view.SelectNodes(ids, false)

	case gestureEdgeEndpoint:
		e.epPointer = w
	}
}

// applyGroupResize rescales every snapshotted node proportionally to the
// dragged bounding box. The box never collapses below MinGroupResize on
// either axis.
func (e *Engine) applyGroupResize(w Point) {
	b := e.resizeStart
	nb := b

	if e.resizeHandle.affectsX() {
		switch e.resizeHandle {
		case HandleNE, HandleE, HandleSE:
			nb.W = w.X - b.X
			if nb.W < MinGroupResize {
				nb.W = MinGroupResize
			}
		default:
			right := b.X + b.W
			nx := w.X
			if nx > right-MinGroupResize {
				nx = right - MinGroupResize
			}
			nb.X = nx
			nb.W = right - nx
		}
	}
	if e.resizeHandle.affectsY() {
		switch e.resizeHandle {
		case HandleSW, HandleS, HandleSE:
			nb.H = w.Y - b.Y
			if nb.H < MinGroupResize {
				nb.H = MinGroupResize
			}
		default:
			bottom := b.Y + b.H
			ny := w.Y
			if ny > bottom-MinGroupResize {
				ny = bottom - MinGroupResize
			}
			nb.Y = ny
			nb.H = bottom - ny
		}
	}
	e.resizeBounds = nb

	scaleX := nb.W / b.W
	scaleY := nb.H / b.H
	for id, r0 := range e.resizeRects {
		n, ok := e.cache.Node(id)
		if !ok {
			continue
		}
		n.X = nb.X + (r0.X-b.X)*scaleX
		n.Y = nb.Y + (r0.Y-b.Y)*scaleY
		n.Width = maxFloat(r0.W*scaleX, model.MinNodeSize)
		n.Height = maxFloat(r0.H*scaleY, model.MinNodeSize)
		e.cache.UpsertNode(n)
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// PointerUp completes the active gesture, committing drags, resizes,
// links and endpoint reassignments as undoable commands.
func (e *Engine) PointerUp(sx, sy float64) {
	w := e.world(sx, sy)
	g := e.gesture
	e.gesture = gestureIdle

	switch g {
	case gestureDragging:
		dragStart := e.dragStart
		e.dragStart = nil
		if !e.dragMoved {
			return
		}
		items := make([]geometryPatch, 0, len(dragStart))
		for id, start := range dragStart {
			n, ok := e.cache.Node(id)
			if !ok {
				continue
			}
			items = append(items, geometryPatch{
				id:     id,
				before: Rect{start.X, start.Y, n.Width, n.Height},
				after:  NodeRect(n),
			})
		}
		e.stack.Execute(newGeometryCommand(e, items))

	case gestureLinking:
		if target, ok := nodeAt(e.visibleNodes(), w); ok && target.ID != e.linkSourceID {
			e.stack.Execute(newCreateEdgeCommand(e, sync.EdgeCreate{
				SourceNodeID: e.linkSourceID,
				TargetNodeID: target.ID,
			}))
		}

	case gestureResizingGroup:
		rects := e.resizeRects
		e.resizeRects = nil
		items := make([]geometryPatch, 0, len(rects))
		for id, before := range rects {
			n, ok := e.cache.Node(id)
			if !ok {
				continue
			}
			items = append(items, geometryPatch{id: id, before: before, after: NodeRect(n)})
		}
		// One batched command: a single undo restores the whole resize.
		e.stack.Execute(newGeometryCommand(e, items))

	case gestureEdgeEndpoint:
		if target, ok := nodeAt(e.visibleNodes(), w); ok {
			current, other := e.epEdge.SourceNodeID, e.epEdge.TargetNodeID
			if e.epEnd == endTarget {
				current, other = other, current
			}
			if target.ID != other && target.ID != current {
				e.stack.Execute(newEdgeEndpointCommand(e, e.epEdge.ID, e.epEnd, current, target.ID))
			}
		}
	}
}

// DoubleClick creates a note node on empty space, or signals the detail
// panel for the node under the cursor.
func (e *Engine) DoubleClick(sx, sy float64) {
	w := e.world(sx, sy)
	if n, ok := nodeAt(e.visibleNodes(), w); ok {
		if e.onEditNode != nil {
			e.onEditNode(n.ID)
		}
		return
	}
	e.stack.Execute(newCreateNodeCommand(e, sync.NodeCreate{
		Type:   model.NodeTypeNote,
		X:      w.X - DefaultNodeWidth/2,
		Y:      w.Y - DefaultNodeHeight/2,
		Width:  DefaultNodeWidth,
		Height: DefaultNodeHeight,
	}))
}

// ContextClick surfaces contextual actions for the record under the
// cursor. Returned actions dispatch undoable commands when run.
func (e *Engine) ContextClick(sx, sy float64) []MenuItem {
	cam := e.view.Camera()
	w := e.world(sx, sy)
	nodes := e.visibleNodes()
	byID := nodesByID(nodes)

	if n, ok := nodeAt(nodes, w); ok {
		if !e.view.IsSelected(n.ID) {
			e.view.SelectNode(n.ID, false)
		}
		return []MenuItem{
			{Label: "Duplicate", Run: func() { e.DuplicateSelection() }},
			{Label: "Delete", Run: func() { e.DeleteSelection() }},
		}
	}
	if edge, ok := edgeNear(e.visibleEdges(byID), byID, w, cam.Zoom); ok {
		return []MenuItem{
			{Label: "Delete edge", Run: func() { e.stack.Execute(newDeleteEdgeCommand(e, edge)) }},
		}
	}
	return nil
}

// Wheel zooms about the cursor, clamped to the permitted range.
func (e *Engine) Wheel(sx, sy, deltaY float64) {
	cam := e.view.Camera()
	factor := 1.1
	if deltaY > 0 {
		factor = 1 / 1.1
	}
	nc := ZoomAt(cam, e.viewport, sx, sy, cam.Zoom*factor)
	e.view.SetView(view.CameraPatch{X: &nc.X, Y: &nc.Y, Zoom: &nc.Zoom})
}
