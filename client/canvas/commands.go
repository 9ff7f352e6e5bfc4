package canvas

import (
	gosync "sync"

	"github.com/flowweek/flowweek/client/command"
	"github.com/flowweek/flowweek/client/model"
	"github.com/flowweek/flowweek/client/sync"
	"github.com/flowweek/flowweek/client/view"
)

// geometryPatch records one node's bounds before and after a gesture.
type geometryPatch struct {
	id     int64
	before Rect
	after  Rect
}

// geometryCommand moves and resizes a set of nodes as one undo step.
// Redo applies every after-rect, Undo every before-rect; each
// application goes through the optimistic sync client so the cache
// changes synchronously and the network reconciles behind it.
type geometryCommand struct {
	e     *Engine
	items []geometryPatch
}

func newGeometryCommand(e *Engine, items []geometryPatch) *geometryCommand {
	return &geometryCommand{e: e, items: items}
}

func (c *geometryCommand) Redo() {
	for _, it := range c.items {
		c.apply(it.id, it.after)
	}
}

func (c *geometryCommand) Undo() {
	for _, it := range c.items {
		c.apply(it.id, it.before)
	}
}

func (c *geometryCommand) apply(id int64, r Rect) {
	c.e.sync.UpdateNode(c.e.ctx, id, sync.NodePatch{
		X:      &r.X,
		Y:      &r.Y,
		Width:  &r.W,
		Height: &r.H,
	})
}

// statusCycleCommand advances a task node's status one step, capturing
// the prior and next values for undo.
type statusCycleCommand struct {
	e      *Engine
	nodeID int64
	before model.TaskStatus
	after  model.TaskStatus
}

func newStatusCycleCommand(e *Engine, n model.Node) *statusCycleCommand {
	before := n.EffectiveStatus()
	return &statusCycleCommand{
		e:      e,
		nodeID: n.ID,
		before: before,
		after:  before.Next(),
	}
}

func (c *statusCycleCommand) Redo() {
	s := c.after
	c.e.sync.UpdateNode(c.e.ctx, c.nodeID, sync.NodePatch{Status: &s})
}

func (c *statusCycleCommand) Undo() {
	s := c.before
	c.e.sync.UpdateNode(c.e.ctx, c.nodeID, sync.NodePatch{Status: &s})
}

// createNodeCommand creates a node optimistically. Undo cancels the
// create, even mid-flight; redo starts a fresh one.
type createNodeCommand struct {
	e      *Engine
	req    sync.NodeCreate
	handle *sync.CreateNodeHandle
}

func newCreateNodeCommand(e *Engine, req sync.NodeCreate) *createNodeCommand {
	return &createNodeCommand{e: e, req: req}
}

func (c *createNodeCommand) Redo() {
	c.handle = c.e.sync.CreateNode(c.e.ctx, c.req)
	c.e.view.SelectNode(c.handle.PlaceholderID(), false)
	go trackCreatedSelection(c.e.view, c.handle)
}

func (c *createNodeCommand) Undo() {
	if c.handle != nil {
		c.handle.Cancel(c.e.ctx)
		c.handle = nil
	}
	c.e.view.ClearNodeSelection()
}

// createEdgeCommand creates an edge optimistically with the same
// cancellation semantics as node creation.
type createEdgeCommand struct {
	e      *Engine
	req    sync.EdgeCreate
	handle *sync.CreateEdgeHandle
}

func newCreateEdgeCommand(e *Engine, req sync.EdgeCreate) *createEdgeCommand {
	return &createEdgeCommand{e: e, req: req}
}

func (c *createEdgeCommand) Redo() {
	c.handle = c.e.sync.CreateEdge(c.e.ctx, c.req)
}

func (c *createEdgeCommand) Undo() {
	if c.handle != nil {
		c.handle.Cancel(c.e.ctx)
		c.handle = nil
	}
}

// edgeEndpointCommand reassigns one endpoint of an edge, with undo
// restoring the original endpoint.
type edgeEndpointCommand struct {
	e      *Engine
	edgeID int64
	end    edgeEnd
	before int64
	after  int64
}

func newEdgeEndpointCommand(e *Engine, edgeID int64, end edgeEnd, before, after int64) *edgeEndpointCommand {
	return &edgeEndpointCommand{e: e, edgeID: edgeID, end: end, before: before, after: after}
}

func (c *edgeEndpointCommand) Redo() {
	c.apply(c.after)
}

func (c *edgeEndpointCommand) Undo() {
	c.apply(c.before)
}

func (c *edgeEndpointCommand) apply(nodeID int64) {
	patch := sync.EdgePatch{}
	if c.end == endSource {
		patch.SourceNodeID = &nodeID
	} else {
		patch.TargetNodeID = &nodeID
	}
	c.e.sync.UpdateEdge(c.e.ctx, c.edgeID, patch)
}

// deleteEdgeCommand removes a single edge; undo recreates it under a
// new server identifier.
type deleteEdgeCommand struct {
	e      *Engine
	edge   model.Edge
	handle *sync.CreateEdgeHandle
}

func newDeleteEdgeCommand(e *Engine, edge model.Edge) *deleteEdgeCommand {
	return &deleteEdgeCommand{e: e, edge: edge}
}

func (c *deleteEdgeCommand) Redo() {
	id := c.edge.ID
	if c.handle != nil {
		id = c.handle.CurrentID()
		c.handle = nil
	}
	c.e.sync.DeleteEdge(c.e.ctx, id)
}

func (c *deleteEdgeCommand) Undo() {
	c.handle = c.e.sync.CreateEdge(c.e.ctx, sync.EdgeCreate{
		SourceNodeID: c.edge.SourceNodeID,
		TargetNodeID: c.edge.TargetNodeID,
	})
}

// deleteSelectionCommand removes a set of nodes, cascading their edges,
// as one undo step. Undo recreates the nodes (under fresh server
// identifiers) and then their edges once the creates resolve.
type deleteSelectionCommand struct {
	e     *Engine
	nodes []model.Node
	edges []model.Edge

	mu          gosync.Mutex
	nodeHandles map[int64]*sync.CreateNodeHandle
	edgeHandles []*sync.CreateEdgeHandle
}

func newDeleteSelectionCommand(e *Engine, nodes []model.Node, edges []model.Edge) *deleteSelectionCommand {
	return &deleteSelectionCommand{e: e, nodes: nodes, edges: edges}
}

func (c *deleteSelectionCommand) Redo() {
	c.mu.Lock()
	handles := c.nodeHandles
	edgeHandles := c.edgeHandles
	c.nodeHandles = nil
	c.edgeHandles = nil
	c.mu.Unlock()

	for _, h := range edgeHandles {
		h.Cancel(c.e.ctx)
	}
	for _, n := range c.nodes {
		id := n.ID
		if h, ok := handles[n.ID]; ok {
			id = h.CurrentID()
		}
		c.e.sync.DeleteNode(c.e.ctx, id)
	}
	c.e.view.ClearNodeSelection()
}

func (c *deleteSelectionCommand) Undo() {
	handles := make(map[int64]*sync.CreateNodeHandle, len(c.nodes))
	for _, n := range c.nodes {
		handles[n.ID] = c.e.sync.CreateNode(c.e.ctx, nodeCreateFrom(n))
	}
	c.mu.Lock()
	c.nodeHandles = handles
	c.mu.Unlock()

	// Edges come back once their endpoints have server identifiers.
	for _, edge := range c.edges {
		go c.recreateEdge(edge, handles)
	}
}

func (c *deleteSelectionCommand) recreateEdge(edge model.Edge, handles map[int64]*sync.CreateNodeHandle) {
	source := edge.SourceNodeID
	target := edge.TargetNodeID
	if h, ok := handles[source]; ok {
		if res := <-h.Done(); res.Outcome != sync.OutcomeCommitted {
			return
		}
		source = h.CurrentID()
	}
	if h, ok := handles[target]; ok {
		if res := <-h.Done(); res.Outcome != sync.OutcomeCommitted {
			return
		}
		target = h.CurrentID()
	}

	c.mu.Lock()
	stale := c.nodeHandles == nil
	c.mu.Unlock()
	if stale {
		// A redo already re-deleted the selection.
		return
	}

	eh := c.e.sync.CreateEdge(c.e.ctx, sync.EdgeCreate{SourceNodeID: source, TargetNodeID: target})
	c.mu.Lock()
	if c.nodeHandles == nil {
		c.mu.Unlock()
		eh.Cancel(c.e.ctx)
		return
	}
	c.edgeHandles = append(c.edgeHandles, eh)
	c.mu.Unlock()
}

// duplicateCommand creates offset copies of a set of nodes as one undo
// step. Undo cancels every pending or resolved create.
type duplicateCommand struct {
	e         *Engine
	originals []model.Node
	handles   []*sync.CreateNodeHandle
}

func newDuplicateCommand(e *Engine, originals []model.Node) *duplicateCommand {
	return &duplicateCommand{e: e, originals: originals}
}

func (c *duplicateCommand) Redo() {
	c.handles = make([]*sync.CreateNodeHandle, 0, len(c.originals))
	ids := make([]int64, 0, len(c.originals))
	for _, n := range c.originals {
		req := nodeCreateFrom(n)
		req.X += duplicateOffset
		req.Y += duplicateOffset
		h := c.e.sync.CreateNode(c.e.ctx, req)
		c.handles = append(c.handles, h)
		ids = append(ids, h.PlaceholderID())
		go trackCreatedSelection(c.e.view, h)
	}
	c.e.view.SelectNodes(ids, false)
}

func (c *duplicateCommand) Undo() {
	for _, h := range c.handles {
		h.Cancel(c.e.ctx)
	}
	c.handles = nil
	c.e.view.ClearNodeSelection()
}

// trackCreatedSelection swaps the placeholder identifier in the
// selection for the server identifier once the create resolves.
func trackCreatedSelection(v *view.State, h *sync.CreateNodeHandle) {
	res := <-h.Done()
	if res.Outcome == sync.OutcomeCommitted && res.Node != nil {
		v.ReplaceSelectedID(h.PlaceholderID(), res.Node.ID)
	}
}

// nodeCreateFrom builds a create request reproducing a node snapshot.
func nodeCreateFrom(n model.Node) sync.NodeCreate {
	req := sync.NodeCreate{
		FlowID:      n.FlowID,
		Type:        n.Type,
		Tags:        append([]string(nil), n.Tags...),
		JournaledAt: n.JournaledAt,
		X:           n.X,
		Y:           n.Y,
		Width:       n.Width,
		Height:      n.Height,
		Title:       n.Title,
		Content:     n.Content,
	}
	if n.Status != nil {
		s := *n.Status
		req.Status = &s
	}
	return req
}

var (
	_ command.Command = (*geometryCommand)(nil)
	_ command.Command = (*statusCycleCommand)(nil)
	_ command.Command = (*createNodeCommand)(nil)
	_ command.Command = (*createEdgeCommand)(nil)
	_ command.Command = (*edgeEndpointCommand)(nil)
	_ command.Command = (*deleteEdgeCommand)(nil)
	_ command.Command = (*deleteSelectionCommand)(nil)
	_ command.Command = (*duplicateCommand)(nil)
)
