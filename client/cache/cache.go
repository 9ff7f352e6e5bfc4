// Package cache holds the single shared node/edge/flow collection for a
// board. Every component reads and writes through it: the canvas engine,
// the optimistic sync client and the realtime channel all see the same
// records, so no private copy can silently diverge.
package cache

import (
	"sync"

	"github.com/flowweek/flowweek/client/model"
)

// BoardCache is the shared record store for one board. Safe for
// concurrent use; the realtime channel mutates it from its read loop
// while the UI reads it every frame.
type BoardCache struct {
	mu        sync.RWMutex
	boardID   int64
	nodes     map[int64]model.Node
	nodeOrder []int64
	edges     map[int64]model.Edge
	edgeOrder []int64
	flows     []model.Flow
}

// NewBoardCache creates an empty cache for the given board.
func NewBoardCache(boardID int64) *BoardCache {
	return &BoardCache{
		boardID: boardID,
		nodes:   make(map[int64]model.Node),
		edges:   make(map[int64]model.Edge),
	}
}

// BoardID returns the board this cache belongs to.
func (c *BoardCache) BoardID() int64 {
	return c.boardID
}

// Load replaces the whole cache contents, typically from the initial
// list responses.
func (c *BoardCache) Load(nodes []model.Node, edges []model.Edge, flows []model.Flow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = make(map[int64]model.Node, len(nodes))
	c.nodeOrder = c.nodeOrder[:0]
	for _, n := range nodes {
		c.nodes[n.ID] = n.Clone()
		c.nodeOrder = append(c.nodeOrder, n.ID)
	}
	c.edges = make(map[int64]model.Edge, len(edges))
	c.edgeOrder = c.edgeOrder[:0]
	for _, e := range edges {
		c.edges[e.ID] = e
		c.edgeOrder = append(c.edgeOrder, e.ID)
	}
	c.flows = append([]model.Flow(nil), flows...)
}

// Node returns the node with the given id.
func (c *BoardCache) Node(id int64) (model.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns all nodes in insertion order.
func (c *BoardCache) Nodes() []model.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Node, 0, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		out = append(out, c.nodes[id].Clone())
	}
	return out
}

// Edge returns the edge with the given id.
func (c *BoardCache) Edge(id int64) (model.Edge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.edges[id]
	return e, ok
}

// Edges returns all edges in insertion order.
func (c *BoardCache) Edges() []model.Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Edge, 0, len(c.edgeOrder))
	for _, id := range c.edgeOrder {
		out = append(out, c.edges[id])
	}
	return out
}

// EdgesTouching returns every edge referencing the given node.
func (c *BoardCache) EdgesTouching(nodeID int64) []model.Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []model.Edge
	for _, id := range c.edgeOrder {
		if e := c.edges[id]; e.Touches(nodeID) {
			out = append(out, e)
		}
	}
	return out
}

// Flows returns the flow lanes.
func (c *BoardCache) Flows() []model.Flow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Flow(nil), c.flows...)
}

// SetFlows replaces the flow lanes.
func (c *BoardCache) SetFlows(flows []model.Flow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flows = append([]model.Flow(nil), flows...)
}

// UpsertNode inserts the node or replaces the record with the same id,
// keeping its position in the ordering.
func (c *BoardCache) UpsertNode(n model.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[n.ID]; !ok {
		c.nodeOrder = append(c.nodeOrder, n.ID)
	}
	c.nodes[n.ID] = n.Clone()
}

// ReplaceNode swaps the record stored under oldID for the given node,
// preserving its ordering slot. Edge endpoints referencing oldID are
// retargeted. Used when a create resolves and the placeholder gives way
// to the server record.
func (c *BoardCache) ReplaceNode(oldID int64, n model.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[oldID]; !ok {
		if _, exists := c.nodes[n.ID]; !exists {
			c.nodeOrder = append(c.nodeOrder, n.ID)
		}
		c.nodes[n.ID] = n.Clone()
		return
	}
	delete(c.nodes, oldID)
	for i, id := range c.nodeOrder {
		if id == oldID {
			c.nodeOrder[i] = n.ID
			break
		}
	}
	c.nodes[n.ID] = n.Clone()
	for id, e := range c.edges {
		changed := false
		if e.SourceNodeID == oldID {
			e.SourceNodeID = n.ID
			changed = true
		}
		if e.TargetNodeID == oldID {
			e.TargetNodeID = n.ID
			changed = true
		}
		if changed {
			c.edges[id] = e
		}
	}
}

// RemoveNode deletes the node and every edge referencing it. It returns
// the removed node and the cascaded edges so callers can restore them on
// rollback or undo.
func (c *BoardCache) RemoveNode(id int64) (model.Node, []model.Edge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[id]
	if !ok {
		return model.Node{}, nil, false
	}
	delete(c.nodes, id)
	c.nodeOrder = removeID(c.nodeOrder, id)

	var cascaded []model.Edge
	for _, eid := range append([]int64(nil), c.edgeOrder...) {
		if e := c.edges[eid]; e.Touches(id) {
			cascaded = append(cascaded, e)
			delete(c.edges, eid)
			c.edgeOrder = removeID(c.edgeOrder, eid)
		}
	}
	return n.Clone(), cascaded, true
}

// RestoreNode reinserts a previously removed node and its cascaded edges.
func (c *BoardCache) RestoreNode(n model.Node, edges []model.Edge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[n.ID]; !ok {
		c.nodeOrder = append(c.nodeOrder, n.ID)
	}
	c.nodes[n.ID] = n.Clone()
	for _, e := range edges {
		if _, ok := c.edges[e.ID]; !ok {
			c.edgeOrder = append(c.edgeOrder, e.ID)
		}
		c.edges[e.ID] = e
	}
}

// UpsertEdge inserts the edge or replaces the record with the same id.
func (c *BoardCache) UpsertEdge(e model.Edge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.edges[e.ID]; !ok {
		c.edgeOrder = append(c.edgeOrder, e.ID)
	}
	c.edges[e.ID] = e
}

// ReplaceEdge swaps the record stored under oldID for the given edge,
// preserving its ordering slot.
func (c *BoardCache) ReplaceEdge(oldID int64, e model.Edge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.edges[oldID]; !ok {
		if _, exists := c.edges[e.ID]; !exists {
			c.edgeOrder = append(c.edgeOrder, e.ID)
		}
		c.edges[e.ID] = e
		return
	}
	delete(c.edges, oldID)
	for i, id := range c.edgeOrder {
		if id == oldID {
			c.edgeOrder[i] = e.ID
			break
		}
	}
	c.edges[e.ID] = e
}

// RemoveEdge deletes a single edge, returning the removed record.
func (c *BoardCache) RemoveEdge(id int64) (model.Edge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.edges[id]
	if !ok {
		return model.Edge{}, false
	}
	delete(c.edges, id)
	c.edgeOrder = removeID(c.edgeOrder, id)
	return e, true
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
