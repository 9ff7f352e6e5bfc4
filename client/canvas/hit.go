package canvas

import (
	"math"

	"github.com/flowweek/flowweek/client/model"
)

// Handle and glyph geometry, in world units at zoom 1. Hit radii divide
// by the zoom so targets keep a constant on-screen size.
const (
	linkHandleRadius     = 7.0
	resizeHandleRadius   = 6.0
	endpointHandleRadius = 5.0
	edgeHitThreshold     = 8.0
	checkboxInset        = 10.0
	checkboxSize         = 16.0
)

// ResizeHandle identifies one of the eight handles on the multi-select
// bounding box. Corner handles affect both axes, edge handles one.
type ResizeHandle int

const (
	HandleNone ResizeHandle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

func (h ResizeHandle) affectsX() bool {
	switch h {
	case HandleNW, HandleNE, HandleE, HandleSE, HandleSW, HandleW:
		return true
	}
	return false
}

func (h ResizeHandle) affectsY() bool {
	switch h {
	case HandleNW, HandleN, HandleNE, HandleSE, HandleS, HandleSW:
		return true
	}
	return false
}

// handlePoint returns a handle's anchor on the bounding box.
func handlePoint(b Rect, h ResizeHandle) Point {
	switch h {
	case HandleNW:
		return Point{b.X, b.Y}
	case HandleN:
		return Point{b.X + b.W/2, b.Y}
	case HandleNE:
		return Point{b.X + b.W, b.Y}
	case HandleE:
		return Point{b.X + b.W, b.Y + b.H/2}
	case HandleSE:
		return Point{b.X + b.W, b.Y + b.H}
	case HandleS:
		return Point{b.X + b.W/2, b.Y + b.H}
	case HandleSW:
		return Point{b.X, b.Y + b.H}
	case HandleW:
		return Point{b.X, b.Y + b.H/2}
	}
	return Point{}
}

var allHandles = []ResizeHandle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// resizeHandleAt returns the handle under the world point, if any.
func resizeHandleAt(bounds Rect, p Point, zoom float64) ResizeHandle {
	r := resizeHandleRadius / zoom
	for _, h := range allHandles {
		if dist(handlePoint(bounds, h), p) <= r {
			return h
		}
	}
	return HandleNone
}

// linkHandlePoint is the small circle on a node's trailing edge used to
// start a link gesture.
func linkHandlePoint(r Rect) Point {
	return Point{r.X + r.W, r.Y + r.H/2}
}

// checkboxRect is the status-cycle target on a task node.
func checkboxRect(r Rect) Rect {
	return Rect{r.X + checkboxInset, r.Y + checkboxInset, checkboxSize, checkboxSize}
}

// nodeAt returns the topmost node whose bounds contain p. Later nodes
// draw on top, so the scan runs back to front.
func nodeAt(nodes []model.Node, p Point) (model.Node, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		if NodeRect(nodes[i]).Contains(p) {
			return nodes[i], true
		}
	}
	return model.Node{}, false
}

// linkHandleNodeAt returns the node whose trailing link handle is under p.
func linkHandleNodeAt(nodes []model.Node, p Point, zoom float64) (model.Node, bool) {
	r := linkHandleRadius / zoom
	for i := len(nodes) - 1; i >= 0; i-- {
		if dist(linkHandlePoint(NodeRect(nodes[i])), p) <= r {
			return nodes[i], true
		}
	}
	return model.Node{}, false
}

// edgeEnd identifies which endpoint of an edge a gesture targets.
type edgeEnd int

const (
	endSource edgeEnd = iota + 1
	endTarget
)

// edgeEndpointAt returns the edge whose endpoint handle is under p.
// Endpoint handles sit at the curve's ends, on the node centers.
func edgeEndpointAt(edges []model.Edge, byID map[int64]model.Node, p Point, zoom float64) (model.Edge, edgeEnd, bool) {
	r := endpointHandleRadius / zoom
	for i := len(edges) - 1; i >= 0; i-- {
		e := edges[i]
		src, okS := byID[e.SourceNodeID]
		dst, okT := byID[e.TargetNodeID]
		if !okS || !okT {
			continue
		}
		p0, _, _, p1 := edgeCurve(NodeRect(src), NodeRect(dst))
		if dist(p0, p) <= r {
			return e, endSource, true
		}
		if dist(p1, p) <= r {
			return e, endTarget, true
		}
	}
	return model.Edge{}, 0, false
}

// edgeNear returns the edge whose curve passes within the zoom-adjusted
// threshold of p.
func edgeNear(edges []model.Edge, byID map[int64]model.Node, p Point, zoom float64) (model.Edge, bool) {
	threshold := edgeHitThreshold / zoom
	best := math.Inf(1)
	var found model.Edge
	ok := false
	for _, e := range edges {
		src, okS := byID[e.SourceNodeID]
		dst, okT := byID[e.TargetNodeID]
		if !okS || !okT {
			continue
		}
		if d := distanceToEdge(p, NodeRect(src), NodeRect(dst)); d <= threshold && d < best {
			best = d
			found = e
			ok = true
		}
	}
	return found, ok
}

// selectionBounds returns the bounding box of the given nodes.
func selectionBounds(nodes []model.Node) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X+n.Width)
		maxY = math.Max(maxY, n.Y+n.Height)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}
