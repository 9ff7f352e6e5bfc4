// Package canvas is the board's interaction engine: coordinate
// transforms, hit-testing, the pointer/keyboard gesture machine and
// per-frame rendering through a pluggable Renderer. All mutation is
// dispatched as undoable commands through the optimistic sync client.
package canvas

import (
	"math"

	"github.com/flowweek/flowweek/client/model"
	"github.com/flowweek/flowweek/client/view"
)

// Zoom bounds enforced by the wheel and zoom controls.
const (
	MinZoom = 0.2
	MaxZoom = 3.0
)

// GridSize is the background grid tile size in world units.
const GridSize = 64.0

// MinGroupResize is the smallest a multi-select bounding box dimension
// may be dragged to, in world units.
const MinGroupResize = 40.0

// Point is a position in either world or screen space.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether the rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Normalized flips negative extents so W and H are non-negative.
func (r Rect) Normalized() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// NodeRect returns the node's world-space bounds.
func NodeRect(n model.Node) Rect {
	return Rect{n.X, n.Y, n.Width, n.Height}
}

// Viewport describes the drawing surface in CSS pixels plus the device
// pixel ratio the renderer compensates for.
type Viewport struct {
	Width  float64
	Height float64
	DPR    float64
}

// ScreenToWorld converts a screen position to world coordinates. The
// camera's X/Y is the world point at the viewport center.
func ScreenToWorld(cam view.Camera, v Viewport, sx, sy float64) Point {
	return Point{
		X: cam.X + (sx-v.Width/2)/cam.Zoom,
		Y: cam.Y + (sy-v.Height/2)/cam.Zoom,
	}
}

// WorldToScreen converts a world position to screen coordinates.
func WorldToScreen(cam view.Camera, v Viewport, wx, wy float64) Point {
	return Point{
		X: (wx-cam.X)*cam.Zoom + v.Width/2,
		Y: (wy-cam.Y)*cam.Zoom + v.Height/2,
	}
}

// ClampZoom bounds a zoom factor to the permitted range.
func ClampZoom(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

// ZoomAt returns the camera zoomed to newZoom about the given screen
// point: the world coordinate under the cursor stays visually fixed,
// solved by recomputing the camera offset after the zoom change.
func ZoomAt(cam view.Camera, v Viewport, sx, sy, newZoom float64) view.Camera {
	newZoom = ClampZoom(newZoom)
	w := ScreenToWorld(cam, v, sx, sy)
	return view.Camera{
		X:    w.X - (sx-v.Width/2)/newZoom,
		Y:    w.Y - (sy-v.Height/2)/newZoom,
		Zoom: newZoom,
	}
}

// edgeCurve returns the cubic bezier for an edge: endpoints at the node
// centers, control points pushed horizontally apart by half the
// separation, never less than 40 units, so short edges still arc.
func edgeCurve(src, dst Rect) (p0, c0, c1, p1 Point) {
	p0 = src.Center()
	p1 = dst.Center()
	dx := math.Abs(p1.X-p0.X) / 2
	if dx < 40 {
		dx = 40
	}
	c0 = Point{p0.X + dx, p0.Y}
	c1 = Point{p1.X - dx, p1.Y}
	return p0, c0, c1, p1
}

// bezierPoint evaluates the cubic bezier at t in [0, 1].
func bezierPoint(p0, c0, c1, p1 Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*c0.X + c*c1.X + d*p1.X,
		Y: a*p0.Y + b*c0.Y + c*c1.Y + d*p1.Y,
	}
}

const bezierSamples = 24

// distanceToEdge returns the minimum distance from p to the sampled
// edge curve between the two node rectangles.
func distanceToEdge(p Point, src, dst Rect) float64 {
	p0, c0, c1, p1 := edgeCurve(src, dst)
	best := math.Inf(1)
	for i := 0; i <= bezierSamples; i++ {
		t := float64(i) / bezierSamples
		q := bezierPoint(p0, c0, c1, p1, t)
		if d := dist(p, q); d < best {
			best = d
		}
	}
	return best
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
