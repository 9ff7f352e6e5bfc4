package canvas

import (
	"fmt"
	"strings"

	"github.com/flowweek/flowweek/client/model"
)

// Style carries the paint parameters for one drawing call. Colors are
// CSS color strings so the host surface can pass them straight through.
type Style struct {
	Fill      string
	Stroke    string
	LineWidth float64
	FontSize  float64
	Dash      []float64
}

// Renderer is the drawing surface the engine paints onto. Coordinates
// passed to the drawing calls are world units; SetTransform installs
// the camera so the surface maps them to pixels.
type Renderer interface {
	Clear()
	SetTransform(scale, offsetX, offsetY float64)
	Rect(x, y, w, h float64, style Style)
	Line(x1, y1, x2, y2 float64, style Style)
	Bezier(p0, c0, c1, p1 Point, style Style)
	Circle(x, y, r float64, style Style)
	Text(s string, x, y float64, style Style)
	MeasureText(s string, fontSize float64) float64
}

// Palette.
const (
	colorGrid         = "#e8e8ef"
	colorLane         = "#f4f4fa"
	colorLaneLabel    = "#9a9ab0"
	colorNodeTask     = "#ffffff"
	colorNodeNote     = "#fff8dc"
	colorNodeJournal  = "#eef6ff"
	colorNodeBorder   = "#c4c4d4"
	colorNodeSelected = "#4c7dff"
	colorNodeDone     = "#f2f8f2"
	colorText         = "#2b2b3a"
	colorTextMuted    = "#8a8a9e"
	colorEdge         = "#9aa4c0"
	colorLinkPreview  = "#4c7dff"
	colorTagChip      = "#e4e9f7"
	colorMarquee      = "#4c7dff"
)

const (
	laneHeight    = 160.0
	nodePad       = 10.0
	titleFontSize = 14.0
	bodyFontSize  = 12.0
	tagFontSize   = 10.0
	lineHeight    = 16.0
	tagChipHeight = 16.0
	tagChipPad    = 5.0
	edgeDotRadius = 3.0
)

// Render paints the whole scene: grid, flow lanes, edges, nodes,
// selection chrome and the in-progress gesture overlays.
func (e *Engine) Render(r Renderer) {
	cam := e.view.Camera()
	vp := e.viewport

	r.Clear()
	r.SetTransform(cam.Zoom, vp.Width/2-cam.X*cam.Zoom, vp.Height/2-cam.Y*cam.Zoom)

	topLeft := ScreenToWorld(cam, vp, 0, 0)
	bottomRight := ScreenToWorld(cam, vp, vp.Width, vp.Height)
	visible := Rect{topLeft.X, topLeft.Y, bottomRight.X - topLeft.X, bottomRight.Y - topLeft.Y}

	e.renderLanes(r, visible)
	e.renderGrid(r, visible)

	nodes := e.visibleNodes()
	byID := nodesByID(nodes)

	for _, edge := range e.visibleEdges(byID) {
		src := NodeRect(byID[edge.SourceNodeID])
		dst := NodeRect(byID[edge.TargetNodeID])
		p0, c0, c1, p1 := edgeCurve(src, dst)
		r.Bezier(p0, c0, c1, p1, Style{Stroke: colorEdge, LineWidth: 1.5 / cam.Zoom})
		r.Circle(p0.X, p0.Y, edgeDotRadius/cam.Zoom, Style{Fill: colorEdge})
		r.Circle(p1.X, p1.Y, edgeDotRadius/cam.Zoom, Style{Fill: colorEdge})
	}

	if e.gesture == gestureLinking {
		if src, ok := e.cache.Node(e.linkSourceID); ok {
			c := NodeRect(src).Center()
			r.Line(c.X, c.Y, e.linkPointer.X, e.linkPointer.Y, Style{
				Stroke: colorLinkPreview, LineWidth: 1.5 / cam.Zoom, Dash: []float64{6, 4},
			})
		}
	}
	if e.gesture == gestureEdgeEndpoint {
		var anchorID int64
		if e.epEnd == endSource {
			anchorID = e.epEdge.TargetNodeID
		} else {
			anchorID = e.epEdge.SourceNodeID
		}
		if n, ok := e.cache.Node(anchorID); ok {
			c := NodeRect(n).Center()
			r.Line(c.X, c.Y, e.epPointer.X, e.epPointer.Y, Style{
				Stroke: colorLinkPreview, LineWidth: 1.5 / cam.Zoom, Dash: []float64{6, 4},
			})
		}
	}

	for _, n := range nodes {
		e.renderNode(r, n, cam.Zoom)
	}

	sel := e.selectedNodes()
	if len(sel) >= 2 {
		bounds := selectionBounds(sel)
		r.Rect(bounds.X, bounds.Y, bounds.W, bounds.H, Style{
			Stroke: colorNodeSelected, LineWidth: 1 / cam.Zoom, Dash: []float64{4, 3},
		})
		hr := resizeHandleRadius / cam.Zoom
		for _, h := range allHandles {
			p := handlePoint(bounds, h)
			r.Circle(p.X, p.Y, hr, Style{Fill: "#ffffff", Stroke: colorNodeSelected, LineWidth: 1 / cam.Zoom})
		}
	}

	if e.gesture == gestureMarquee {
		m := Rect{
			e.marqueeStart.X, e.marqueeStart.Y,
			e.marqueeEnd.X - e.marqueeStart.X, e.marqueeEnd.Y - e.marqueeStart.Y,
		}.Normalized()
		r.Rect(m.X, m.Y, m.W, m.H, Style{
			Fill: "rgba(76,125,255,0.08)", Stroke: colorMarquee, LineWidth: 1 / cam.Zoom,
		})
	}
}

func (e *Engine) renderLanes(r Renderer, visible Rect) {
	for i, f := range e.cache.Flows() {
		laneFill := colorLane
		if f.Color != "" {
			laneFill = f.Color
		}
		if i%2 == 1 && f.Color == "" {
			laneFill = "#fafafc"
		}
		r.Rect(visible.X, f.YLane, visible.W, laneHeight, Style{Fill: laneFill})
		r.Text(f.Name, visible.X+nodePad, f.YLane+lineHeight, Style{
			Fill: colorLaneLabel, FontSize: bodyFontSize,
		})
	}
}

func (e *Engine) renderGrid(r Renderer, visible Rect) {
	startX := float64(int(visible.X/GridSize)-1) * GridSize
	startY := float64(int(visible.Y/GridSize)-1) * GridSize
	endX := visible.X + visible.W + GridSize
	endY := visible.Y + visible.H + GridSize
	style := Style{Stroke: colorGrid, LineWidth: 1 / e.view.Camera().Zoom}
	for x := startX; x <= endX; x += GridSize {
		r.Line(x, startY, x, endY, style)
	}
	for y := startY; y <= endY; y += GridSize {
		r.Line(visible.X-GridSize, y, endX, y, style)
	}
}

func (e *Engine) renderNode(r Renderer, n model.Node, zoom float64) {
	rect := NodeRect(n)

	fill := colorNodeNote
	switch n.Type {
	case model.NodeTypeTask:
		fill = colorNodeTask
		if n.EffectiveStatus() == model.TaskStatusDone {
			fill = colorNodeDone
		}
	case model.NodeTypeJournal:
		fill = colorNodeJournal
	}

	stroke := colorNodeBorder
	lineWidth := 1.0
	if e.view.IsSelected(n.ID) {
		stroke = colorNodeSelected
		lineWidth = 2.0
	}
	r.Rect(rect.X, rect.Y, rect.W, rect.H, Style{Fill: fill, Stroke: stroke, LineWidth: lineWidth / zoom})

	textX := rect.X + nodePad
	textY := rect.Y + nodePad + titleFontSize

	if n.Type == model.NodeTypeTask {
		cb := checkboxRect(rect)
		r.Rect(cb.X, cb.Y, cb.W, cb.H, Style{Stroke: colorNodeBorder, LineWidth: 1 / zoom, Fill: "#ffffff"})
		switch n.EffectiveStatus() {
		case model.TaskStatusDone:
			r.Line(cb.X+3, cb.Y+cb.H/2, cb.X+cb.W/2, cb.Y+cb.H-3, Style{Stroke: colorNodeSelected, LineWidth: 2 / zoom})
			r.Line(cb.X+cb.W/2, cb.Y+cb.H-3, cb.X+cb.W-3, cb.Y+3, Style{Stroke: colorNodeSelected, LineWidth: 2 / zoom})
		case model.TaskStatusInProgress:
			r.Rect(cb.X+4, cb.Y+4, cb.W-8, cb.H-8, Style{Fill: colorNodeSelected})
		}
		textX = cb.X + cb.W + tagChipPad
	}

	maxTextW := rect.X + rect.W - nodePad - textX
	title := ellipsize(r, n.Title, titleFontSize, maxTextW)
	r.Text(title, textX, textY, Style{Fill: colorText, FontSize: titleFontSize})
	textY += lineHeight

	if n.Type == model.NodeTypeJournal && n.JournaledAt != nil {
		stamp := n.JournaledAt.Format("Mon Jan 2 15:04")
		r.Text(stamp, rect.X+nodePad, textY, Style{Fill: colorTextMuted, FontSize: tagFontSize})
		textY += lineHeight
	}

	if n.Content != "" {
		bodyW := rect.W - 2*nodePad
		bottom := rect.Y + rect.H - nodePad - tagChipHeight
		for _, line := range wrapText(r, n.Content, bodyFontSize, bodyW) {
			if textY > bottom {
				break
			}
			r.Text(line, rect.X+nodePad, textY, Style{Fill: colorTextMuted, FontSize: bodyFontSize})
			textY += lineHeight
		}
	}

	if len(n.Tags) > 0 {
		chipX := rect.X + nodePad
		chipY := rect.Y + rect.H - nodePad - tagChipHeight
		limit := rect.X + rect.W - nodePad
		for _, tag := range n.Tags {
			label := fmt.Sprintf("#%s", tag)
			w := r.MeasureText(label, tagFontSize) + 2*tagChipPad
			if chipX+w > limit {
				break
			}
			r.Rect(chipX, chipY, w, tagChipHeight, Style{Fill: colorTagChip})
			r.Text(label, chipX+tagChipPad, chipY+tagChipHeight-tagChipPad, Style{Fill: colorText, FontSize: tagFontSize})
			chipX += w + tagChipPad
		}
	}

	lh := linkHandlePoint(rect)
	r.Circle(lh.X, lh.Y, linkHandleRadius/zoom, Style{Fill: "#ffffff", Stroke: colorEdge, LineWidth: 1 / zoom})
}

// ellipsize trims s to fit maxW, appending an ellipsis when truncated.
func ellipsize(r Renderer, s string, fontSize, maxW float64) string {
	if r.MeasureText(s, fontSize) <= maxW {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if r.MeasureText(candidate, fontSize) <= maxW {
			return candidate
		}
	}
	return "…"
}

// wrapText splits s into lines no wider than maxW, breaking on spaces.
func wrapText(r Renderer, s string, fontSize, maxW float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if r.MeasureText(candidate, fontSize) <= maxW {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}
