package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowweek/flowweek/client/model"
)

// recordingRenderer captures the display list for assertions.
type recordingRenderer struct {
	cleared   bool
	scale     float64
	offsetX   float64
	offsetY   float64
	rects     []Rect
	rectStyle []Style
	beziers   int
	circles   int
	lines     int
	texts     []string
}

func (r *recordingRenderer) Clear() { r.cleared = true }

func (r *recordingRenderer) SetTransform(scale, offsetX, offsetY float64) {
	r.scale, r.offsetX, r.offsetY = scale, offsetX, offsetY
}

func (r *recordingRenderer) Rect(x, y, w, h float64, style Style) {
	r.rects = append(r.rects, Rect{x, y, w, h})
	r.rectStyle = append(r.rectStyle, style)
}

func (r *recordingRenderer) Line(x1, y1, x2, y2 float64, style Style) { r.lines++ }

func (r *recordingRenderer) Bezier(p0, c0, c1, p1 Point, style Style) { r.beziers++ }

func (r *recordingRenderer) Circle(x, y, rad float64, style Style) { r.circles++ }

func (r *recordingRenderer) Text(s string, x, y float64, style Style) {
	r.texts = append(r.texts, s)
}

func (r *recordingRenderer) MeasureText(s string, fontSize float64) float64 {
	return float64(len([]rune(s))) * fontSize * 0.6
}

func (r *recordingRenderer) hasRect(want Rect) bool {
	for _, got := range r.rects {
		if got == want {
			return true
		}
	}
	return false
}

func (r *recordingRenderer) hasText(want string) bool {
	for _, got := range r.texts {
		if got == want {
			return true
		}
	}
	return false
}

func TestRenderSceneBasics(t *testing.T) {
	n1 := seedNode(1, 0, 0, 200, 100)
	n1.Title = "first"
	n2 := seedNode(2, 400, 0, 200, 100)
	n2.Title = "second"
	f := newEngineFixture(t, []model.Node{n1, n2},
		[]model.Edge{{ID: 9, BoardID: 1, SourceNodeID: 1, TargetNodeID: 2, CreatedAt: testBase, UpdatedAt: testBase}})

	rec := &recordingRenderer{}
	f.engine.Render(rec)

	assert.True(t, rec.cleared)
	assert.Equal(t, 1.0, rec.scale)
	assert.Equal(t, 500.0, rec.offsetX, "camera at origin centers the viewport")
	assert.Equal(t, 400.0, rec.offsetY)

	assert.True(t, rec.hasRect(Rect{0, 0, 200, 100}), "node body drawn at world bounds")
	assert.True(t, rec.hasRect(Rect{400, 0, 200, 100}))
	assert.Equal(t, 1, rec.beziers, "one edge curve")
	assert.True(t, rec.hasText("first"))
	assert.True(t, rec.hasText("second"))
	assert.Greater(t, rec.lines, 0, "background grid present")
}

func TestRenderSkipsEdgesWithHiddenEndpoint(t *testing.T) {
	n1 := seedNode(1, 0, 0, 200, 100)
	n1.Title = "visible"
	n2 := seedNode(2, 400, 0, 200, 100)
	n2.Title = "filtered out"
	f := newEngineFixture(t, []model.Node{n1, n2},
		[]model.Edge{{ID: 9, BoardID: 1, SourceNodeID: 1, TargetNodeID: 2, CreatedAt: testBase, UpdatedAt: testBase}})
	f.view.SetSearchTerm("visible")

	rec := &recordingRenderer{}
	f.engine.Render(rec)

	assert.Equal(t, 0, rec.beziers, "edge hidden with its endpoint")
	assert.True(t, rec.hasText("visible"))
	assert.False(t, rec.hasText("filtered out"))
}

func TestRenderSelectionChrome(t *testing.T) {
	f := newEngineFixture(t, []model.Node{
		seedNode(1, 0, 0, 100, 100),
		seedNode(2, 300, 0, 100, 100),
	}, nil)
	f.view.SelectNodes([]int64{1, 2}, false)

	rec := &recordingRenderer{}
	f.engine.Render(rec)

	assert.True(t, rec.hasRect(Rect{0, 0, 400, 100}), "multi-select bounds")
	// two link handles plus eight resize handles
	assert.Equal(t, 10, rec.circles)
}

func TestRenderTaskGlyphsAndTags(t *testing.T) {
	n := seedTask(1, 0, 0, 200, 120)
	n.Title = "ship it"
	st := model.TaskStatusDone
	n.Status = &st
	n.Tags = []string{"work"}
	f := newEngineFixture(t, []model.Node{n}, nil)

	rec := &recordingRenderer{}
	f.engine.Render(rec)

	assert.True(t, rec.hasRect(Rect{10, 10, 16, 16}), "checkbox glyph")
	assert.True(t, rec.hasText("#work"))
}

func TestRenderMarqueeOverlay(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	f.engine.PointerDown(100, 100, ButtonPrimary, Modifiers{})
	f.engine.PointerMove(300, 250)

	rec := &recordingRenderer{}
	f.engine.Render(rec)

	w1 := f.engine.world(100, 100)
	w2 := f.engine.world(300, 250)
	require.True(t, rec.hasRect(Rect{w1.X, w1.Y, w2.X - w1.X, w2.Y - w1.Y}))
}
