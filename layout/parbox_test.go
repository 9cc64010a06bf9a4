package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeBox 是测试用盒子：度量固定，记录收到的提示，渲染时把收到的参考原点报告给 recorder。
type fakeBox struct {
	name    string
	w, a, d float64
	x, y    float64
	hints   [][2]float64
}

func (f *fakeBox) Kind() NodeKind { return KindBox }
func (f *fakeBox) Layout(widthHint, heightHint float64) {
	f.hints = append(f.hints, [2]float64{widthHint, heightHint})
}
func (f *fakeBox) Place(x, y float64) { f.x, f.y = x, y }
func (f *fakeBox) Width() float64 { return f.w }
func (f *fakeBox) Ascent() float64 { return f.a }
func (f *fakeBox) Descent() float64 { return f.d }
func (f *fakeBox) VOff() float64 { return 0 }
func (f *fakeBox) Position() (x, y float64) {
	return f.x, f.y
}
func (f *fakeBox) Render(r Renderer, xref, yref float64) {
	r.DrawText(f.name, xref, yref, TextStyle{})
}

type drawCall struct {
	Op      string
	Content string
	X, Y    float64
	W, H    float64
}

// recorder 实现 Renderer，按顺序记录所有绘制调用。
type recorder struct {
	calls []drawCall
}

func (r *recorder) DrawText(content string, x, y float64, style TextStyle) {
	r.calls = append(r.calls, drawCall{Op: "text", Content: content, X: x, Y: y})
}

func (r *recorder) DrawRect(x, y, width, height float64, style RectStyle) {
	r.calls = append(r.calls, drawCall{Op: "rect", X: x, Y: y, W: width, H: height})
}

func (r *recorder) DrawImage(src string, x, y, width, height float64) {
	r.calls = append(r.calls, drawCall{Op: "image", Content: src, X: x, Y: y, W: width, H: height})
}

type placement struct {
	Name string
	X, Y float64
}

func placements(nodes []Node) []placement {
	var out []placement
	for _, n := range nodes {
		if f, ok := n.(*fakeBox); ok {
			out = append(out, placement{Name: f.name, X: f.x, Y: f.y})
		}
	}
	return out
}

type parState struct {
	Width, Ascent, Descent, Shift float64
	Lines                         int
}

func stateOf(p *ParBox) parState {
	return parState{
		Width:   p.Width(),
		Ascent:  p.Ascent(),
		Descent: p.Descent(),
		Shift:   p.MultilineShift(),
		Lines:   p.Lines(),
	}
}

func TestParBoxZeroBeforeLayout(t *testing.T) {
	p := NewParBox([]Node{&fakeBox{name: "a", w: 10, a: 3, d: 1}}, 5, 1)
	if got := stateOf(p); got != (parState{}) {
		t.Fatalf("metrics before layout must be zero, got %+v", got)
	}
	if p.VOff() != 0 {
		t.Fatalf("default voff must be 0, got %g", p.VOff())
	}
}

func TestParBoxWidthEchoesHint(t *testing.T) {
	for _, hint := range []float64{0, 7.5, 40, 1000, -3} {
		p := NewParBox([]Node{
			&fakeBox{name: "a", w: 10, a: 3, d: 1},
			&fakeBox{name: "b", w: 12, a: 4, d: 2},
		}, 5, 1)
		p.Layout(hint, 100)
		if p.Width() != hint {
			t.Fatalf("width hint %g: Width() = %g", hint, p.Width())
		}
	}
}

func TestParBoxNoWrap(t *testing.T) {
	a := &fakeBox{name: "a", w: 10, a: 3, d: 1}
	b := &fakeBox{name: "b", w: 20, a: 6, d: 0.5}
	c := &fakeBox{name: "c", w: 5, a: 2, d: 2}
	p := NewParBox([]Node{a, b, c}, 5, 2)
	// 10 + 2 + 20 + 2 + 5 = 39 <= 40
	p.Layout(40, 100)

	want := parState{Width: 40, Ascent: 6, Descent: 2}
	if diff := cmp.Diff(want, stateOf(p)); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	wantPlaced := []placement{{"a", 0, 0}, {"b", 12, 0}, {"c", 34, 0}}
	if diff := cmp.Diff(wantPlaced, placements(p.Nodes())); diff != "" {
		t.Fatalf("placements mismatch (-want +got):\n%s", diff)
	}
}

func TestParBoxExactFitDoesNotBreak(t *testing.T) {
	p := NewParBox([]Node{
		&fakeBox{name: "a", w: 10},
		&fakeBox{name: "b", w: 10},
	}, 5, 0)
	p.Layout(20, 0)
	if p.Lines() != 0 {
		t.Fatalf("content exactly as wide as the hint must stay on one line, got %d breaks", p.Lines())
	}
}

func TestParBoxForcedWrap(t *testing.T) {
	first := &fakeBox{name: "first", w: 10, a: 3, d: 1}
	second := &fakeBox{name: "second", w: 10, a: 7, d: 0.5}
	p := NewParBox([]Node{first, second}, 5, 0)
	p.Layout(10, 100)

	want := parState{Width: 10, Ascent: 3 + 5, Descent: 0.5, Shift: 5, Lines: 1}
	if diff := cmp.Diff(want, stateOf(p)); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	wantPlaced := []placement{{"first", 0, 0}, {"second", 0, -5}}
	if diff := cmp.Diff(wantPlaced, placements(p.Nodes())); diff != "" {
		t.Fatalf("placements mismatch (-want +got):\n%s", diff)
	}
}

func TestParBoxOversizedFirstChildLeavesEmptyFirstLine(t *testing.T) {
	wide := &fakeBox{name: "wide", w: 30, a: 4, d: 1}
	p := NewParBox([]Node{wide}, 6, 1)
	p.Layout(10, 100)

	// 第一行为空，ascent 只剩多行偏移
	want := parState{Width: 10, Ascent: 6, Descent: 1, Shift: 6, Lines: 1}
	if diff := cmp.Diff(want, stateOf(p)); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if wide.x != 0 || wide.y != -6 {
		t.Fatalf("oversized child placed at (%g, %g), want (0, -6)", wide.x, wide.y)
	}
}

func TestParBoxTrailingSpacingCountsTowardsBreak(t *testing.T) {
	// 8 + 4(间距) + 8 = 20 > 19：尾随间距不会被裁掉
	p := NewParBox([]Node{
		&fakeBox{name: "a", w: 8},
		&fakeBox{name: "b", w: 8},
	}, 5, 4)
	p.Layout(19, 0)
	if p.Lines() != 1 {
		t.Fatalf("expected one break, got %d", p.Lines())
	}
}

func TestParBoxMetricsFromFirstAndLastLine(t *testing.T) {
	nodes := []Node{
		&fakeBox{name: "l0a", w: 6, a: 2, d: 9},
		&fakeBox{name: "l0b", w: 6, a: 3, d: 1},
		&fakeBox{name: "l1a", w: 6, a: 50, d: 4},
		&fakeBox{name: "l1b", w: 6, a: 1, d: 1},
		&fakeBox{name: "l2a", w: 6, a: 70, d: 0.25},
	}
	p := NewParBox(nodes, 4, 0)
	p.Layout(12, 100)

	// 三行：ascent 只看第一行，descent 只看最后一行
	want := parState{Width: 12, Ascent: 3 + 2*4, Descent: 0.25, Shift: 8, Lines: 2}
	if diff := cmp.Diff(want, stateOf(p)); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	wantPlaced := []placement{
		{"l0a", 0, 0}, {"l0b", 6, 0},
		{"l1a", 0, -4}, {"l1b", 6, -4},
		{"l2a", 0, -8},
	}
	if diff := cmp.Diff(wantPlaced, placements(p.Nodes())); diff != "" {
		t.Fatalf("placements mismatch (-want +got):\n%s", diff)
	}
}

func TestParBoxChildrenSeeParagraphHints(t *testing.T) {
	a := &fakeBox{name: "a", w: 30}
	b := &fakeBox{name: "b", w: 30}
	p := NewParBox([]Node{a, Glue{}, b}, 5, 0)
	p.Layout(40, 77)

	for _, f := range []*fakeBox{a, b} {
		want := [][2]float64{{40, 77}}
		if diff := cmp.Diff(want, f.hints); diff != "" {
			t.Fatalf("%s hints mismatch (-want +got):\n%s", f.name, diff)
		}
	}
}

func TestParBoxIdempotentLayout(t *testing.T) {
	nodes := []Node{
		&fakeBox{name: "a", w: 9, a: 3, d: 1},
		&fakeBox{name: "b", w: 9, a: 4, d: 2},
		&fakeBox{name: "c", w: 9, a: 5, d: 3},
	}
	p := NewParBox(nodes, 5, 1)
	p.Layout(20, 50)
	firstState, firstPlaced := stateOf(p), placements(p.Nodes())

	p.Layout(20, 50)
	if diff := cmp.Diff(firstState, stateOf(p)); diff != "" {
		t.Fatalf("second layout changed state (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstPlaced, placements(p.Nodes())); diff != "" {
		t.Fatalf("second layout changed placements (-first +second):\n%s", diff)
	}

	// 先换一个更窄的宽度再换回来，结果应与第一次完全一致，不残留旧状态
	p.Layout(9, 50)
	if p.Lines() != 2 {
		t.Fatalf("narrow layout: expected 2 breaks, got %d", p.Lines())
	}
	p.Layout(20, 50)
	if diff := cmp.Diff(firstState, stateOf(p)); diff != "" {
		t.Fatalf("relayout did not fully recompute (-want +got):\n%s", diff)
	}
}

func TestParBoxGlueIsInert(t *testing.T) {
	build := func(withGlue bool) *ParBox {
		nodes := []Node{
			&fakeBox{name: "a", w: 10, a: 3, d: 1},
			&fakeBox{name: "b", w: 10, a: 4, d: 2},
			&fakeBox{name: "c", w: 10, a: 5, d: 0.5},
		}
		if withGlue {
			nodes = []Node{Glue{}, nodes[0], Glue{}, nodes[1], nodes[2], Glue{}}
		}
		return NewParBox(nodes, 5, 1)
	}
	plain, glued := build(false), build(true)
	plain.Layout(22, 100)
	glued.Layout(22, 100)

	if diff := cmp.Diff(stateOf(plain), stateOf(glued)); diff != "" {
		t.Fatalf("glue changed metrics (-plain +glued):\n%s", diff)
	}
	if diff := cmp.Diff(placements(plain.Nodes()), placements(glued.Nodes())); diff != "" {
		t.Fatalf("glue changed placements (-plain +glued):\n%s", diff)
	}
}

func TestParBoxEmpty(t *testing.T) {
	for _, hint := range []float64{0, 50, -1} {
		p := NewParBox(nil, 5, 1)
		p.Layout(hint, 10)
		want := parState{Width: hint}
		if diff := cmp.Diff(want, stateOf(p)); diff != "" {
			t.Fatalf("hint %g: state mismatch (-want +got):\n%s", hint, diff)
		}
	}
}

func TestParBoxRenderDelegation(t *testing.T) {
	nodes := []Node{
		&fakeBox{name: "a", w: 10, a: 3, d: 1},
		Glue{},
		&fakeBox{name: "b", w: 10, a: 3, d: 1},
		&fakeBox{name: "c", w: 10, a: 3, d: 1},
	}
	p := NewParBox(nodes, 5, 0)
	p.Layout(10, 100)
	p.Place(3, 4)
	p.SetVOff(1.5)

	if p.MultilineShift() != 10 {
		t.Fatalf("expected shift 10 for three lines, got %g", p.MultilineShift())
	}

	rec := &recorder{}
	p.Render(rec, 100, 200)

	// 每个子节点收到同一个参考原点，与所在行无关
	origin := func(name string) drawCall {
		return drawCall{Op: "text", Content: name, X: 100 + 3, Y: 200 + 1.5 + 4 + 10}
	}
	want := []drawCall{origin("a"), origin("b"), origin("c")}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Fatalf("render calls mismatch (-want +got):\n%s", diff)
	}
}

func TestParBoxPlaceIsIndependentOfLayout(t *testing.T) {
	p := NewParBox([]Node{&fakeBox{name: "a", w: 5, a: 2, d: 1}}, 5, 0)
	p.Place(7, 8)
	p.Layout(50, 50)
	if x, y := p.Anchor(); x != 7 || y != 8 {
		t.Fatalf("layout must not touch the anchor, got (%g, %g)", x, y)
	}
}

func TestNewParBoxOwnsNodes(t *testing.T) {
	nodes := []Node{&fakeBox{name: "a", w: 5}}
	p := NewParBox(nodes, 5, 0)
	nodes[0] = &fakeBox{name: "replaced", w: 500}
	p.Layout(10, 10)
	if p.Lines() != 0 {
		t.Fatalf("paragraph must not see changes to the caller's slice")
	}
	if got := p.Nodes()[0].(*fakeBox).name; got != "a" {
		t.Fatalf("node 0 = %q, want a", got)
	}
}

func TestNestedParBoxActsAsBox(t *testing.T) {
	inner := NewParBox([]Node{
		&fakeBox{name: "i1", w: 10, a: 2, d: 1},
		&fakeBox{name: "i2", w: 10, a: 2, d: 1},
	}, 3, 0)
	outer := NewParBox([]Node{&fakeBox{name: "o", w: 5, a: 4, d: 0}, inner}, 6, 0)
	outer.Layout(15, 100)

	// inner 的宽度回显提示 15，放不下第二行，因此 outer 断行
	if outer.Lines() != 1 {
		t.Fatalf("outer breaks = %d, want 1", outer.Lines())
	}
	if inner.Lines() != 1 || inner.Ascent() != 2+3 {
		t.Fatalf("inner lines=%d ascent=%g", inner.Lines(), inner.Ascent())
	}
	if x, y := inner.Anchor(); x != 0 || y != -6 {
		t.Fatalf("inner anchor = (%g, %g), want (0, -6)", x, y)
	}
	if outer.Descent() != 1 {
		t.Fatalf("outer descent = %g, want inner's 1", outer.Descent())
	}
}
