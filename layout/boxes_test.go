package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTextBoxRenderAddsPlacementAndVOff(t *testing.T) {
	tb := NewTextBox("word", TextStyle{Size: 4}, TextMetrics{Width: 8, Ascent: 3, Descent: 1})
	tb.Layout(1, 1)
	if tb.Width() != 8 || tb.Ascent() != 3 || tb.Descent() != 1 {
		t.Fatalf("text metrics must not depend on hints: %g/%g/%g", tb.Width(), tb.Ascent(), tb.Descent())
	}
	tb.Place(2, -5)
	tb.SetVOff(1)

	rec := &recorder{}
	tb.Render(rec, 10, 20)
	want := []drawCall{{Op: "text", Content: "word", X: 12, Y: 16}}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRectBoxSizePolicies(t *testing.T) {
	tests := []struct {
		name         string
		w, h         SizeSpec
		wantW, wantH float64
	}{
		{"fixed", Fixed(4), Fixed(3), 4, 3},
		{"relative", Relative(0.25), Relative(0.5), 25, 10},
		{"expand", SizeSpec{Policy: SizeExpand}, Fixed(2), 100, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRectBox(tc.w, tc.h, RectStyle{})
			r.Layout(100, 20)
			if r.Width() != tc.wantW || r.Ascent() != tc.wantH || r.Descent() != 0 {
				t.Fatalf("got w=%g a=%g d=%g, want w=%g a=%g d=0", r.Width(), r.Ascent(), r.Descent(), tc.wantW, tc.wantH)
			}
		})
	}
}

func TestShapeBoxesRender(t *testing.T) {
	rect := NewRectBox(Fixed(4), Fixed(2), RectStyle{})
	img := NewImageBox("logo.png", Fixed(6), Fixed(3))
	p := NewParBox([]Node{rect, img}, 5, 1)
	p.Layout(100, 50)
	p.Place(10, 10)

	rec := &recorder{}
	p.Render(rec, 0, 0)
	want := []drawCall{
		{Op: "rect", X: 10, Y: 10, W: 4, H: 2},
		{Op: "image", Content: "logo.png", X: 15, Y: 10, W: 6, H: 3},
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
	if p.Ascent() != 3 || p.Descent() != 0 {
		t.Fatalf("paragraph of shapes: ascent=%g descent=%g", p.Ascent(), p.Descent())
	}
}

func TestNodeKindString(t *testing.T) {
	if KindBox.String() != "box" || KindGlue.String() != "glue" || NodeKind(9).String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}
