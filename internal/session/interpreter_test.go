package session

import (
	"image"
	"slices"
	"testing"

	"landmark-picker/internal/models"
)

func newTestInterpreter() *Interpreter {
	return NewInterpreter(4, models.DefaultZoomHalfSize)
}

func emptyState() State {
	return State{Width: 1000, Height: 800}
}

// selectAll feeds plain primary clicks through the interpreter
func selectAll(t *testing.T, in *Interpreter, st State, picks ...models.Pixel) State {
	t.Helper()
	for _, p := range picks {
		var act Action
		st, act = in.Interpret(st, Click(p.X, p.Y, ButtonPrimary, ModNone))
		if _, ok := act.(AppendPixel); !ok {
			t.Fatalf("click at %v produced %T, want AppendPixel", p, act)
		}
	}
	return st
}

func TestPrimaryClickAppendsInOrder(t *testing.T) {
	in := newTestInterpreter()
	st := selectAll(t, in, emptyState(), models.Pixel{X: 10, Y: 10}, models.Pixel{X: 20, Y: 10})

	want := []models.Pixel{{X: 10, Y: 10}, {X: 20, Y: 10}}
	if !slices.Equal(st.Selection, want) {
		t.Errorf("Selection = %v, want %v", st.Selection, want)
	}
}

func TestInterpretDoesNotMutateInput(t *testing.T) {
	in := newTestInterpreter()
	base := selectAll(t, in, emptyState(), models.Pixel{X: 1, Y: 1})
	base.Selection = slices.Grow(base.Selection, 8)

	a, _ := in.Interpret(base, Click(2, 2, ButtonPrimary, ModNone))
	b, _ := in.Interpret(base, Click(3, 3, ButtonPrimary, ModNone))

	if len(base.Selection) != 1 {
		t.Fatalf("input state changed: %v", base.Selection)
	}
	if a.Selection[1] != (models.Pixel{X: 2, Y: 2}) || b.Selection[1] != (models.Pixel{X: 3, Y: 3}) {
		t.Errorf("derived states share storage: a=%v b=%v", a.Selection, b.Selection)
	}
}

func TestCommitRejectedForWrongCount(t *testing.T) {
	in := newTestInterpreter()
	gestures := []struct {
		name   string
		button Button
		edge   models.EdgeKind
	}{
		{"ChorSclera", ButtonPrimary, models.ChorScleraEdge},
		{"RPEChor", ButtonSecondary, models.RPEChorEdge},
		{"fovea", ButtonMiddle, models.FoveaPit},
	}

	for _, g := range gestures {
		for _, n := range []int{0, 1, 2, 3, 5, 6} {
			st := emptyState()
			for i := 0; i < n; i++ {
				st, _ = in.Interpret(st, Click(i, i, ButtonPrimary, ModNone))
			}
			if len(st.Selection) != n {
				t.Fatalf("setup: %d picks, want %d", len(st.Selection), n)
			}

			next, act := in.Interpret(st, Click(0, 0, g.button, ModCtrl))
			reject, ok := act.(RejectCommit)
			if !ok {
				t.Fatalf("%s with %d picks produced %T, want RejectCommit", g.name, n, act)
			}
			if reject.Edge != g.edge || reject.Have != n || reject.Want != 4 {
				t.Errorf("%s: unexpected reject %+v", g.name, reject)
			}
			if !slices.Equal(next.Selection, st.Selection) {
				t.Errorf("%s with %d picks changed selection to %v", g.name, n, next.Selection)
			}
		}
	}
}

func TestCommitGestures(t *testing.T) {
	picks := []models.Pixel{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 10, Y: 20}, {X: 20, Y: 20}}

	tests := []struct {
		button Button
		want   models.EdgeKind
	}{
		{ButtonPrimary, models.ChorScleraEdge},
		{ButtonSecondary, models.RPEChorEdge},
		{ButtonMiddle, models.FoveaPit},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			in := newTestInterpreter()
			st := selectAll(t, in, emptyState(), picks...)
			st, _ = in.Interpret(st, ScrollAt(300, 300, 1))

			next, act := in.Interpret(st, Click(0, 0, tt.button, ModCtrl))
			c, ok := act.(Commit)
			if !ok {
				t.Fatalf("got %T, want Commit", act)
			}
			if c.Edge != tt.want {
				t.Errorf("Edge = %v, want %v", c.Edge, tt.want)
			}
			if !slices.Equal(c.Picks, picks) {
				t.Errorf("Picks = %v, want %v", c.Picks, picks)
			}
			if len(next.Selection) != 0 {
				t.Errorf("selection not reset: %v", next.Selection)
			}
			if next.Zoom.Active || next.Zoom.Anchor != nil {
				t.Errorf("zoom not reset: %+v", next.Zoom)
			}
		})
	}
}

func TestCommitPartitionsLeftAndRight(t *testing.T) {
	in := newTestInterpreter()
	st := selectAll(t, in, emptyState(),
		models.Pixel{X: 10, Y: 10}, models.Pixel{X: 20, Y: 10},
		models.Pixel{X: 10, Y: 20}, models.Pixel{X: 20, Y: 20})

	_, act := in.Interpret(st, Click(5, 5, ButtonPrimary, ModCtrl))
	c := act.(Commit)

	rec := models.NewRecord(c.Edge, "1", "Donors", c.Picks)
	if rec.Edge.String() != "ChorSclera" {
		t.Errorf("edge = %s, want ChorSclera", rec.Edge)
	}
	if want := []models.Pixel{{X: 10, Y: 10}, {X: 10, Y: 20}}; !slices.Equal(rec.Left, want) {
		t.Errorf("Left = %v, want %v", rec.Left, want)
	}
	if want := []models.Pixel{{X: 20, Y: 10}, {X: 20, Y: 20}}; !slices.Equal(rec.Right, want) {
		t.Errorf("Right = %v, want %v", rec.Right, want)
	}
	if len(rec.Left) != 2 || len(rec.Right) != 2 {
		t.Errorf("each half should hold required/2 picks")
	}
}

func TestSecondaryClickClearsTwice(t *testing.T) {
	in := newTestInterpreter()
	st := selectAll(t, in, emptyState(), models.Pixel{X: 1, Y: 1}, models.Pixel{X: 2, Y: 2})

	for i := 0; i < 2; i++ {
		var act Action
		st, act = in.Interpret(st, Click(0, 0, ButtonSecondary, ModNone))
		if _, ok := act.(ClearSelection); !ok {
			t.Fatalf("clear %d produced %T", i, act)
		}
		if len(st.Selection) != 0 {
			t.Fatalf("clear %d left %v", i, st.Selection)
		}
	}
}

func TestScrollForwardZooms(t *testing.T) {
	in := newTestInterpreter()
	st, act := in.Interpret(emptyState(), ScrollAt(300, 300, 1))

	zoom, ok := act.(ZoomIn)
	if !ok {
		t.Fatalf("got %T, want ZoomIn", act)
	}
	if want := image.Rect(250, 250, 350, 350); zoom.Region != want {
		t.Errorf("Region = %v, want %v", zoom.Region, want)
	}
	if !st.Zoom.Active || st.Zoom.Anchor == nil || *st.Zoom.Anchor != (models.Pixel{X: 300, Y: 300}) {
		t.Errorf("unexpected zoom state %+v", st.Zoom)
	}

	st, act = in.Interpret(st, Click(10, 10, ButtonPrimary, ModNone).OnZoom())
	appended, ok := act.(AppendPixel)
	if !ok {
		t.Fatalf("got %T, want AppendPixel", act)
	}
	if want := (models.Pixel{X: 260, Y: 260}); appended.At != want || st.Selection[0] != want {
		t.Errorf("zoomed click stored %v, want %v", appended.At, want)
	}
}

func TestPrimarySurfaceClickIgnoresZoomOffset(t *testing.T) {
	in := newTestInterpreter()
	st, _ := in.Interpret(emptyState(), ScrollAt(300, 300, 1))

	_, act := in.Interpret(st, Click(10, 10, ButtonPrimary, ModNone))
	if got := act.(AppendPixel).At; got != (models.Pixel{X: 10, Y: 10}) {
		t.Errorf("primary click while zoomed stored %v", got)
	}
}

func TestScrollBackward(t *testing.T) {
	in := newTestInterpreter()

	st, act := in.Interpret(emptyState(), ScrollAt(5, 5, -1))
	if _, ok := act.(Ignore); !ok {
		t.Errorf("backward scroll while not zoomed produced %T", act)
	}

	st, _ = in.Interpret(st, ScrollAt(5, 5, 1))
	st, act = in.Interpret(st, ScrollAt(5, 5, -1))
	if _, ok := act.(ZoomOut); !ok {
		t.Errorf("backward scroll while zoomed produced %T", act)
	}
	if st.Zoom.Active || !st.Zoom.Valid() {
		t.Errorf("zoom not cleared: %+v", st.Zoom)
	}
}

func TestZoomedMoveTranslatesCursor(t *testing.T) {
	in := newTestInterpreter()
	st, _ := in.Interpret(emptyState(), ScrollAt(30, 400, 1))

	_, act := in.Interpret(st, Move(5, 5).OnZoom())
	plot, ok := act.(PlotCursor)
	if !ok {
		t.Fatalf("got %T, want PlotCursor", act)
	}
	if want := (models.Pixel{X: 5, Y: 355}); plot.At != want {
		t.Errorf("cursor at %v, want %v", plot.At, want)
	}
}

func TestOutOfBoundsClickIgnored(t *testing.T) {
	in := newTestInterpreter()
	st, act := in.Interpret(emptyState(), Click(1000, 10, ButtonPrimary, ModNone))
	if _, ok := act.(Ignore); !ok {
		t.Errorf("got %T, want Ignore", act)
	}
	if len(st.Selection) != 0 {
		t.Errorf("selection = %v", st.Selection)
	}
}
