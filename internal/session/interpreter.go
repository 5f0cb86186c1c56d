package session

import (
	"image"
	"slices"

	"landmark-picker/internal/models"
)

// State is an immutable snapshot of the session. Interpret never modifies the
// state it is given.
type State struct {
	Selection []models.Pixel
	Zoom      models.ZoomState
	Width     int
	Height    int
}

// Action is the single effect an event produces
type Action interface {
	action()
}

// PlotCursor draws a transient marker; nothing is persisted
type PlotCursor struct {
	At models.Pixel
}

// AppendPixel stages a pick in original-image space
type AppendPixel struct {
	At models.Pixel
}

// ClearSelection discards every staged pick
type ClearSelection struct{}

// Commit persists Picks as an Edge record
type Commit struct {
	Edge  models.EdgeKind
	Picks []models.Pixel
}

// RejectCommit reports a commit attempted with the wrong number of picks
type RejectCommit struct {
	Edge models.EdgeKind
	Have int
	Want int
}

// ZoomIn opens or refreshes the zoom surface on Region
type ZoomIn struct {
	Anchor models.Pixel
	Region image.Rectangle
}

// ZoomOut closes the zoom surface
type ZoomOut struct{}

// Ignore is produced for events with no effect
type Ignore struct{}

func (PlotCursor) action()     {}
func (AppendPixel) action()    {}
func (ClearSelection) action() {}
func (Commit) action()         {}
func (RejectCommit) action()   {}
func (ZoomIn) action()         {}
func (ZoomOut) action()        {}
func (Ignore) action()         {}

// Interpreter maps events onto state transitions
type Interpreter struct {
	RequiredPixels int
	ZoomHalfSize   int
}

func NewInterpreter(requiredPixels, zoomHalfSize int) *Interpreter {
	return &Interpreter{RequiredPixels: requiredPixels, ZoomHalfSize: zoomHalfSize}
}

// Interpret returns the state after ev and the action the caller must carry out.
// For a Commit the returned state is the reset state; callers adopt it only once
// the record has been written.
func (in *Interpreter) Interpret(st State, ev Event) (State, Action) {
	switch ev.Kind {
	case EventMove:
		return st, PlotCursor{At: in.toOriginal(st, ev)}

	case EventClick:
		return in.click(st, ev)

	case EventScroll:
		return in.scroll(st, ev)
	}
	return st, Ignore{}
}

func (in *Interpreter) click(st State, ev Event) (State, Action) {
	ctrl := ev.Modifiers.Has(ModCtrl)

	switch {
	case ev.Button == ButtonPrimary && ctrl:
		return in.commit(st, models.ChorScleraEdge)
	case ev.Button == ButtonSecondary && ctrl:
		return in.commit(st, models.RPEChorEdge)
	case ev.Button == ButtonMiddle && ctrl:
		return in.commit(st, models.FoveaPit)

	case ev.Button == ButtonSecondary:
		next := st
		next.Selection = nil
		return next, ClearSelection{}

	case ev.Button == ButtonPrimary:
		p := in.toOriginal(st, ev)
		if !p.In(st.Width, st.Height) {
			return st, Ignore{}
		}
		next := st
		next.Selection = append(slices.Clip(st.Selection), p)
		return next, AppendPixel{At: p}
	}
	return st, Ignore{}
}

func (in *Interpreter) commit(st State, kind models.EdgeKind) (State, Action) {
	if len(st.Selection) != in.RequiredPixels {
		return st, RejectCommit{Edge: kind, Have: len(st.Selection), Want: in.RequiredPixels}
	}
	next := st
	next.Selection = nil
	next.Zoom = models.ZoomState{}
	return next, Commit{Edge: kind, Picks: slices.Clone(st.Selection)}
}

func (in *Interpreter) scroll(st State, ev Event) (State, Action) {
	switch {
	case ev.Scroll > 0:
		anchor := in.toOriginal(st, ev).Clamp(st.Width, st.Height)
		next := st
		next.Zoom = models.ZoomedAt(anchor)
		return next, ZoomIn{
			Anchor: anchor,
			Region: next.Zoom.Region(in.ZoomHalfSize, st.Width, st.Height),
		}
	case ev.Scroll < 0:
		if !st.Zoom.Active {
			return st, Ignore{}
		}
		next := st
		next.Zoom = models.ZoomState{}
		return next, ZoomOut{}
	}
	return st, Ignore{}
}

// toOriginal translates an event position into original-image space. Only
// events from the zoom surface while zoomed are offset by the crop origin.
func (in *Interpreter) toOriginal(st State, ev Event) models.Pixel {
	if ev.Surface == SurfaceZoom && st.Zoom.Active {
		return st.Zoom.ToOriginal(ev.Pos, in.ZoomHalfSize)
	}
	return ev.Pos
}
