package session

import (
	"fmt"
	"strings"

	"landmark-picker/internal/models"
)

// EventKind is the raw event category reported by a display surface
type EventKind uint8

const (
	EventMove EventKind = iota + 1
	EventClick
	EventScroll
)

func (k EventKind) String() string {
	switch k {
	case EventMove:
		return "move"
	case EventClick:
		return "click"
	case EventScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Button is the pointer button of a click
type Button uint8

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	default:
		return "none"
	}
}

// Modifier is a set of keyboard modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if m contains mod
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "+")
}

// Surface names the window an event came from
type Surface uint8

const (
	SurfacePrimary Surface = iota
	SurfaceZoom
)

// Window names used with the display surface
const (
	PrimaryWindow = "original_image"
	ZoomWindow    = "zoomed"
)

func (s Surface) WindowName() string {
	if s == SurfaceZoom {
		return ZoomWindow
	}
	return PrimaryWindow
}

// Event is a single pointer or scroll event. Pos is in the coordinate space of
// the surface that produced it. Scroll is positive for forward scrolling and
// negative for backward scrolling.
type Event struct {
	Kind      EventKind
	Surface   Surface
	Pos       models.Pixel
	Button    Button
	Modifiers Modifier
	Scroll    int
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s at %s on %s mods=%s scroll=%d",
		e.Kind, e.Button, e.Pos, e.Surface.WindowName(), e.Modifiers, e.Scroll)
}

// Move, Click and ScrollAt build events for the primary surface.
func Move(x, y int) Event {
	return Event{Kind: EventMove, Pos: models.Pixel{X: x, Y: y}}
}

func Click(x, y int, b Button, mods Modifier) Event {
	return Event{Kind: EventClick, Pos: models.Pixel{X: x, Y: y}, Button: b, Modifiers: mods}
}

func ScrollAt(x, y, delta int) Event {
	return Event{Kind: EventScroll, Pos: models.Pixel{X: x, Y: y}, Scroll: delta}
}

// OnZoom returns a copy of the event as produced by the zoom surface
func (e Event) OnZoom() Event {
	e.Surface = SurfaceZoom
	return e
}
