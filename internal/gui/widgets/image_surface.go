package widgets

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"

	"landmark-picker/internal/models"
	"landmark-picker/internal/session"
)

// ImageSurface renders a pixel buffer stretched over the widget and reports
// pointer and scroll events in buffer pixel coordinates.
type ImageSurface struct {
	widget.BaseWidget

	surface session.Surface
	raster  *canvas.Image
	// logical is the size of the buffer the events refer to, before magnification
	logical image.Point
	onEvent func(session.Event)
}

func NewImageSurface(surface session.Surface, onEvent func(session.Event)) *ImageSurface {
	raster := canvas.NewImageFromImage(nil)
	raster.FillMode = canvas.ImageFillStretch
	raster.ScaleMode = canvas.ImageScalePixels

	s := &ImageSurface{
		surface: surface,
		raster:  raster,
		onEvent: onEvent,
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *ImageSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

// SetImage replaces the displayed image. A magnify factor above one enlarges the
// image with nearest-neighbour sampling so single pixels stay sharp.
func (s *ImageSurface) SetImage(img image.Image, magnify int) {
	b := img.Bounds()
	s.logical = image.Pt(b.Dx(), b.Dy())
	if magnify > 1 {
		img = imaging.Resize(img, b.Dx()*magnify, b.Dy()*magnify, imaging.NearestNeighbor)
	}
	s.raster.Image = img
	s.raster.Refresh()
}

// MouseIn implements desktop.Hoverable
func (s *ImageSurface) MouseIn(_ *desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable
func (s *ImageSurface) MouseOut() {}

// MouseMoved implements desktop.Hoverable
func (s *ImageSurface) MouseMoved(ev *desktop.MouseEvent) {
	p, ok := s.toPixel(ev.Position)
	if !ok {
		return
	}
	s.emit(session.Event{Kind: session.EventMove, Pos: p, Modifiers: modifiers(ev.Modifier)})
}

// MouseDown implements desktop.Mouseable
func (s *ImageSurface) MouseDown(ev *desktop.MouseEvent) {
	p, ok := s.toPixel(ev.Position)
	if !ok {
		return
	}
	s.emit(session.Event{
		Kind:      session.EventClick,
		Pos:       p,
		Button:    button(ev.Button),
		Modifiers: modifiers(ev.Modifier),
	})
}

// MouseUp implements desktop.Mouseable
func (s *ImageSurface) MouseUp(_ *desktop.MouseEvent) {}

// Scrolled implements fyne.Scrollable. Wheel up is a forward scroll.
func (s *ImageSurface) Scrolled(ev *fyne.ScrollEvent) {
	p, ok := s.toPixel(ev.Position)
	if !ok {
		return
	}
	delta := 0
	if ev.Scrolled.DY > 0 {
		delta = 1
	} else if ev.Scrolled.DY < 0 {
		delta = -1
	}
	if delta == 0 {
		return
	}
	s.emit(session.Event{Kind: session.EventScroll, Pos: p, Scroll: delta})
}

func (s *ImageSurface) emit(ev session.Event) {
	if s.onEvent == nil {
		return
	}
	ev.Surface = s.surface
	s.onEvent(ev)
}

// toPixel converts a widget position into buffer coordinates
func (s *ImageSurface) toPixel(pos fyne.Position) (models.Pixel, bool) {
	size := s.Size()
	if s.logical.X == 0 || s.logical.Y == 0 || size.Width <= 0 || size.Height <= 0 {
		return models.Pixel{}, false
	}
	if pos.X < 0 || pos.Y < 0 || pos.X > size.Width || pos.Y > size.Height {
		return models.Pixel{}, false
	}

	x := int(pos.X * float32(s.logical.X) / size.Width)
	y := int(pos.Y * float32(s.logical.Y) / size.Height)
	return models.Pixel{X: x, Y: y}.Clamp(s.logical.X, s.logical.Y), true
}

func button(b desktop.MouseButton) session.Button {
	switch b {
	case desktop.MouseButtonPrimary:
		return session.ButtonPrimary
	case desktop.MouseButtonSecondary:
		return session.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return session.ButtonMiddle
	default:
		return session.ButtonNone
	}
}

func modifiers(m fyne.KeyModifier) session.Modifier {
	mods := session.ModNone
	if m&fyne.KeyModifierControl != 0 {
		mods |= session.ModCtrl
	}
	if m&fyne.KeyModifierShift != 0 {
		mods |= session.ModShift
	}
	if m&fyne.KeyModifierAlt != 0 {
		mods |= session.ModAlt
	}
	return mods
}
