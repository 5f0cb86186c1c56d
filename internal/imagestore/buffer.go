// Package imagestore loads images into pixel buffers the session can crop,
// annotate and hand to a display surface.
//
// Two backends are provided: OpenCVStore on top of gocv, and RasterStore in
// pure Go on top of imaging and x/image. Both normalize grayscale input to a
// three-channel buffer before returning it.
package imagestore

import (
	"fmt"
	"image"
	"image/color"

	"landmark-picker/internal/models"
)

// Buffer is a three-channel pixel grid owned by one session
type Buffer interface {
	Width() int
	Height() int
	Channels() int

	Clone() (Buffer, error)
	// Crop copies the part of the buffer inside r, clipped to the bounds
	Crop(r image.Rectangle) (Buffer, error)
	DrawMarker(m Marker)

	// Image returns a view suitable for rendering
	Image() (image.Image, error)
	Close() error
}

// Store decodes image sources into buffers
type Store interface {
	Load(path string) (Buffer, error)
	FromImage(img image.Image) (Buffer, error)
}

// Marker is a filled circle with an optional text label
type Marker struct {
	At      image.Point
	Radius  int
	Label   string
	LabelAt image.Point
	// TextScale is relative to the backend's base font size
	TextScale float64
}

var markerColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

const (
	pickRadius = 3
	// labelShift moves labels left when they would run past the right edge
	labelShift = 175
)

// PickMarker is the labelled marker drawn for a pick on the full image
func PickMarker(p models.Pixel, width int) Marker {
	at := p.Point()
	labelAt := at
	if p.X >= width-labelShift {
		labelAt.X = p.X - labelShift
	}
	return Marker{
		At:        at,
		Radius:    pickRadius,
		Label:     p.String(),
		LabelAt:   labelAt,
		TextScale: 1,
	}
}

// ZoomMarker is the unlabelled single-pixel marker drawn inside the zoom crop
func ZoomMarker(p models.Pixel) Marker {
	return Marker{At: p.Point(), Radius: 0, TextScale: 0.25}
}

func validateDimensions(width, height int, source string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%s has dimensions %dx%d: %w", source, width, height, models.ErrInvalidImage)
	}
	if width > 32768 || height > 32768 {
		return fmt.Errorf("%s dimensions %dx%d exceed maximum size: %w", source, width, height, models.ErrInvalidImage)
	}
	return nil
}

// clip limits r to a width x height grid and rejects empty results
func clip(r image.Rectangle, width, height int) (image.Rectangle, error) {
	c := r.Intersect(image.Rect(0, 0, width, height))
	if c.Empty() {
		return image.Rectangle{}, fmt.Errorf("crop %v outside %dx%d image", r, width, height)
	}
	return c, nil
}
