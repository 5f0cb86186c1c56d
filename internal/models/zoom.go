package models

import "image"

// DefaultZoomHalfSize is half the side of the square zoom crop
const DefaultZoomHalfSize = 50

// ZoomState tracks the magnified crop. Anchor is non-nil iff Active.
type ZoomState struct {
	Active bool   `yaml:"active"`
	Anchor *Pixel `yaml:"anchor,omitempty"`
}

// ZoomedAt returns an active zoom state anchored at p
func ZoomedAt(p Pixel) ZoomState {
	anchor := p
	return ZoomState{Active: true, Anchor: &anchor}
}

// Valid reports whether the anchor/active invariant holds
func (z ZoomState) Valid() bool {
	return z.Active == (z.Anchor != nil)
}

// Offset is the top-left corner of the crop in original-image space:
// anchor minus halfSize, clamped at zero on each axis.
func (z ZoomState) Offset(halfSize int) Pixel {
	if !z.Active || z.Anchor == nil {
		return Pixel{}
	}
	return Pixel{X: max(0, z.Anchor.X-halfSize), Y: max(0, z.Anchor.Y-halfSize)}
}

// Region is the crop rectangle centered at the anchor, clamped to the image bounds
func (z ZoomState) Region(halfSize, width, height int) image.Rectangle {
	if !z.Active || z.Anchor == nil {
		return image.Rectangle{}
	}
	a := *z.Anchor
	return image.Rect(
		max(0, a.X-halfSize), max(0, a.Y-halfSize),
		min(width, a.X+halfSize), min(height, a.Y+halfSize),
	)
}

// ToOriginal maps a coordinate clicked inside the crop back to original-image space
func (z ZoomState) ToOriginal(p Pixel, halfSize int) Pixel {
	return p.Add(z.Offset(halfSize))
}

// ToZoomed maps an original-image coordinate into crop space
func (z ZoomState) ToZoomed(p Pixel, halfSize int) Pixel {
	return p.Sub(z.Offset(halfSize))
}
