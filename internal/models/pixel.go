package models

import (
	"fmt"
	"image"
)

// Pixel is an integer (x, y) coordinate in original-image space
type Pixel struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (p Pixel) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Point converts the pixel to an image.Point for drawing
func (p Pixel) Point() image.Point {
	return image.Pt(p.X, p.Y)
}

// Add offsets the pixel by d
func (p Pixel) Add(d Pixel) Pixel {
	return Pixel{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub removes the offset d from the pixel
func (p Pixel) Sub(d Pixel) Pixel {
	return Pixel{X: p.X - d.X, Y: p.Y - d.Y}
}

// In reports whether the pixel lies inside a width x height grid
func (p Pixel) In(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Clamp pulls the pixel into a width x height grid
func (p Pixel) Clamp(width, height int) Pixel {
	return Pixel{X: clamp(p.X, 0, width-1), Y: clamp(p.Y, 0, height-1)}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
