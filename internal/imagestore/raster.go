package imagestore

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	// Decoders for formats common in retinal imaging exports
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"landmark-picker/internal/logger"
	"landmark-picker/internal/models"
)

// RasterStore decodes images in pure Go. It needs no OpenCV install and backs
// the tests.
type RasterStore struct {
	logger logger.Logger
}

func NewRasterStore(log logger.Logger) *RasterStore {
	return &RasterStore{logger: log}
}

func (s *RasterStore) Load(path string) (Buffer, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v: %w", path, err, models.ErrInvalidImage)
	}

	buf, err := newRasterBuffer(img, path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ImageStore", "image loaded", map[string]interface{}{
		"path":   path,
		"width":  buf.Width(),
		"height": buf.Height(),
	})
	return buf, nil
}

func (s *RasterStore) FromImage(img image.Image) (Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", models.ErrInvalidImage)
	}
	return newRasterBuffer(img, "in-memory image")
}

// rasterBuffer holds an opaque NRGBA image with its origin at (0, 0).
// Grayscale sources are expanded to color by imaging.Clone.
type rasterBuffer struct {
	img *image.NRGBA
}

func newRasterBuffer(img image.Image, source string) (*rasterBuffer, error) {
	b := img.Bounds()
	if err := validateDimensions(b.Dx(), b.Dy(), source); err != nil {
		return nil, err
	}
	return &rasterBuffer{img: imaging.Clone(img)}, nil
}

func (b *rasterBuffer) Width() int  { return b.img.Bounds().Dx() }
func (b *rasterBuffer) Height() int { return b.img.Bounds().Dy() }

// Channels is always three; the alpha plane is kept opaque.
func (b *rasterBuffer) Channels() int { return 3 }

func (b *rasterBuffer) Clone() (Buffer, error) {
	return &rasterBuffer{img: imaging.Clone(b.img)}, nil
}

func (b *rasterBuffer) Crop(r image.Rectangle) (Buffer, error) {
	c, err := clip(r, b.Width(), b.Height())
	if err != nil {
		return nil, err
	}
	return &rasterBuffer{img: imaging.Crop(b.img, c)}, nil
}

func (b *rasterBuffer) DrawMarker(m Marker) {
	bounds := b.img.Bounds()
	r := m.Radius
	for y := m.At.Y - r; y <= m.At.Y+r; y++ {
		for x := m.At.X - r; x <= m.At.X+r; x++ {
			dx, dy := x-m.At.X, y-m.At.Y
			if dx*dx+dy*dy > r*r {
				continue
			}
			if image.Pt(x, y).In(bounds) {
				b.img.Set(x, y, markerColor)
			}
		}
	}

	if m.Label == "" {
		return
	}
	d := &font.Drawer{
		Dst:  b.img,
		Src:  image.NewUniform(markerColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(m.LabelAt.X, m.LabelAt.Y),
	}
	d.DrawString(m.Label)
}

func (b *rasterBuffer) Image() (image.Image, error) {
	out := image.NewNRGBA(b.img.Bounds())
	draw.Draw(out, out.Bounds(), b.img, b.img.Bounds().Min, draw.Src)
	return out, nil
}

func (b *rasterBuffer) Close() error {
	b.img = nil
	return nil
}
