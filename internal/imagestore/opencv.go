package imagestore

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"landmark-picker/internal/logger"
	"landmark-picker/internal/models"
)

// OpenCVStore decodes images with OpenCV
type OpenCVStore struct {
	logger logger.Logger
}

func NewOpenCVStore(log logger.Logger) *OpenCVStore {
	return &OpenCVStore{logger: log}
}

func (s *OpenCVStore) Load(path string) (Buffer, error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, models.ErrInvalidImage)
	}

	// Deep images are re-read through OpenCV's 8-bit color conversion
	if !is8Bit(mat.Type()) {
		s.logger.Debug("ImageStore", "re-reading non 8-bit image as color", map[string]interface{}{
			"path": path,
			"type": int(mat.Type()),
		})
		mat.Close()
		mat = gocv.IMRead(path, gocv.IMReadColor)
		if mat.Empty() {
			mat.Close()
			return nil, fmt.Errorf("failed to decode %s: %w", path, models.ErrInvalidImage)
		}
	}

	buf, err := newMatBuffer(mat, path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ImageStore", "image loaded", map[string]interface{}{
		"path":     path,
		"width":    buf.Width(),
		"height":   buf.Height(),
		"channels": buf.Channels(),
	})
	return buf, nil
}

func (s *OpenCVStore) FromImage(img image.Image) (Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", models.ErrInvalidImage)
	}

	var (
		mat gocv.Mat
		err error
	)
	if gray, ok := img.(*image.Gray); ok {
		mat, err = gocv.ImageGrayToMatGray(gray)
	} else {
		mat, err = gocv.ImageToMatRGB(img)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %v: %w", err, models.ErrInvalidImage)
	}
	return newMatBuffer(mat, "in-memory image")
}

func is8Bit(t gocv.MatType) bool {
	switch t {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return true
	}
	return false
}

// matBuffer owns a BGR gocv.Mat
type matBuffer struct {
	mat gocv.Mat
}

// newMatBuffer takes ownership of mat and normalizes it to three channels
func newMatBuffer(mat gocv.Mat, source string) (*matBuffer, error) {
	if err := validateDimensions(mat.Cols(), mat.Rows(), source); err != nil {
		mat.Close()
		return nil, err
	}

	var code gocv.ColorConversionCode
	switch mat.Channels() {
	case 3:
		return &matBuffer{mat: mat}, nil
	case 1:
		code = gocv.ColorGrayToBGR
	case 4:
		code = gocv.ColorBGRAToBGR
	default:
		channels := mat.Channels()
		mat.Close()
		return nil, fmt.Errorf("%s has %d channels: %w", source, channels, models.ErrInvalidImage)
	}

	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, code)
	mat.Close()
	if bgr.Empty() {
		bgr.Close()
		return nil, fmt.Errorf("color conversion of %s failed: %w", source, models.ErrInvalidImage)
	}
	return &matBuffer{mat: bgr}, nil
}

func (b *matBuffer) Width() int    { return b.mat.Cols() }
func (b *matBuffer) Height() int   { return b.mat.Rows() }
func (b *matBuffer) Channels() int { return b.mat.Channels() }

func (b *matBuffer) Clone() (Buffer, error) {
	if b.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}
	return &matBuffer{mat: b.mat.Clone()}, nil
}

func (b *matBuffer) Crop(r image.Rectangle) (Buffer, error) {
	c, err := clip(r, b.Width(), b.Height())
	if err != nil {
		return nil, err
	}
	region := b.mat.Region(c)
	defer region.Close()
	return &matBuffer{mat: region.Clone()}, nil
}

func (b *matBuffer) DrawMarker(m Marker) {
	gocv.Circle(&b.mat, m.At, m.Radius, markerColor, -1)
	if m.Label != "" {
		gocv.PutText(&b.mat, m.Label, m.LabelAt, gocv.FontHersheySimplex, m.TextScale, markerColor, 2)
	}
}

func (b *matBuffer) Image() (image.Image, error) {
	return b.mat.ToImage()
}

func (b *matBuffer) Close() error {
	return b.mat.Close()
}
