package records

import (
	"fmt"
	"strconv"
	"strings"

	"landmark-picker/internal/models"
)

const pairSeparator = "; "

// FormatPixels encodes picks as "(x, y); (x, y)"
func FormatPixels(pixels []models.Pixel) string {
	parts := make([]string, len(pixels))
	for i, p := range pixels {
		parts[i] = p.String()
	}
	return strings.Join(parts, pairSeparator)
}

// ParsePixels decodes the output of FormatPixels
func ParsePixels(s string) ([]models.Pixel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ";")
	pixels := make([]models.Pixel, 0, len(parts))
	for _, part := range parts {
		p, err := parsePixel(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pixels = append(pixels, p)
	}
	return pixels, nil
}

func parsePixel(s string) (models.Pixel, error) {
	inner, ok := strings.CutPrefix(s, "(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	if !ok {
		return models.Pixel{}, fmt.Errorf("coordinate %q: %w", s, models.ErrMalformedPersistedState)
	}

	xs, ys, ok := strings.Cut(inner, ",")
	if !ok {
		return models.Pixel{}, fmt.Errorf("coordinate %q: %w", s, models.ErrMalformedPersistedState)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return models.Pixel{}, fmt.Errorf("coordinate %q: %w", s, models.ErrMalformedPersistedState)
	}
	return models.Pixel{X: x, Y: y}, nil
}
