package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"landmark-picker/internal/models"
)

// FileName is the staging record written inside the save directory
const FileName = "staging.yaml"

// record is the on-disk staging document
type record struct {
	ImageID string           `yaml:"image_id"`
	Pixels  [][2]int         `yaml:"pixels"`
	Zoom    models.ZoomState `yaml:"zoom"`
}

// FileStore persists picks and zoom state to a YAML document. Every call opens,
// rewrites and closes the file before returning.
type FileStore struct {
	mu      sync.Mutex
	path    string
	imageID string
}

// NewFileStore returns a store rooted in dir for the given image
func NewFileStore(dir, imageID string) *FileStore {
	return &FileStore{
		path:    filepath.Join(dir, FileName),
		imageID: imageID,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(p models.Pixel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return err
	}
	rec.Pixels = append(rec.Pixels, [2]int{p.X, p.Y})
	return s.write(rec)
}

func (s *FileStore) ReadAll() ([]models.Pixel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return nil, err
	}
	pixels := make([]models.Pixel, len(rec.Pixels))
	for i, xy := range rec.Pixels {
		pixels[i] = models.Pixel{X: xy[0], Y: xy[1]}
	}
	return pixels, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return err
	}
	rec.Pixels = nil
	return s.write(rec)
}

func (s *FileStore) SaveZoom(z models.ZoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !z.Valid() {
		return fmt.Errorf("zoom state active=%t with anchor=%v", z.Active, z.Anchor)
	}
	rec, err := s.read()
	if err != nil {
		return err
	}
	rec.Zoom = z
	return s.write(rec)
}

func (s *FileStore) LoadZoom() (models.ZoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return models.ZoomState{}, err
	}
	return rec.Zoom, nil
}

func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove staging record: %w", err)
	}
	return nil
}

// read loads the staging document. A missing file is an empty record; a record
// left by a different image is treated as empty so picks never cross images.
func (s *FileStore) read() (record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return record{ImageID: s.imageID}, nil
	}
	if err != nil {
		return record{}, fmt.Errorf("failed to read staging record: %w", err)
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("staging record %s: %v: %w", s.path, err, models.ErrMalformedPersistedState)
	}
	if !rec.Zoom.Valid() {
		return record{}, fmt.Errorf("staging record %s: zoom anchor without active flag: %w",
			s.path, models.ErrMalformedPersistedState)
	}
	if rec.ImageID != s.imageID {
		return record{ImageID: s.imageID}, nil
	}
	return rec, nil
}

func (s *FileStore) write(rec record) error {
	rec.ImageID = s.imageID

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode staging record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write staging record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace staging record: %w", err)
	}
	return nil
}
