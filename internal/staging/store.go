// Package staging holds the picks selected during the current annotation pass.
//
// The store is append-only between clears. FileStore persists every mutation
// so an interrupted session can resume where it stopped.
package staging

import (
	"sync"

	"landmark-picker/internal/models"
)

// Store is the Coordinate Store used by the session
type Store interface {
	Append(p models.Pixel) error
	ReadAll() ([]models.Pixel, error)
	Clear() error

	// SaveZoom and LoadZoom keep the zoom state next to the picks
	SaveZoom(z models.ZoomState) error
	LoadZoom() (models.ZoomState, error)

	// Remove deletes any durable trace of the store
	Remove() error
}

// MemoryStore is a Store without persistence
type MemoryStore struct {
	mu     sync.Mutex
	pixels []models.Pixel
	zoom   models.ZoomState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(p models.Pixel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixels = append(s.pixels, p)
	return nil
}

func (s *MemoryStore) ReadAll() ([]models.Pixel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Pixel, len(s.pixels))
	copy(out, s.pixels)
	return out, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixels = nil
	return nil
}

func (s *MemoryStore) SaveZoom(z models.ZoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = z
	return nil
}

func (s *MemoryStore) LoadZoom() (models.ZoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom, nil
}

func (s *MemoryStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixels = nil
	s.zoom = models.ZoomState{}
	return nil
}
