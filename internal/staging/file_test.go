package staging

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"landmark-picker/internal/models"
)

func TestFileStoreAppendOrder(t *testing.T) {
	s := NewFileStore(t.TempDir(), "3")

	picks := []models.Pixel{{X: 4, Y: 5}, {X: 1, Y: 2}, {X: 9, Y: 0}}
	for _, p := range picks {
		if err := s.Append(p); err != nil {
			t.Fatalf("Append(%v) error = %v", p, err)
		}
	}

	got, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !slices.Equal(got, picks) {
		t.Errorf("ReadAll() = %v, want %v", got, picks)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first := NewFileStore(dir, "3")
	if err := first.Append(models.Pixel{X: 7, Y: 8}); err != nil {
		t.Fatal(err)
	}
	if err := first.SaveZoom(models.ZoomedAt(models.Pixel{X: 70, Y: 80})); err != nil {
		t.Fatal(err)
	}

	second := NewFileStore(dir, "3")
	got, err := second.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !slices.Equal(got, []models.Pixel{{X: 7, Y: 8}}) {
		t.Errorf("ReadAll() = %v", got)
	}

	z, err := second.LoadZoom()
	if err != nil {
		t.Fatalf("LoadZoom() error = %v", err)
	}
	if !z.Active || z.Anchor == nil || *z.Anchor != (models.Pixel{X: 70, Y: 80}) {
		t.Errorf("LoadZoom() = %+v", z)
	}
}

func TestFileStoreClearKeepsZoom(t *testing.T) {
	s := NewFileStore(t.TempDir(), "3")
	s.Append(models.Pixel{X: 1, Y: 1})
	s.SaveZoom(models.ZoomedAt(models.Pixel{X: 2, Y: 2}))

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := s.ReadAll(); len(got) != 0 {
		t.Errorf("ReadAll() after Clear = %v", got)
	}
	if z, _ := s.LoadZoom(); !z.Active {
		t.Error("Clear() dropped the zoom state")
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested"), "3")

	got, err := s.ReadAll()
	if err != nil || len(got) != 0 {
		t.Errorf("ReadAll() = %v, %v", got, err)
	}
	z, err := s.LoadZoom()
	if err != nil || z.Active {
		t.Errorf("LoadZoom() = %+v, %v", z, err)
	}
	if err := s.Remove(); err != nil {
		t.Errorf("Remove() on missing file error = %v", err)
	}
}

func TestFileStoreIgnoresOtherImage(t *testing.T) {
	dir := t.TempDir()
	NewFileStore(dir, "1").Append(models.Pixel{X: 1, Y: 1})

	got, err := NewFileStore(dir, "2").ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("picks leaked across images: %v", got)
	}
}

func TestFileStoreMalformedRecord(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "image_id: [unterminated"},
		{"anchor without flag", "image_id: \"3\"\nzoom:\n  active: false\n  anchor: {x: 1, y: 1}\n"},
		{"flag without anchor", "image_id: \"3\"\nzoom:\n  active: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := NewFileStore(dir, "3").ReadAll()
			if !errors.Is(err, models.ErrMalformedPersistedState) {
				t.Errorf("ReadAll() error = %v, want ErrMalformedPersistedState", err)
			}
		})
	}
}

func TestFileStoreRejectsInvalidZoom(t *testing.T) {
	s := NewFileStore(t.TempDir(), "3")
	if err := s.SaveZoom(models.ZoomState{Active: true}); err == nil {
		t.Error("SaveZoom() accepted an active zoom without anchor")
	}
}

func TestFileStoreRemove(t *testing.T) {
	s := NewFileStore(t.TempDir(), "3")
	s.Append(models.Pixel{X: 1, Y: 1})

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("staging record not written: %v", err)
	}
	if !strings.Contains(string(data), "image_id") {
		t.Errorf("unexpected staging document:\n%s", data)
	}

	if err := s.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(s.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("staging record still present: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	var s Store = NewMemoryStore()
	s.Append(models.Pixel{X: 1, Y: 2})
	s.Append(models.Pixel{X: 3, Y: 4})

	got, _ := s.ReadAll()
	got[0] = models.Pixel{}
	again, _ := s.ReadAll()
	if again[0] != (models.Pixel{X: 1, Y: 2}) {
		t.Error("ReadAll() exposes internal storage")
	}

	s.SaveZoom(models.ZoomedAt(models.Pixel{X: 5, Y: 5}))
	s.Remove()
	if got, _ := s.ReadAll(); len(got) != 0 {
		t.Errorf("ReadAll() after Remove = %v", got)
	}
	if z, _ := s.LoadZoom(); z.Active {
		t.Error("zoom survived Remove")
	}
}
