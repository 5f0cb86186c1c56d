// Package records turns completed selections into rows of the persistent
// output table.
//
// Boundary edges arrive in two commits. An RPEChor commit is staged in a
// per-image pending file; the following ChorSclera commit for the same image
// merges with it into a single output row and removes the pending file.
// Fovea pit commits are written straight away.
package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"landmark-picker/internal/logger"
	"landmark-picker/internal/models"
)

// Column names shared by the pending file and the output table
const (
	ColEdge           = "Edge"
	ColImageID        = "Img_Num"
	ColGroup          = "Patient_Group"
	ColLeft           = "LHS"
	ColRight          = "RHS"
	ColRPEChorLeft    = "RPEChor_LHS"
	ColRPEChorRight   = "RPEChor_RHS"
	ColChorScleraLeft = "ChorSclera_LHS"
	ColChorScleraRgt  = "ChorSclera_RHS"
	ColFoveaCoord     = "Fovea_Coord"
)

var (
	pendingColumns  = []string{ColEdge, ColImageID, ColGroup, ColLeft, ColRight}
	boundaryColumns = []string{ColImageID, ColGroup, ColRPEChorLeft, ColRPEChorRight, ColChorScleraLeft, ColChorScleraRgt}
	foveaColumns    = []string{ColGroup, ColImageID, ColFoveaCoord}
)

// Writer persists committed records under a save directory
type Writer struct {
	dir        string
	outputName string
	logger     logger.Logger
}

func NewWriter(dir, outputName string, log logger.Logger) *Writer {
	return &Writer{dir: dir, outputName: outputName, logger: log}
}

// OutputPath is the persistent table file
func (w *Writer) OutputPath() string {
	return filepath.Join(w.dir, w.outputName+".csv")
}

// PendingPath is the transient RPEChor file for an image
func (w *Writer) PendingPath(imageID string) string {
	return filepath.Join(w.dir, fmt.Sprintf("RPEChor_ImgNum%s.csv", imageID))
}

// HasPending reports whether an RPEChor edge is staged for imageID
func (w *Writer) HasPending(imageID string) bool {
	_, err := os.Stat(w.PendingPath(imageID))
	return err == nil
}

// Commit persists rec according to its edge kind and returns the row that was
// staged or appended.
func (w *Writer) Commit(rec models.Record) (Row, error) {
	switch rec.Edge {
	case models.RPEChorEdge:
		return w.stagePending(rec)
	case models.ChorScleraEdge:
		return w.mergePending(rec)
	case models.FoveaPit:
		row := Row{
			ColGroup:      rec.Group,
			ColImageID:    rec.ImageID,
			ColFoveaCoord: FormatPixels(rec.Left),
		}
		if err := w.appendOutput(foveaColumns, row); err != nil {
			return nil, err
		}
		return row, nil
	default:
		return nil, fmt.Errorf("unsupported edge kind %d", rec.Edge)
	}
}

func (w *Writer) stagePending(rec models.Record) (Row, error) {
	path := w.PendingPath(rec.ImageID)
	if w.HasPending(rec.ImageID) {
		w.logger.Warning("RecordWriter", "replacing pending RPEChor edge", map[string]interface{}{
			"image_id": rec.ImageID,
			"path":     path,
		})
	}

	row := Row{
		ColEdge:    rec.Edge.String(),
		ColImageID: rec.ImageID,
		ColGroup:   rec.Group,
		ColLeft:    FormatPixels(rec.Left),
		ColRight:   FormatPixels(rec.Right),
	}
	table := &Table{Columns: pendingColumns, Rows: []Row{row}}
	if err := table.WriteFile(path); err != nil {
		return nil, err
	}

	w.logger.Info("RecordWriter", "RPEChor edge staged", map[string]interface{}{
		"image_id": rec.ImageID,
		"path":     path,
	})
	return row, nil
}

func (w *Writer) mergePending(rec models.Record) (Row, error) {
	path := w.PendingPath(rec.ImageID)
	pending, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, fmt.Errorf("image %s: %w", rec.ImageID, models.ErrMissingPendingEdge)
	}

	prev, err := pendingRecord(pending, path)
	if err != nil {
		return nil, err
	}
	if prev.ImageID != rec.ImageID {
		return nil, fmt.Errorf("pending file %s holds image %q, want %q: %w",
			path, prev.ImageID, rec.ImageID, models.ErrMalformedPersistedState)
	}

	group := rec.Group
	if group == "" {
		group = prev.Group
	}
	row := Row{
		ColImageID:        rec.ImageID,
		ColGroup:          group,
		ColRPEChorLeft:    FormatPixels(prev.Left),
		ColRPEChorRight:   FormatPixels(prev.Right),
		ColChorScleraLeft: FormatPixels(rec.Left),
		ColChorScleraRgt:  FormatPixels(rec.Right),
	}
	if err := w.appendOutput(boundaryColumns, row); err != nil {
		return nil, err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove pending edge: %w", err)
	}

	w.logger.Info("RecordWriter", "boundary edges merged", map[string]interface{}{
		"image_id": rec.ImageID,
		"output":   w.OutputPath(),
	})
	return row, nil
}

// pendingRecord decodes the single RPEChor row of a pending file
func pendingRecord(t *Table, path string) (models.Record, error) {
	if len(t.Rows) != 1 {
		return models.Record{}, fmt.Errorf("pending file %s has %d rows: %w",
			path, len(t.Rows), models.ErrMalformedPersistedState)
	}
	row := t.Rows[0]

	kind, err := models.ParseEdgeKind(row[ColEdge])
	if err != nil {
		return models.Record{}, fmt.Errorf("pending file %s: %w", path, err)
	}
	if kind != models.RPEChorEdge {
		return models.Record{}, fmt.Errorf("pending file %s holds %s: %w",
			path, kind, models.ErrMalformedPersistedState)
	}

	left, err := ParsePixels(row[ColLeft])
	if err != nil {
		return models.Record{}, fmt.Errorf("pending file %s: %w", path, err)
	}
	right, err := ParsePixels(row[ColRight])
	if err != nil {
		return models.Record{}, fmt.Errorf("pending file %s: %w", path, err)
	}

	return models.Record{
		Edge:    kind,
		ImageID: row[ColImageID],
		Group:   row[ColGroup],
		Left:    left,
		Right:   right,
	}, nil
}

// appendOutput reads the output table, adds row and rewrites the file in full
func (w *Writer) appendOutput(columns []string, row Row) error {
	path := w.OutputPath()
	table, err := ReadTable(path)
	if err != nil {
		return err
	}
	if table == nil {
		table = &Table{}
	}
	table.Append(columns, row)

	if err := table.WriteFile(path); err != nil {
		return err
	}

	w.logger.Debug("RecordWriter", "output table written", map[string]interface{}{
		"path": path,
		"rows": len(table.Rows),
	})
	return nil
}
