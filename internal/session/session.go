// Package session implements the interactive annotation session: a pure event
// interpreter and a driver that applies its actions to the coordinate store,
// the record writer and the display surface.
package session

import (
	"errors"
	"fmt"
	"image"

	"landmark-picker/internal/imagestore"
	"landmark-picker/internal/logger"
	"landmark-picker/internal/models"
	"landmark-picker/internal/records"
	"landmark-picker/internal/staging"
)

// Display is the surface the session renders to
type Display interface {
	Open(name string, size image.Point) error
	Move(name string, x, y int) error
	Render(name string, img image.Image) error
	Close(name string) error
	// SetStatus shows a message to the operator
	SetStatus(message string) error
}

// RecordWriter persists committed records
type RecordWriter interface {
	Commit(rec models.Record) (records.Row, error)
}

// Options configures a session
type Options struct {
	RequiredPixels int
	ZoomHalfSize   int
	// Scale is the long side of the windows in screen pixels
	Scale int
	// WindowOffset is the x position of the primary window
	WindowOffset int
	// Resume keeps picks staged by an earlier, interrupted pass
	Resume bool
}

// Session owns the image and every piece of mutable annotation state
type Session struct {
	opts    Options
	interp  *Interpreter
	display Display
	store   staging.Store
	writer  RecordWriter
	logger  logger.Logger

	image   imagestore.Buffer
	imageID string
	group   string
	state   State
	status  string
}

func New(opts Options, display Display, store staging.Store, writer RecordWriter, log logger.Logger) *Session {
	return &Session{
		opts:    opts,
		interp:  NewInterpreter(opts.RequiredPixels, opts.ZoomHalfSize),
		display: display,
		store:   store,
		writer:  writer,
		logger:  log,
	}
}

// Load starts a pass over buf. The session takes ownership of buf and releases
// any previously loaded image. Staged picks are cleared unless Resume is set.
func (s *Session) Load(buf imagestore.Buffer, imageID, group string) error {
	if buf == nil {
		return fmt.Errorf("no image: %w", models.ErrInvalidImage)
	}
	if buf.Channels() != 3 {
		return fmt.Errorf("image has %d channels: %w", buf.Channels(), models.ErrInvalidImage)
	}

	if s.state.Zoom.Active {
		if err := s.display.Close(ZoomWindow); err != nil {
			return err
		}
	}
	if s.image != nil {
		s.image.Close()
	}

	s.image = buf
	s.imageID = imageID
	s.group = group
	s.state = State{Width: buf.Width(), Height: buf.Height()}

	if err := s.restoreStaging(); err != nil {
		return err
	}

	size := s.windowSize()
	if err := s.display.Open(PrimaryWindow, size); err != nil {
		return err
	}
	if err := s.display.Move(PrimaryWindow, s.opts.WindowOffset, 0); err != nil {
		return err
	}
	if err := s.setStatus(""); err != nil {
		return err
	}

	s.logger.Info("Session", "annotation pass started", map[string]interface{}{
		"image_id": imageID,
		"group":    group,
		"width":    s.state.Width,
		"height":   s.state.Height,
		"resumed":  len(s.state.Selection),
	})

	if s.state.Zoom.Active {
		if err := s.openZoom(); err != nil {
			return err
		}
	}
	return s.renderPrimary(nil)
}

func (s *Session) restoreStaging() error {
	if !s.opts.Resume {
		if err := s.store.Clear(); err != nil {
			return err
		}
		return s.store.SaveZoom(models.ZoomState{})
	}

	picks, err := s.store.ReadAll()
	if err != nil {
		return err
	}
	zoom, err := s.store.LoadZoom()
	if err != nil {
		return err
	}

	for _, p := range picks {
		if !p.In(s.state.Width, s.state.Height) {
			return fmt.Errorf("staged pick %s outside %dx%d image: %w",
				p, s.state.Width, s.state.Height, models.ErrMalformedPersistedState)
		}
	}
	if zoom.Active && !zoom.Anchor.In(s.state.Width, s.state.Height) {
		zoom = models.ZoomState{}
	}

	s.state.Selection = picks
	s.state.Zoom = zoom
	return nil
}

// Handle interprets one event. ErrUserInputIncomplete is never returned; any
// other error means the session can no longer continue safely.
func (s *Session) Handle(ev Event) error {
	if s.image == nil {
		return errors.New("no image loaded")
	}

	next, act := s.interp.Interpret(s.state, ev)

	switch a := act.(type) {
	case PlotCursor:
		return s.renderPrimary(&a.At)

	case AppendPixel:
		if err := s.store.Append(a.At); err != nil {
			return err
		}
		s.state = next
		s.logger.Debug("Session", "pixel selected", map[string]interface{}{
			"x":     a.At.X,
			"y":     a.At.Y,
			"count": len(next.Selection),
		})
		return s.renderAll()

	case ClearSelection:
		if err := s.store.Clear(); err != nil {
			return err
		}
		s.state = next
		s.logger.Info("Session", "selection cleared", nil)
		return s.renderAll()

	case RejectCommit:
		err := fmt.Errorf("selected %d pixels for %s, need exactly %d: %w",
			a.Have, a.Edge, a.Want, models.ErrUserInputIncomplete)
		s.logger.Warning("Session", err.Error(), map[string]interface{}{
			"edge": a.Edge.String(),
		})
		return s.setStatus(fmt.Sprintf("Selected less or more than %d pixels. Try again.", a.Want))

	case Commit:
		return s.commit(a, next)

	case ZoomIn:
		if err := s.store.SaveZoom(next.Zoom); err != nil {
			return err
		}
		s.state = next
		return s.openZoom()

	case ZoomOut:
		if err := s.store.SaveZoom(next.Zoom); err != nil {
			return err
		}
		s.state = next
		return s.display.Close(ZoomWindow)
	}

	return nil
}

func (s *Session) commit(c Commit, next State) error {
	rec := models.NewRecord(c.Edge, s.imageID, s.group, c.Picks)
	if _, err := s.writer.Commit(rec); err != nil {
		return fmt.Errorf("commit %s for image %s: %w", c.Edge, s.imageID, err)
	}

	wasZoomed := s.state.Zoom.Active
	if err := s.store.Clear(); err != nil {
		return err
	}
	if err := s.store.SaveZoom(next.Zoom); err != nil {
		return err
	}
	s.state = next
	if err := s.setStatus(fmt.Sprintf("Saved %s.", c.Edge.Description())); err != nil {
		return err
	}

	s.logger.Info("Session", "landmarks committed", map[string]interface{}{
		"edge":     c.Edge.String(),
		"image_id": s.imageID,
		"picks":    len(c.Picks),
	})

	if wasZoomed {
		if err := s.display.Close(ZoomWindow); err != nil {
			return err
		}
	}
	return s.renderPrimary(nil)
}

// Close ends the pass: the staging record is removed, then every window is
// closed and the image released.
func (s *Session) Close() error {
	err := s.store.Remove()
	return errors.Join(err, s.Release())
}

// Release closes every window and releases the image but keeps the staging
// record, so a later session can resume the interrupted pass.
func (s *Session) Release() error {
	var errs []error
	if s.state.Zoom.Active {
		if err := s.display.Close(ZoomWindow); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.display.Close(PrimaryWindow); err != nil {
		errs = append(errs, err)
	}
	if s.image != nil {
		if err := s.image.Close(); err != nil {
			errs = append(errs, err)
		}
		s.image = nil
	}
	s.state = State{}

	s.logger.Info("Session", "session released", map[string]interface{}{
		"image_id": s.imageID,
	})
	return errors.Join(errs...)
}

// State returns a snapshot of the current state
func (s *Session) State() State {
	snap := s.state
	snap.Selection = append([]models.Pixel(nil), s.state.Selection...)
	return snap
}

func (s *Session) setStatus(message string) error {
	s.status = message
	return s.display.SetStatus(message)
}

// Status is the last message meant for the operator
func (s *Session) Status() string {
	return s.status
}

// windowSize scales the image so its long side equals Scale
func (s *Session) windowSize() image.Point {
	w, h := s.state.Width, s.state.Height
	long := max(w, h)
	return image.Pt(s.opts.Scale*w/long, s.opts.Scale*h/long)
}

func (s *Session) openZoom() error {
	size := s.windowSize()
	if err := s.display.Open(ZoomWindow, size); err != nil {
		return err
	}
	if err := s.display.Move(ZoomWindow, s.opts.WindowOffset+size.X, 0); err != nil {
		return err
	}
	return s.renderZoom()
}

func (s *Session) renderAll() error {
	if err := s.renderPrimary(nil); err != nil {
		return err
	}
	if s.state.Zoom.Active {
		return s.renderZoom()
	}
	return nil
}

// renderPrimary draws every staged pick and, when cursor is set, a transient
// marker at the cursor.
func (s *Session) renderPrimary(cursor *models.Pixel) error {
	frame, err := s.image.Clone()
	if err != nil {
		return err
	}
	defer frame.Close()

	for _, p := range s.state.Selection {
		frame.DrawMarker(imagestore.PickMarker(p, s.state.Width))
	}
	if cursor != nil && cursor.In(s.state.Width, s.state.Height) {
		frame.DrawMarker(imagestore.PickMarker(*cursor, s.state.Width))
	}

	img, err := frame.Image()
	if err != nil {
		return err
	}
	return s.display.Render(PrimaryWindow, img)
}

func (s *Session) renderZoom() error {
	region := s.state.Zoom.Region(s.opts.ZoomHalfSize, s.state.Width, s.state.Height)
	crop, err := s.image.Crop(region)
	if err != nil {
		return err
	}
	defer crop.Close()

	for _, p := range s.state.Selection {
		if p.Point().In(region) {
			crop.DrawMarker(imagestore.ZoomMarker(s.state.Zoom.ToZoomed(p, s.opts.ZoomHalfSize)))
		}
	}

	img, err := crop.Image()
	if err != nil {
		return err
	}
	return s.display.Render(ZoomWindow, img)
}
