package gui

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"

	"landmark-picker/internal/gui/widgets"
	"landmark-picker/internal/logger"
	"landmark-picker/internal/session"
)

type namedWindow struct {
	window  fyne.Window
	surface *widgets.ImageSurface
	size    image.Point
}

// Display manages the named fyne windows a session draws into
type Display struct {
	app     fyne.App
	logger  logger.Logger
	mu      sync.Mutex
	windows map[string]*namedWindow

	onEvent     func(session.Event)
	onTerminate func()
}

func NewDisplay(app fyne.App, log logger.Logger) *Display {
	return &Display{
		app:     app,
		logger:  log,
		windows: make(map[string]*namedWindow),
	}
}

// SetEventHandler installs the receiver for pointer and scroll events
func (d *Display) SetEventHandler(handler func(session.Event)) {
	d.onEvent = handler
}

// SetTerminateHandler installs the callback for the terminating key (Enter)
// and for closing the primary window.
func (d *Display) SetTerminateHandler(handler func()) {
	d.onTerminate = handler
}

func (d *Display) Open(name string, size image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if nw, ok := d.windows[name]; ok {
		nw.size = size
		nw.window.Resize(fyne.NewSize(float32(size.X), float32(size.Y)))
		return nil
	}

	surface := session.SurfacePrimary
	if name == session.ZoomWindow {
		surface = session.SurfaceZoom
	}

	w := d.app.NewWindow(name)
	s := widgets.NewImageSurface(surface, d.dispatch)
	nw := &namedWindow{window: w, surface: s, size: size}
	w.SetContent(s)
	w.SetPadded(false)
	w.Resize(fyne.NewSize(float32(size.X), float32(size.Y)))
	w.Canvas().SetOnTypedKey(d.typedKey)
	if surface == session.SurfacePrimary {
		w.SetCloseIntercept(d.terminate)
	} else {
		w.SetOnClosed(func() { d.closedByUser(name, nw) })
	}
	w.Show()

	d.windows[name] = nw
	d.logger.Debug("Display", "window opened", map[string]interface{}{
		"name":   name,
		"width":  size.X,
		"height": size.Y,
	})
	return nil
}

// Move records the requested placement. fyne leaves window positions to the
// window manager, so the request is only logged.
func (d *Display) Move(name string, x, y int) error {
	d.logger.Debug("Display", "window placement requested", map[string]interface{}{
		"name": name,
		"x":    x,
		"y":    y,
	})
	return nil
}

func (d *Display) Render(name string, img image.Image) error {
	d.mu.Lock()
	nw, ok := d.windows[name]
	d.mu.Unlock()
	if !ok {
		return nil
	}

	magnify := 1
	if b := img.Bounds(); b.Dx() > 0 && nw.size.X > b.Dx() {
		magnify = nw.size.X / b.Dx()
	}
	nw.surface.SetImage(img, magnify)
	return nil
}

func (d *Display) Close(name string) error {
	d.mu.Lock()
	nw, ok := d.windows[name]
	delete(d.windows, name)
	d.mu.Unlock()

	if !ok {
		return nil
	}
	nw.window.Close()
	d.logger.Debug("Display", "window closed", map[string]interface{}{"name": name})
	return nil
}

// closedByUser forgets a zoom window closed from its title bar and reports it to
// the session as a backward scroll, which leaves zoom.
func (d *Display) closedByUser(name string, nw *namedWindow) {
	d.mu.Lock()
	current, ok := d.windows[name]
	if ok && current == nw {
		delete(d.windows, name)
	}
	d.mu.Unlock()

	// Close removes the entry before closing, so only a user close gets here
	if !ok || current != nw {
		return
	}
	d.logger.Debug("Display", "window closed by user", map[string]interface{}{"name": name})
	d.dispatch(session.Event{Kind: session.EventScroll, Surface: session.SurfaceZoom, Scroll: -1})
}

// SetStatus shows message in the primary window title
func (d *Display) SetStatus(message string) error {
	d.mu.Lock()
	nw, ok := d.windows[session.PrimaryWindow]
	d.mu.Unlock()
	if !ok {
		return nil
	}

	title := session.PrimaryWindow
	if message != "" {
		title += ": " + message
	}
	nw.window.SetTitle(title)
	return nil
}

// CloseAll destroys every open window
func (d *Display) CloseAll() {
	d.mu.Lock()
	names := make([]string, 0, len(d.windows))
	for name := range d.windows {
		names = append(names, name)
	}
	d.mu.Unlock()

	for _, name := range names {
		d.Close(name)
	}
}

func (d *Display) dispatch(ev session.Event) {
	if d.onEvent != nil {
		d.onEvent(ev)
	}
}

func (d *Display) typedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyReturn || ev.Name == fyne.KeyEnter {
		d.terminate()
	}
}

func (d *Display) terminate() {
	if d.onTerminate != nil {
		d.onTerminate()
	}
}
