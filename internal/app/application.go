package app

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"landmark-picker/internal/config"
	"landmark-picker/internal/gui"
	"landmark-picker/internal/imagestore"
	"landmark-picker/internal/logger"
	"landmark-picker/internal/records"
	"landmark-picker/internal/session"
	"landmark-picker/internal/shutdown"
	"landmark-picker/internal/staging"
)

const (
	AppName    = "Landmark Picker"
	AppID      = "com.imageprocessing.landmarkpicker"
	AppVersion = "1.0.0"
)

// Application runs one annotation session inside a fyne event loop
type Application struct {
	cfg      *config.Config
	logger   logger.Logger
	fyneApp  fyne.App
	display  *gui.Display
	images   imagestore.Store
	session  *session.Session
	shutdown *shutdown.Manager

	once sync.Once
	mu   sync.Mutex
	err  error
}

func NewApplication(cfg *config.Config, log logger.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return newApplication(cfg, log, fyneapp.NewWithID(AppID)), nil
}

func newApplication(cfg *config.Config, log logger.Logger, fyneApp fyne.App) *Application {
	display := gui.NewDisplay(fyneApp, log)

	var images imagestore.Store
	switch cfg.Backend {
	case config.BackendRaster:
		images = imagestore.NewRasterStore(log)
	default:
		images = imagestore.NewOpenCVStore(log)
	}

	store := staging.NewFileStore(cfg.SaveDir, cfg.ImageID)
	writer := records.NewWriter(cfg.SaveDir, cfg.OutputName, log)

	sess := session.New(session.Options{
		RequiredPixels: cfg.RequiredPixels,
		ZoomHalfSize:   cfg.ZoomHalfSize,
		Scale:          cfg.Scale,
		WindowOffset:   cfg.WindowOffset(),
		Resume:         cfg.Resume,
	}, display, store, writer, log)

	a := &Application{
		cfg:      cfg,
		logger:   log,
		fyneApp:  fyneApp,
		display:  display,
		images:   images,
		session:  sess,
		shutdown: shutdown.NewManager(log),
	}

	log.Info("Application", "initialized", map[string]interface{}{
		"version":         AppVersion,
		"backend":         string(cfg.Backend),
		"save_dir":        cfg.SaveDir,
		"output":          cfg.OutputPath(),
		"required_pixels": cfg.RequiredPixels,
		"staging":         store.Path(),
	})
	return a
}

// Run loads the configured image and blocks until the terminating key, a
// window close, a signal or a fatal session error. An interrupted run returns
// shutdown.ErrInterrupted and keeps the staged picks for -resume.
func (a *Application) Run(ctx context.Context) error {
	buf, err := a.images.Load(a.cfg.ImageSource)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := a.start(runCtx, buf); err != nil {
		return err
	}

	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(func() { a.finish(ctx.Err()) })
		case <-a.shutdown.Done():
		}
	}()

	a.logger.Info("Application", "waiting for landmarks; press Enter to finish", nil)
	a.fyneApp.Run()

	return a.result()
}

// start loads buf into the session and installs the event, terminate and
// signal handlers. The signal listener stops when ctx ends.
func (a *Application) start(ctx context.Context, buf imagestore.Buffer) error {
	if err := a.session.Load(buf, a.cfg.ImageID, a.cfg.Group); err != nil {
		a.session.Release()
		return err
	}

	a.display.SetEventHandler(a.handleEvent)
	a.display.SetTerminateHandler(func() { a.finish(nil) })

	a.shutdown.Register("display", shutdown.Func(a.display.CloseAll))
	a.shutdown.Register("fyne", shutdown.Func(a.fyneApp.Quit))

	a.shutdown.Listen(ctx, func() {
		fyne.Do(func() { a.finish(shutdown.ErrInterrupted) })
	})
	return nil
}

func (a *Application) result() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Application) handleEvent(ev session.Event) {
	if err := a.session.Handle(ev); err != nil {
		a.logger.Error("Application", err, map[string]interface{}{
			"event": ev.String(),
		})
		a.finish(err)
	}
}

// finish ends the session once. A clean finish removes the staging record; a
// failed one keeps it so the pass can be resumed.
func (a *Application) finish(cause error) {
	a.once.Do(func() {
		var err error
		if cause == nil {
			err = a.session.Close()
		} else {
			err = a.session.Release()
		}
		if err != nil {
			a.logger.Error("Application", err, map[string]interface{}{"stage": "cleanup"})
		}

		a.mu.Lock()
		a.err = cause
		if a.err == nil {
			a.err = err
		}
		a.mu.Unlock()

		a.shutdown.Shutdown()
	})
}
