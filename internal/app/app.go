package app

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plotterm/plotterm/internal/canvas"
	"github.com/plotterm/plotterm/internal/config"
	"github.com/plotterm/plotterm/internal/data"
	"github.com/plotterm/plotterm/internal/input"
	"github.com/plotterm/plotterm/internal/plot"
	"github.com/plotterm/plotterm/internal/script"
	"github.com/plotterm/plotterm/internal/term"
	"github.com/plotterm/plotterm/internal/term/backend"
)

// frameTime paces redraws while an async render pass fills the grid.
const frameTime = time.Second / 30

// Options configures a new Application.
type Options struct {
	// Config holds the loaded configuration. Zero value means defaults.
	Config config.Config

	// ConfigPath, when set, is watched for live reloads.
	ConfigPath string

	// Backend is the terminal surface. Required for Run.
	Backend backend.Backend

	// ScriptPath is an optional plot script loaded at startup.
	ScriptPath string

	// Logger defaults to a discard logger.
	Logger *Logger
}

// Application owns the plotter's main loop.
type Application struct {
	mu      sync.Mutex
	running atomic.Bool
	done    chan struct{}

	cfg        config.Config
	configPath string
	scriptPath string

	backend    backend.Backend
	canvas     *canvas.Canvas
	source     *data.Source
	dispatcher *input.Dispatcher
	loader     *script.Loader
	watcher    *config.Watcher
	logger     *Logger

	lastSnapshot []data.Row
}

// New assembles an application from options.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if len(cfg.Plot.Colors) == 0 {
		cfg = config.Default()
	}

	palette, err := cfg.Palette()
	if err != nil {
		return nil, &InitError{Component: "palette", Err: err}
	}

	logger := opts.Logger
	if logger == nil {
		logger = NullLogger
	}

	policy := plot.PickMostCommon
	if cfg.Plot.PixelRandom {
		policy = plot.PickRandom
	}

	source := data.NewSource()
	c := canvas.New(canvas.Options{
		Palette:     palette,
		AspectRatio: cfg.Plot.AspectRatio,
		ShowLabels:  cfg.Plot.Labels,
		Policy:      policy,
	}, source)

	app := &Application{
		done:       make(chan struct{}),
		cfg:        cfg,
		configPath: opts.ConfigPath,
		scriptPath: opts.ScriptPath,
		backend:    opts.Backend,
		canvas:     c,
		source:     source,
		dispatcher: input.NewDispatcher(c, source, cfg.Plot.ZoomIncr),
		loader:     script.NewLoader(c, source),
		logger:     logger,
	}
	app.dispatcher.OnSnapshot = app.takeSnapshot

	return app, nil
}

// Canvas returns the application's canvas.
func (app *Application) Canvas() *canvas.Canvas {
	return app.canvas
}

// Source returns the application's row source.
func (app *Application) Source() *data.Source {
	return app.source
}

// LoadScript runs a plot script against the canvas, replacing the
// current plot.
func (app *Application) LoadScript(path string) error {
	app.canvas.Reset()
	app.canvas.ResetView()
	if err := app.loader.LoadFile(path); err != nil {
		return err
	}
	app.logger.Info("loaded script %s: %d segments", path, app.canvas.Len())
	app.canvas.Refresh()
	return nil
}

// Run starts the main loop and blocks until quit is requested or a
// fatal error occurs.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.backend == nil {
		return ErrNoBackend
	}
	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Fini()

	cols, rows := app.backend.Size()
	app.canvas.Resize(cols, rows)

	if app.scriptPath != "" {
		if err := app.LoadScript(app.scriptPath); err != nil {
			return err
		}
	}

	if app.configPath != "" {
		w, err := config.NewWatcher(app.configPath, app.onConfigChange)
		if err != nil {
			app.logger.Warn("config watch unavailable: %v", err)
		} else {
			app.watcher = w
			defer func() { _ = app.watcher.Close() }()
		}
	}

	app.draw()
	return app.eventLoop()
}

// Stop requests a clean shutdown from outside the event loop.
func (app *Application) Stop() {
	app.mu.Lock()
	defer app.mu.Unlock()
	select {
	case <-app.done:
	default:
		close(app.done)
	}
}

// eventLoop polls the backend and paces redraws. Input polling runs in
// its own goroutine so timed repaints continue while a render pass is
// in flight.
func (app *Application) eventLoop() error {
	events := make(chan backend.Event)
	go func() {
		for {
			ev := app.backend.PollEvent()
			select {
			case events <- ev:
			case <-app.done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-app.done:
			return nil

		case ev := <-events:
			if err := app.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			app.draw()

		case <-ticker.C:
			app.draw()
		}
	}
}

// handleEvent routes one event. Quit keys are handled here; everything
// else goes through the dispatcher.
func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.canvas.Resize(ev.Width, ev.Height)
		return nil

	case backend.EventKey:
		if ev.Key == backend.KeyCtrlC || (ev.Key == backend.KeyRune && ev.Rune == 'q') {
			return ErrQuit
		}
		app.currentDispatcher().Dispatch(ev)
		return nil

	case backend.EventMouse:
		app.currentDispatcher().Dispatch(ev)
		return nil
	}
	return nil
}

// currentDispatcher guards against the watcher goroutine swapping the
// dispatcher during a reload.
func (app *Application) currentDispatcher() *input.Dispatcher {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.dispatcher
}

// draw repaints the plot and status line.
func (app *Application) draw() {
	app.canvas.Draw(app.backend)
	app.drawStatus()
	app.backend.Show()
}

// drawStatus writes the status line into the reserved bottom row.
func (app *Application) drawStatus() {
	cols, rows := app.backend.Size()
	if rows < 1 {
		return
	}

	status := app.statusText()
	style := term.Style{}.Reverse()
	row := rows - 1
	for col := 0; col < cols; col++ {
		r := ' '
		if col < len(status) {
			r = rune(status[col])
		}
		app.backend.SetCell(col, row, term.NewCell(r, style))
	}
}

func (app *Application) statusText() string {
	s := app.canvas.Status()
	if n := app.source.SelectedCount(); n > 0 {
		s += fmt.Sprintf("  %d selected", n)
	}
	return s
}

// takeSnapshot records the rows under the cursor for later retrieval.
func (app *Application) takeSnapshot(rows []data.Row) {
	app.mu.Lock()
	app.lastSnapshot = rows
	app.mu.Unlock()
	app.logger.Info("snapshot: %d rows", len(rows))
}

// Snapshot returns the rows captured by the last Enter press.
func (app *Application) Snapshot() []data.Row {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.lastSnapshot
}

// onConfigChange applies a live-reloaded configuration. Palette and
// policy changes need a restart; zoom increment and log level apply
// immediately.
func (app *Application) onConfigChange(cfg config.Config, err error) {
	if err != nil {
		app.logger.Warn("config reload failed: %v", err)
		return
	}

	app.mu.Lock()
	app.cfg = cfg
	app.dispatcher = input.NewDispatcher(app.canvas, app.source, cfg.Plot.ZoomIncr)
	app.dispatcher.OnSnapshot = app.takeSnapshot
	app.mu.Unlock()

	app.logger.SetLevel(ParseLogLevel(cfg.Log.Level))
	app.logger.Info("config reloaded")
}
