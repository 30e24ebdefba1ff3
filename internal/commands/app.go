package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diogo/monachat/internal/api"
	"github.com/diogo/monachat/internal/chat"
	"github.com/diogo/monachat/internal/config"
	"github.com/diogo/monachat/internal/history"
	"github.com/diogo/monachat/internal/logging"
	"github.com/diogo/monachat/internal/render"
	"github.com/diogo/monachat/internal/timeline"
)

const logFileName = "monachat.log"

// App is an opened chat session: configuration, durable state and the
// send pipeline wired together
type App struct {
	Config   config.Config
	DataDir  string
	History  *history.Store
	Timeline *timeline.Store
	Presence *chat.Tracker
	Pipeline *chat.Pipeline

	logFile *os.File
}

// openApp loads configuration, restores persisted chats and builds the
// pipeline. interactive sends logs to a file so the TUI owns the terminal.
func openApp(d *Dependencies, interactive bool) (*App, error) {
	if err := config.LoadDotEnv(""); err != nil {
		logging.Logger().Warn("ignoring .env", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Logger().Warn("using default configuration", "error", err)
	}
	cfg = applyFlags(cfg)
	logging.SetVerbose(cfg.Verbose)

	dataDir, err := config.GetDataDir(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DataDir: dataDir}

	if interactive {
		f, err := os.OpenFile(filepath.Join(dataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		app.logFile = f
		logging.SetOutput(f)
	}

	hist, err := history.Open(cfg.Storage, dataDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open chat storage: %w", err)
	}
	app.History = hist

	tl := timeline.New()
	hist.Load(tl)
	tl.SetPersister(hist)
	if tl.SeedGreeting(time.Now()) {
		logging.Logger().Debug("seeded greeting")
	}
	app.Timeline = tl

	if !render.SetTUITheme(hist.LoadTheme()) {
		render.SetTUITheme(render.DefaultThemeName)
	}

	client := d.Client
	if client == nil {
		httpClient, err := api.NewClient(
			api.WithBackendURL(cfg.BackendURL),
			api.WithTimeout(cfg.RequestTimeout()),
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		client = httpClient
	}

	lo, hi := cfg.ThinkTime()
	app.Presence = chat.NewTracker(nil)
	app.Pipeline = chat.New(tl, client,
		chat.WithPresence(app.Presence),
		chat.WithThinkTime(lo, hi),
		chat.WithSerializeSends(cfg.SerializeSends),
	)

	logging.Logger().Debug("app opened", "storage", cfg.Storage, "data_dir", dataDir, "backend", cfg.BackendURL)
	return app, nil
}

// Close releases the storage backend and restores logging to stderr
func (a *App) Close() error {
	var err error
	if a.History != nil {
		err = a.History.Close()
	}
	if a.logFile != nil {
		logging.SetOutput(os.Stderr)
		_ = a.logFile.Close()
		a.logFile = nil
	}
	return err
}

// applyFlags overlays global command-line flags onto cfg
func applyFlags(cfg config.Config) config.Config {
	if storageFlag != "" {
		cfg.Storage = storageFlag
	}
	if backendFlag != "" {
		cfg.BackendURL = backendFlag
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}
	return cfg
}
