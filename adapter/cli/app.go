package cli

import (
	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application/settings"
)

// App holds the CLI application dependencies.
type App struct {
	TaskStore       *application.TaskStore
	SettingsService *settings.Service

	// EventBus delivers change events from the store to the shell and the
	// foreground timer.
	EventBus *eventbus.InProcessEventBus

	// RabbitMQURL enables the events command when set.
	RabbitMQURL string

	// StorageErr is reported once when the configured storage could not be
	// opened.
	StorageErr error
}

// NewApp creates a new CLI application with the provided services.
func NewApp(store *application.TaskStore, settingsService *settings.Service, bus *eventbus.InProcessEventBus) *App {
	return &App{
		TaskStore:       store,
		SettingsService: settingsService,
		EventBus:        bus,
	}
}

// SetRabbitMQURL updates the broker URL used by the events command.
func (a *App) SetRabbitMQURL(url string) {
	a.RabbitMQURL = url
}

// SetStorageErr records a storage open failure.
func (a *App) SetStorageErr(err error) {
	a.StorageErr = err
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

func requireApp() (*App, error) {
	a := GetApp()
	if a == nil || a.TaskStore == nil {
		return nil, errNotInitialized
	}
	return a, nil
}
