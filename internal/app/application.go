package app

import (
	"fmt"
	"runtime"

	"backup-editor/internal/backup"
	"backup-editor/internal/config"
	"backup-editor/internal/controllers"
	"backup-editor/internal/i18n"
	"backup-editor/internal/logger"
	"backup-editor/internal/models"
	"backup-editor/internal/services"
	"backup-editor/internal/shutdown"
	"backup-editor/internal/views"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/afero"
)

const (
	AppID      = "com.backupeditor.app"
	AppVersion = "1.0.0"
)

var _ controllers.EditorView = (*views.MainView)(nil)

// Options carries what NewApplication needs besides the Fyne app.
type Options struct {
	Settings *config.Settings
	Logger   logger.Logger

	// Fs is where files are written. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Application owns the window and the MVC components behind it.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	profile *i18n.Profile

	controller  *controllers.EditorController
	view        *views.MainView
	saveService *services.SaveService

	lifecycle *Lifecycle
}

// New creates the application on a fresh Fyne app.
func New(opts Options) (*Application, error) {
	return NewApplication(fyneapp.NewWithID(AppID), opts)
}

// NewApplication wires models, services, controller and view into a window
// of fyneApp.
func NewApplication(fyneApp fyne.App, opts Options) (*Application, error) {
	settings := opts.Settings
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	appLogger := opts.Logger
	if appLogger == nil {
		appLogger = logger.Nop()
	}

	profile, err := i18n.Load(settings.Locale)
	if err != nil {
		return nil, err
	}

	window := fyneApp.NewWindow(profile.Title)
	window.Resize(fyne.NewSize(profile.Window.Width, profile.Window.Height))
	window.CenterOnScreen()
	window.SetMaster()

	appLogger.Info("Application", "starting application", map[string]interface{}{
		"version":     AppVersion,
		"locale":      profile.Code,
		"window_size": fmt.Sprintf("%.0fx%.0f", profile.Window.Width, profile.Window.Height),
		"save_mode":   string(settings.SaveMode),
		"go_version":  runtime.Version(),
		"config_file": settings.ConfigFile,
	})

	writer := backup.NewWriter(opts.Fs, appLogger)
	saveService := services.NewSaveService(writer, appLogger, settings.MaxConcurrency, settings.ShutdownTimeout)

	document := models.NewDocument()
	controller := controllers.NewEditorController(
		document, saveService, profile, appLogger,
		settings.SaveMode, settings.MaxCopies,
	)
	view := views.NewMainView(window, profile)
	view.SetDefaults(settings.BackupDir, settings.BackupCopies)
	controller.SetView(view)

	manager := shutdown.NewManager(appLogger, settings.ShutdownTimeout)
	manager.Register(saveService)

	application := &Application{
		fyneApp:     fyneApp,
		window:      window,
		logger:      appLogger,
		profile:     profile,
		controller:  controller,
		view:        view,
		saveService: saveService,
	}
	application.lifecycle = NewLifecycle(application, manager)
	application.lifecycle.setupWindowEvents()

	appLogger.Info("Application", "initialization complete", nil)
	return application, nil
}

// Run shows the window and blocks until the Fyne event loop exits. In-flight
// saves are drained before it returns.
func (a *Application) Run() error {
	stop := a.lifecycle.listenSignals()
	defer stop()

	a.window.Show()
	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.lifecycle.Shutdown()
	a.logger.Info("Application", "application terminated", nil)
	return nil
}

// Window returns the main window.
func (a *Application) Window() fyne.Window {
	return a.window
}

// View returns the main view.
func (a *Application) View() *views.MainView {
	return a.view
}

// Controller returns the editor controller.
func (a *Application) Controller() *controllers.EditorController {
	return a.controller
}

// SaveService returns the shared save service.
func (a *Application) SaveService() *services.SaveService {
	return a.saveService
}
