package app

import (
	"sync/atomic"

	"backup-editor/internal/shutdown"

	"fyne.io/fyne/v2"
)

// Lifecycle handles window close, File > Quit and OS signals. Every path
// drains in-flight saves before the app exits.
type Lifecycle struct {
	app        *Application
	manager    *shutdown.Manager
	isShutdown atomic.Bool

	// quit ends the event loop. Replaced in tests.
	quit func()
}

func NewLifecycle(app *Application, manager *shutdown.Manager) *Lifecycle {
	l := &Lifecycle{app: app, manager: manager}
	l.quit = func() {
		fyne.Do(app.fyneApp.Quit)
	}
	return l
}

func (l *Lifecycle) setupWindowEvents() {
	l.app.window.SetCloseIntercept(l.RequestQuit)
	l.app.view.SetQuitHandler(l.RequestQuit)
}

// RequestQuit quits, asking first when saves are still being written.
func (l *Lifecycle) RequestQuit() {
	pending := l.app.controller.PendingSaves()
	l.app.logger.Info("Lifecycle", "quit requested", map[string]interface{}{
		"pending_saves": pending,
	})

	if pending == 0 {
		l.shutdownAndQuit()
		return
	}

	profile := l.app.profile
	l.app.view.ShowConfirm(profile.Messages.QuitTitle, profile.Messages.QuitPending, func(confirmed bool) {
		if confirmed {
			l.shutdownAndQuit()
		}
	})
}

// shutdownAndQuit drains saves off the UI thread, then stops the event loop.
func (l *Lifecycle) shutdownAndQuit() {
	go func() {
		l.Shutdown()
		l.quit()
	}()
}

func (l *Lifecycle) listenSignals() func() {
	return l.manager.Listen(l.quit)
}

// Shutdown runs the shutdown sequence once.
func (l *Lifecycle) Shutdown() {
	if !l.isShutdown.CompareAndSwap(false, true) {
		return
	}
	l.app.logger.Info("Lifecycle", "shutdown sequence initiated", nil)
	l.manager.Shutdown()
	l.app.logger.Info("Lifecycle", "shutdown sequence completed", nil)
}
