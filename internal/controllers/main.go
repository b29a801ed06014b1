package controllers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"backup-editor/internal/backup"
	"backup-editor/internal/i18n"
	"backup-editor/internal/logger"
	"backup-editor/internal/models"
	"backup-editor/internal/services"
)

// EditorView is what the controller needs from the window. Implementations
// must be safe to call from any goroutine.
type EditorView interface {
	BackupDir() string
	CopyCount() string

	// ChooseDestination asks for the file to save to. ok is false when the
	// user cancelled.
	ChooseDestination(callback func(path string, ok bool))

	ShowInfo(title, message string)
	ShowError(title string, err error)
	UpdateStatus(status string)
	SetSaving(active bool)

	SetSaveHandler(handler func())
	SetTextChangedHandler(handler func(string))
}

// Saver starts the write tasks for a save request.
type Saver interface {
	Save(req models.SaveRequest) *services.Pending
}

// EditorController owns the document and orchestrates saves.
type EditorController struct {
	document  *models.Document
	saver     Saver
	profile   *i18n.Profile
	logger    logger.Logger
	mode      models.SaveMode
	maxCopies int

	mu   sync.RWMutex
	view EditorView

	pending  atomic.Int64
	watchers sync.WaitGroup
}

// NewEditorController creates the controller. maxCopies of zero disables the
// copy-count bound.
func NewEditorController(
	document *models.Document,
	saver Saver,
	profile *i18n.Profile,
	log logger.Logger,
	mode models.SaveMode,
	maxCopies int,
) *EditorController {
	if log == nil {
		log = logger.Nop()
	}
	return &EditorController{
		document:  document,
		saver:     saver,
		profile:   profile,
		logger:    log,
		mode:      mode,
		maxCopies: maxCopies,
	}
}

// SetView associates the view with this controller and wires its events.
func (c *EditorController) SetView(view EditorView) {
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()

	view.SetSaveHandler(c.TriggerSave)
	view.SetTextChangedHandler(c.UpdateText)
	view.UpdateStatus(c.profile.Status.Ready)
}

func (c *EditorController) currentView() EditorView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// UpdateText mirrors the editor widget into the document.
func (c *EditorController) UpdateText(text string) {
	c.document.SetText(text)
}

// PendingSaves reports how many saves still have writes running.
func (c *EditorController) PendingSaves() int {
	return int(c.pending.Load())
}

// TriggerSave validates the copy count, asks for a destination and starts
// the writes. A cancelled prompt has no side effects.
func (c *EditorController) TriggerSave() {
	view := c.currentView()
	if view == nil {
		return
	}

	copies, err := models.ParseCopyCount(view.CopyCount(), c.maxCopies)
	if err != nil {
		c.logger.Warning("EditorController", "save rejected", map[string]interface{}{
			"input": view.CopyCount(),
			"error": err.Error(),
		})
		c.handleError(c.localizeInputError(err))
		return
	}

	backupDir := view.BackupDir()
	view.ChooseDestination(func(path string, ok bool) {
		if !ok {
			c.logger.Debug("EditorController", "save cancelled", nil)
			return
		}
		c.startSave(view, models.NewSaveRequest(path, backupDir, copies, c.document.Text()))
	})
}

func (c *EditorController) startSave(view EditorView, req models.SaveRequest) {
	name := filepath.Base(req.Destination)
	pending := c.saver.Save(req)
	c.pending.Add(1)

	view.UpdateStatus(fmt.Sprintf(c.profile.Status.Saving, name, req.Copies))

	c.watchers.Add(1)
	if c.mode == models.SaveModeDetached {
		// The acknowledgement does not depend on any write having finished.
		view.ShowInfo(c.profile.Messages.SavedTitle, c.profile.Messages.Saved)
		go c.watchDetached(view, pending)
		return
	}

	view.SetSaving(true)
	go c.awaitSave(view, pending)
}

func (c *EditorController) watchDetached(view EditorView, pending *services.Pending) {
	defer c.watchers.Done()
	defer c.pending.Add(-1)

	if err := pending.Original(context.Background()); err != nil {
		view.ShowError(c.profile.Messages.ErrorTitle, c.originalError(err))
	}

	report, _ := pending.Wait(context.Background())
	view.UpdateStatus(c.statusFor(report))
}

func (c *EditorController) awaitSave(view EditorView, pending *services.Pending) {
	defer c.watchers.Done()
	defer c.pending.Add(-1)

	report, _ := pending.Wait(context.Background())
	view.SetSaving(false)
	view.UpdateStatus(c.statusFor(report))

	if !report.Succeeded() {
		view.ShowError(c.profile.Messages.ErrorTitle, c.originalError(report.OriginalErr))
		return
	}

	message := c.profile.Messages.Saved
	if failed := len(report.FailedBackups()); failed > 0 {
		message += "\n" + fmt.Sprintf(c.profile.Messages.BackupsFailed, failed, len(report.Backups))
	}
	view.ShowInfo(c.profile.Messages.SavedTitle, message)
}

// Wait blocks until every save started by this controller has been reported
// or ctx is done.
func (c *EditorController) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.watchers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *EditorController) statusFor(report *models.SaveReport) string {
	name := filepath.Base(report.Request.Destination)
	if !report.Succeeded() {
		return fmt.Sprintf(c.profile.Status.Failed, name)
	}
	written := len(report.WrittenBackups())
	if failed := len(report.FailedBackups()); failed > 0 {
		return fmt.Sprintf(c.profile.Status.SavedWithFailures, name, written, failed)
	}
	return fmt.Sprintf(c.profile.Status.Saved, name, written)
}

func (c *EditorController) localizeInputError(err error) error {
	var parseErr *models.ParseError
	if errors.As(err, &parseErr) {
		return &localizedError{message: fmt.Sprintf(c.profile.Messages.InvalidCopies, parseErr.Input), err: err}
	}
	var limitErr *models.LimitError
	if errors.As(err, &limitErr) {
		return &localizedError{message: fmt.Sprintf(c.profile.Messages.TooManyCopies, limitErr.Requested, limitErr.Max), err: err}
	}
	return err
}

func (c *EditorController) originalError(err error) error {
	cause := err
	var writeErr *backup.WriteError
	if errors.As(err, &writeErr) {
		cause = writeErr.Err
	}
	return &localizedError{message: fmt.Sprintf(c.profile.Messages.OriginalError, cause.Error()), err: err}
}

// handleError shows an error dialog with the localized title.
func (c *EditorController) handleError(err error) {
	if view := c.currentView(); view != nil {
		view.ShowError(c.profile.Messages.ErrorTitle, err)
	}
}

// localizedError keeps the underlying error reachable through errors.As
// while presenting a translated message.
type localizedError struct {
	message string
	err     error
}

func (e *localizedError) Error() string { return e.message }

func (e *localizedError) Unwrap() error { return e.err }
