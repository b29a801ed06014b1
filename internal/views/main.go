package views

import (
	"sync"

	"backup-editor/internal/i18n"
	"backup-editor/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const defaultFileName = "untitled.txt"

// MainView is the editor window: a multi-line text box, the save bar and the
// status bar. All exported methods are safe to call from any goroutine.
type MainView struct {
	window        fyne.Window
	profile       *i18n.Profile
	mainContainer *fyne.Container
	editor        *widget.Entry
	toolbar       *components.Toolbar
	statusBar     *components.StatusBar
	mainMenu      *fyne.MainMenu

	mu                 sync.RWMutex
	saveHandler        func()
	textChangedHandler func(string)
	quitHandler        func()
}

// NewMainView creates the editor view inside window.
func NewMainView(window fyne.Window, profile *i18n.Profile) *MainView {
	view := &MainView{
		window:  window,
		profile: profile,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()
	view.setupMenus()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.editor = widget.NewMultiLineEntry()
	mv.editor.SetPlaceHolder(mv.profile.Placeholders.Editor)
	mv.editor.Wrapping = fyne.TextWrapWord

	mv.toolbar = components.NewToolbar(mv.profile)
	mv.statusBar = components.NewStatusBar(mv.profile.Status.Ready)
}

func (mv *MainView) buildLayout() {
	bottomArea := container.NewVBox(
		mv.toolbar.GetContainer(),
		widget.NewSeparator(),
		mv.statusBar.GetContainer(),
	)

	mv.mainContainer = container.NewBorder(
		nil,        // top
		bottomArea, // bottom
		nil,        // left
		nil,        // right
		mv.editor,  // center
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.editor.OnChanged = func(text string) {
		mv.statusBar.SetDocumentSize(len(text))
		if handler := mv.textHandler(); handler != nil {
			handler(text)
		}
	}

	mv.toolbar.SetSaveHandler(mv.triggerSave)

	mv.window.Canvas().AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mv.triggerSave() },
	)
}

func (mv *MainView) setupMenus() {
	saveItem := fyne.NewMenuItem(mv.profile.Menu.Save, mv.triggerSave)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}

	quitItem := fyne.NewMenuItem(mv.profile.Menu.Quit, func() {
		mv.mu.RLock()
		handler := mv.quitHandler
		mv.mu.RUnlock()
		if handler != nil {
			handler()
			return
		}
		mv.window.Close()
	})
	quitItem.IsQuit = true

	fileMenu := fyne.NewMenu(mv.profile.Menu.File,
		saveItem,
		fyne.NewMenuItemSeparator(),
		quitItem,
	)

	helpMenu := fyne.NewMenu(mv.profile.Menu.Help,
		fyne.NewMenuItem(mv.profile.Menu.About, func() {
			dialog.ShowInformation(mv.profile.Menu.About, mv.profile.Messages.About, mv.window)
		}),
	)

	mv.mainMenu = fyne.NewMainMenu(fileMenu, helpMenu)
	mv.window.SetMainMenu(mv.mainMenu)
}

func (mv *MainView) triggerSave() {
	mv.mu.RLock()
	handler := mv.saveHandler
	mv.mu.RUnlock()
	if handler != nil && !mv.toolbar.IsSaving() {
		handler()
	}
}

func (mv *MainView) textHandler() func(string) {
	mv.mu.RLock()
	defer mv.mu.RUnlock()
	return mv.textChangedHandler
}

// Event handler setters - called by controller

// SetSaveHandler sets the handler for the button, menu item and shortcut.
func (mv *MainView) SetSaveHandler(handler func()) {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	mv.saveHandler = handler
}

// SetTextChangedHandler sets the handler fed with every edit.
func (mv *MainView) SetTextChangedHandler(handler func(string)) {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	mv.textChangedHandler = handler
}

// SetQuitHandler replaces the default close behaviour of File > Quit.
func (mv *MainView) SetQuitHandler(handler func()) {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	mv.quitHandler = handler
}

// SetDefaults fills the backup location and copy-count fields.
func (mv *MainView) SetDefaults(backupDir, copies string) {
	mv.toolbar.SetDefaults(backupDir, copies)
}

// BackupDir returns the backup location field.
func (mv *MainView) BackupDir() string {
	return mv.toolbar.BackupDir()
}

// CopyCount returns the copy-count field.
func (mv *MainView) CopyCount() string {
	return mv.toolbar.CopyCount()
}

// ChooseDestination shows the file save dialog. The file the dialog creates
// is closed right away; the save writes it again through the backup writer.
func (mv *MainView) ChooseDestination(callback func(path string, ok bool)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, mv.window)
				callback("", false)
				return
			}
			if writer == nil {
				callback("", false)
				return
			}
			path := writer.URI().Path()
			writer.Close()
			callback(path, true)
		}, mv.window)
		d.SetFileName(defaultFileName)
		d.Show()
	})
}

// UI update methods - called by controller

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// SetSaving toggles the Save button and the activity indicator.
func (mv *MainView) SetSaving(active bool) {
	fyne.Do(func() {
		mv.toolbar.SetSavingActive(active)
		mv.statusBar.SetBusy(active)
	})
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowInformation(title, err.Error(), mv.window)
	})
}

// ShowInfo displays an information dialog
func (mv *MainView) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

// ShowConfirm displays a confirmation dialog
func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, callback, mv.window)
	})
}

// GetWindow returns the main window
func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

// Editor returns the text box.
func (mv *MainView) Editor() *widget.Entry {
	return mv.editor
}

// GetToolbar returns the save bar component
func (mv *MainView) GetToolbar() *components.Toolbar {
	return mv.toolbar
}

// GetStatusBar returns the status bar component
func (mv *MainView) GetStatusBar() *components.StatusBar {
	return mv.statusBar
}

// MainMenu returns the window menu.
func (mv *MainView) MainMenu() *fyne.MainMenu {
	return mv.mainMenu
}
