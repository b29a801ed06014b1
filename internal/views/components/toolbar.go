package components

import (
	"backup-editor/internal/i18n"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Toolbar is the save bar under the editor: backup location, copy count and
// the Save button.
type Toolbar struct {
	container    *fyne.Container
	backupEntry  *widget.Entry
	copiesEntry  *widget.Entry
	saveButton   *widget.Button
	backupLabel  *widget.Label
	copiesLabel  *widget.Label
	saveHandler  func()
	savingActive bool
}

// NewToolbar creates the save bar with labels from profile.
func NewToolbar(profile *i18n.Profile) *Toolbar {
	t := &Toolbar{}
	t.createComponents(profile)
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents(profile *i18n.Profile) {
	t.backupLabel = widget.NewLabel(profile.Labels.BackupLocation)
	t.backupEntry = widget.NewEntry()
	t.backupEntry.SetPlaceHolder(profile.Placeholders.BackupLocation)

	t.copiesLabel = widget.NewLabel(profile.Labels.Copies)
	t.copiesEntry = widget.NewEntry()
	t.copiesEntry.SetPlaceHolder(profile.Placeholders.Copies)

	t.saveButton = widget.NewButton(profile.Labels.Save, func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Importance = widget.HighImportance
}

func (t *Toolbar) buildLayout() {
	fields := container.New(
		layout.NewFormLayout(),
		t.backupLabel, t.backupEntry,
		t.copiesLabel, t.copiesEntry,
	)
	t.container = container.NewBorder(nil, nil, nil, t.saveButton, fields)
}

// SetSaveHandler sets the handler for the Save button.
func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

// SetDefaults fills both fields. Called once before the window is shown.
func (t *Toolbar) SetDefaults(backupDir, copies string) {
	t.backupEntry.SetText(backupDir)
	t.copiesEntry.SetText(copies)
}

// BackupDir returns the backup location as typed.
func (t *Toolbar) BackupDir() string {
	return t.backupEntry.Text
}

// CopyCount returns the copy-count field as typed.
func (t *Toolbar) CopyCount() string {
	return t.copiesEntry.Text
}

// SetSavingActive disables the Save button while an awaited save runs.
func (t *Toolbar) SetSavingActive(active bool) {
	t.savingActive = active
	if active {
		t.saveButton.Disable()
	} else {
		t.saveButton.Enable()
	}
}

// IsSaving reports whether the Save button is currently disabled by a save.
func (t *Toolbar) IsSaving() bool {
	return t.savingActive
}

// SaveButton exposes the button for shortcuts and tests.
func (t *Toolbar) SaveButton() *widget.Button {
	return t.saveButton
}

// BackupEntry exposes the backup location field.
func (t *Toolbar) BackupEntry() *widget.Entry {
	return t.backupEntry
}

// CopiesEntry exposes the copy-count field.
func (t *Toolbar) CopiesEntry() *widget.Entry {
	return t.copiesEntry
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
