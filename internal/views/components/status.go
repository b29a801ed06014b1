package components

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

// StatusBar shows the last save status and the document size.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	sizeLabel   *widget.Label
	progress    *widget.ProgressBarInfinite

	mu     sync.RWMutex
	status string
}

// NewStatusBar creates a new status bar component
func NewStatusBar(ready string) *StatusBar {
	sb := &StatusBar{status: ready}
	sb.statusLabel = widget.NewLabel(ready)
	sb.sizeLabel = widget.NewLabel(humanize.Bytes(0))
	sb.progress = widget.NewProgressBarInfinite()
	sb.progress.Stop()
	sb.progress.Hide()

	sb.container = container.NewBorder(nil, nil, nil,
		container.NewHBox(widget.NewSeparator(), sb.sizeLabel),
		container.NewHBox(sb.statusLabel, sb.progress),
	)
	return sb
}

// SetStatus updates the status message. Must run on the UI thread.
func (sb *StatusBar) SetStatus(status string) {
	sb.mu.Lock()
	sb.status = status
	sb.mu.Unlock()
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.status
}

// SetDocumentSize shows the document size in human units.
func (sb *StatusBar) SetDocumentSize(bytes int) {
	sb.sizeLabel.SetText(humanize.Bytes(uint64(bytes)))
}

// SizeText returns the rendered size label.
func (sb *StatusBar) SizeText() string {
	return sb.sizeLabel.Text
}

// SetBusy shows or hides the activity indicator.
func (sb *StatusBar) SetBusy(busy bool) {
	if busy {
		sb.progress.Show()
		sb.progress.Start()
		return
	}
	sb.progress.Stop()
	sb.progress.Hide()
}

// IsBusy reports whether the activity indicator is visible.
func (sb *StatusBar) IsBusy() bool {
	return sb.progress.Visible()
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
