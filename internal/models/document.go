package models

import (
	"sync"
	"time"
)

// Document is the editor's in-memory text. It has no history; each SetText
// replaces the content wholesale.
type Document struct {
	mu       sync.RWMutex
	text     string
	modified time.Time
}

func NewDocument() *Document {
	return &Document{}
}

// SetText replaces the document content.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.modified = time.Now()
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Size returns the content length in bytes.
func (d *Document) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Modified reports when the content last changed.
func (d *Document) Modified() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modified
}
