package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SaveMode selects how the editor reports a save back to the user.
type SaveMode string

const (
	// SaveModeAwaited waits for every write before notifying.
	SaveModeAwaited SaveMode = "awaited"
	// SaveModeDetached notifies immediately and lets writes land later.
	SaveModeDetached SaveMode = "detached"
)

// ParseSaveMode maps a config value to a SaveMode.
func ParseSaveMode(s string) (SaveMode, error) {
	switch SaveMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SaveModeAwaited:
		return SaveModeAwaited, nil
	case SaveModeDetached:
		return SaveModeDetached, nil
	}
	return "", fmt.Errorf("unknown save mode %q", s)
}

// SaveRequest captures one user-initiated save. It is consumed as soon as the
// write tasks are spawned.
type SaveRequest struct {
	Destination string
	BackupDir   string
	Copies      int
	Content     string
	CreatedAt   time.Time
}

// NewSaveRequest snapshots content and clamps a negative copy count to zero.
func NewSaveRequest(destination, backupDir string, copies int, content string) SaveRequest {
	if copies < 0 {
		copies = 0
	}
	return SaveRequest{
		Destination: destination,
		BackupDir:   backupDir,
		Copies:      copies,
		Content:     content,
		CreatedAt:   time.Now(),
	}
}

// ParseError reports a copy count that is not an integer.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid number of copies %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LimitError reports a copy count above the configured maximum.
type LimitError struct {
	Requested int
	Max       int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("number of copies %d exceeds the maximum of %d", e.Requested, e.Max)
}

// ParseCopyCount parses the copy-count field. Negative values become zero.
// A max of zero or less disables the upper bound.
func ParseCopyCount(input string, max int) (int, error) {
	trimmed := strings.TrimSpace(input)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &ParseError{Input: input, Err: err}
	}
	if n < 0 {
		return 0, nil
	}
	if max > 0 && n > max {
		return 0, &LimitError{Requested: n, Max: max}
	}
	return n, nil
}

// BackupResult is the outcome of a single backup write.
type BackupResult struct {
	Path string
	Err  error
}

// SaveReport aggregates every task outcome for one SaveRequest.
type SaveReport struct {
	Request     SaveRequest
	OriginalErr error
	Backups     []BackupResult
	Duration    time.Duration
}

// Succeeded reports whether the destination file was written.
func (r *SaveReport) Succeeded() bool {
	return r.OriginalErr == nil
}

// WrittenBackups returns the paths of backups that landed on disk.
func (r *SaveReport) WrittenBackups() []string {
	paths := make([]string, 0, len(r.Backups))
	for _, b := range r.Backups {
		if b.Err == nil {
			paths = append(paths, b.Path)
		}
	}
	return paths
}

// FailedBackups returns the errors of backups that did not land.
func (r *SaveReport) FailedBackups() []error {
	var errs []error
	for _, b := range r.Backups {
		if b.Err != nil {
			errs = append(errs, b.Err)
		}
	}
	return errs
}
