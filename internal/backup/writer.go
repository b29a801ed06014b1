package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"backup-editor/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	OpOriginal = "original"
	OpBackup   = "backup"

	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// WriteError wraps an I/O failure with the operation and the target path.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s write %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer persists the destination file and its backup copies.
type Writer struct {
	fs     afero.Fs
	logger logger.Logger
	newID  func() string
}

// NewWriter returns a Writer over fs. A nil fs means the real filesystem.
func NewWriter(fs afero.Fs, log logger.Logger) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{
		fs:     fs,
		logger: log,
		newID:  func() string { return uuid.New().String() },
	}
}

// Fs exposes the underlying filesystem.
func (w *Writer) Fs() afero.Fs {
	return w.fs
}

// FileName builds "<base>_backup_<id>.txt" from the original path.
func FileName(originalPath, id string) string {
	return filepath.Base(originalPath) + "_backup_" + id + ".txt"
}

// WriteOriginal overwrites path with content.
func (w *Writer) WriteOriginal(path, content string) error {
	if err := afero.WriteFile(w.fs, path, []byte(content), filePerm); err != nil {
		return &WriteError{Op: OpOriginal, Path: path, Err: err}
	}

	w.logger.Debug("BackupWriter", "original written", map[string]interface{}{
		"path":  path,
		"bytes": len(content),
	})
	return nil
}

// SaveCopy writes content to a freshly named file under backupDir, creating
// the directory and its parents when missing. originalPath is only used for
// its base name. An empty backupDir means the working directory.
func (w *Writer) SaveCopy(originalPath, backupDir, content string) (string, error) {
	if backupDir == "" {
		backupDir = "."
	}

	if err := w.fs.MkdirAll(backupDir, dirPerm); err != nil {
		return "", &WriteError{Op: OpBackup, Path: backupDir, Err: err}
	}

	path := filepath.Join(backupDir, FileName(originalPath, w.newID()))
	if err := afero.WriteFile(w.fs, path, []byte(content), filePerm); err != nil {
		return "", &WriteError{Op: OpBackup, Path: path, Err: err}
	}

	w.logger.Debug("BackupWriter", "backup written", map[string]interface{}{
		"path":  path,
		"bytes": len(content),
	})
	return path, nil
}
