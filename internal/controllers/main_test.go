package controllers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"backup-editor/internal/backup"
	"backup-editor/internal/i18n"
	"backup-editor/internal/models"
	"backup-editor/internal/services"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dialogCall struct {
	title   string
	message string
	err     error
}

type fakeView struct {
	mu sync.Mutex

	backupDir string
	copies    string
	dest      string
	cancel    bool

	prompts  int
	infos    []dialogCall
	errors   []dialogCall
	statuses []string
	saving   []bool

	saveHandler func()
	textHandler func(string)
}

func (f *fakeView) BackupDir() string { return f.backupDir }
func (f *fakeView) CopyCount() string { return f.copies }

func (f *fakeView) ChooseDestination(callback func(string, bool)) {
	f.mu.Lock()
	f.prompts++
	f.mu.Unlock()
	callback(f.dest, !f.cancel)
}

func (f *fakeView) ShowInfo(title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, dialogCall{title: title, message: message})
}

func (f *fakeView) ShowError(title string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, dialogCall{title: title, message: err.Error(), err: err})
}

func (f *fakeView) UpdateStatus(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeView) SetSaving(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = append(f.saving, active)
}

func (f *fakeView) SetSaveHandler(h func())              { f.saveHandler = h }
func (f *fakeView) SetTextChangedHandler(h func(string)) { f.textHandler = h }

func (f *fakeView) snapshot() (infos, errs []dialogCall, statuses []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dialogCall(nil), f.infos...), append([]dialogCall(nil), f.errors...), append([]string(nil), f.statuses...)
}

type harness struct {
	fs         afero.Fs
	view       *fakeView
	controller *EditorController
	saves      int
}

type countingSaver struct {
	inner *services.SaveService
	count *int
}

func (s countingSaver) Save(req models.SaveRequest) *services.Pending {
	*s.count++
	return s.inner.Save(req)
}

func newHarness(t *testing.T, fs afero.Fs, mode models.SaveMode) *harness {
	t.Helper()
	h := &harness{fs: fs}
	svc := services.NewSaveService(backup.NewWriter(fs, nil), nil, 4, time.Second)
	h.controller = NewEditorController(
		models.NewDocument(),
		countingSaver{inner: svc, count: &h.saves},
		i18n.MustLoad("en"),
		nil,
		mode,
		100,
	)
	h.view = &fakeView{backupDir: "/tmp/backups", copies: "3", dest: "/tmp/out.txt"}
	h.controller.SetView(h.view)
	return h
}

func (h *harness) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, h.controller.Wait(ctx))
}

func TestSetViewWiresHandlers(t *testing.T) {
	h := newHarness(t, afero.NewMemMapFs(), models.SaveModeAwaited)

	require.NotNil(t, h.view.saveHandler)
	require.NotNil(t, h.view.textHandler)

	h.view.textHandler("typed")
	assert.Equal(t, "typed", h.controller.document.Text())

	_, _, statuses := h.view.snapshot()
	assert.Equal(t, []string{"Ready"}, statuses)
}

func TestTriggerSaveAwaited(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := newHarness(t, fs, models.SaveModeAwaited)
	h.controller.UpdateText("hello world")

	h.view.saveHandler()
	h.wait(t)

	data, err := afero.ReadFile(fs, "/tmp/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	matches, err := afero.Glob(fs, "/tmp/backups/out.txt_backup_*.txt")
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	infos, errs, statuses := h.view.snapshot()
	assert.Empty(t, errs)
	require.Len(t, infos, 1)
	assert.Equal(t, "File and copies saved successfully!", infos[0].message)
	assert.Equal(t, "Saved out.txt, 3 backup copies", statuses[len(statuses)-1])
	assert.Equal(t, []bool{true, false}, h.view.saving)
	assert.Zero(t, h.controller.PendingSaves())
}

func TestTriggerSaveDetachedAcknowledgesImmediately(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := newHarness(t, fs, models.SaveModeDetached)
	h.controller.UpdateText("hello world")

	h.view.saveHandler()

	infos, _, _ := h.view.snapshot()
	require.Len(t, infos, 1, "acknowledgement is shown before writes are awaited")
	assert.Equal(t, "File and copies saved successfully!", infos[0].message)

	h.wait(t)
	matches, err := afero.Glob(fs, "/tmp/backups/out.txt_backup_*.txt")
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Empty(t, h.view.saving)
}

func TestTriggerSaveParseErrorAbortsBeforePrompt(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := newHarness(t, fs, models.SaveModeAwaited)
	h.view.copies = "three"

	h.view.saveHandler()

	_, errs, _ := h.view.snapshot()
	require.Len(t, errs, 1)
	assert.Equal(t, "Error", errs[0].title)
	assert.Contains(t, errs[0].message, `"three"`)

	var parseErr *models.ParseError
	assert.True(t, errors.As(errs[0].err, &parseErr))
	assert.Zero(t, h.view.prompts)
	assert.Zero(t, h.saves)
}

func TestTriggerSaveLimitError(t *testing.T) {
	h := newHarness(t, afero.NewMemMapFs(), models.SaveModeAwaited)
	h.view.copies = "1000"

	h.view.saveHandler()

	_, errs, _ := h.view.snapshot()
	require.Len(t, errs, 1)
	var limitErr *models.LimitError
	assert.True(t, errors.As(errs[0].err, &limitErr))
	assert.Zero(t, h.saves)
}

func TestTriggerSaveNegativeCopiesWritesOnlyOriginal(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := newHarness(t, fs, models.SaveModeAwaited)
	h.view.copies = "-4"
	h.controller.UpdateText("x")

	h.view.saveHandler()
	h.wait(t)

	exists, err := afero.Exists(fs, "/tmp/out.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	dirExists, err := afero.DirExists(fs, "/tmp/backups")
	require.NoError(t, err)
	assert.False(t, dirExists)
}

func TestTriggerSaveCancelledPromptHasNoSideEffects(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := newHarness(t, fs, models.SaveModeAwaited)
	h.view.cancel = true

	h.view.saveHandler()
	h.wait(t)

	assert.Equal(t, 1, h.view.prompts)
	assert.Zero(t, h.saves)
	infos, errs, _ := h.view.snapshot()
	assert.Empty(t, infos)
	assert.Empty(t, errs)

	exists, err := afero.Exists(fs, "/tmp/out.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTriggerSaveOriginalFailureShowsCause(t *testing.T) {
	tmp := t.TempDir()
	h := newHarness(t, afero.NewOsFs(), models.SaveModeAwaited)
	h.view.dest = filepath.Join(tmp, "missing", "out.txt")
	h.view.backupDir = filepath.Join(tmp, "backups")
	h.view.copies = "2"

	h.view.saveHandler()
	h.wait(t)

	infos, errs, statuses := h.view.snapshot()
	assert.Empty(t, infos)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].message, "Error saving original file:")
	assert.Contains(t, errs[0].message, "no such file or directory")

	var writeErr *backup.WriteError
	assert.True(t, errors.As(errs[0].err, &writeErr))
	assert.Equal(t, "Save failed: out.txt", statuses[len(statuses)-1])

	matches, err := filepath.Glob(filepath.Join(tmp, "backups", "out.txt_backup_*.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, 2, "backups complete even though the original failed")
}

func TestTriggerSaveDetachedOriginalFailure(t *testing.T) {
	tmp := t.TempDir()
	h := newHarness(t, afero.NewOsFs(), models.SaveModeDetached)
	h.view.dest = filepath.Join(tmp, "missing", "out.txt")
	h.view.backupDir = filepath.Join(tmp, "backups")

	h.view.saveHandler()
	h.wait(t)

	infos, errs, _ := h.view.snapshot()
	require.Len(t, infos, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].message, "Error saving original file:")
}

func TestTriggerSaveReportsFailedBackups(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0o644))

	h := newHarness(t, afero.NewOsFs(), models.SaveModeAwaited)
	h.view.dest = filepath.Join(tmp, "out.txt")
	h.view.backupDir = filepath.Join(blocker, "backups")
	h.view.copies = "2"

	h.view.saveHandler()
	h.wait(t)

	infos, errs, statuses := h.view.snapshot()
	assert.Empty(t, errs)
	require.Len(t, infos, 1)
	assert.Equal(t, "File and copies saved successfully!\n2 of 2 backup copies could not be written.", infos[0].message)
	assert.Equal(t, "Saved out.txt, 0 backup copies, 2 failed", statuses[len(statuses)-1])
}
