package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backup-editor/internal/backup"
	"backup-editor/internal/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitReport(t *testing.T, p *Pending) *models.SaveReport {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	report, err := p.Wait(ctx)
	require.NoError(t, err)
	return report
}

func TestSaveWritesOriginalAndBackups(t *testing.T) {
	tmp := t.TempDir()
	dest := filepath.Join(tmp, "out.txt")
	backupDir := filepath.Join(tmp, "backups")

	svc := NewSaveService(backup.NewWriter(afero.NewOsFs(), nil), nil, 4, time.Second)
	report := waitReport(t, svc.Save(models.NewSaveRequest(dest, backupDir, 3, "hello world")))

	require.True(t, report.Succeeded())
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	matches, err := filepath.Glob(filepath.Join(backupDir, "out.txt_backup_*.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.ElementsMatch(t, matches, report.WrittenBackups())

	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	}
}

func TestSaveCopyCounts(t *testing.T) {
	tests := []struct {
		name   string
		copies int
		want   int
	}{
		{"zero copies", 0, 0},
		{"negative copies", -3, 0},
		{"one copy", 1, 1},
		{"more copies than workers", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			svc := NewSaveService(backup.NewWriter(fs, nil), nil, 2, time.Second)

			report := waitReport(t, svc.Save(models.NewSaveRequest("/docs/out.txt", "/backups", tt.copies, "body")))

			require.True(t, report.Succeeded())
			assert.Len(t, report.Backups, tt.want)

			exists, err := afero.Exists(fs, "/docs/out.txt")
			require.NoError(t, err)
			assert.True(t, exists)

			entries, err := afero.ReadDir(fs, "/backups")
			if tt.want == 0 {
				assert.True(t, err != nil || len(entries) == 0)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestSaveOriginalFailureDoesNotStopBackups(t *testing.T) {
	tmp := t.TempDir()
	dest := filepath.Join(tmp, "missing-parent", "out.txt")
	backupDir := filepath.Join(tmp, "backups")

	svc := NewSaveService(backup.NewWriter(afero.NewOsFs(), nil), nil, 0, time.Second)
	pending := svc.Save(models.NewSaveRequest(dest, backupDir, 2, "text"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	origErr := pending.Original(ctx)

	var writeErr *backup.WriteError
	require.True(t, errors.As(origErr, &writeErr))
	assert.Equal(t, backup.OpOriginal, writeErr.Op)
	assert.True(t, errors.Is(origErr, os.ErrNotExist))

	report := waitReport(t, pending)
	assert.False(t, report.Succeeded())
	assert.Len(t, report.WrittenBackups(), 2)
	assert.Empty(t, report.FailedBackups())
}

func TestSaveBackupFailuresAreCollected(t *testing.T) {
	tmp := t.TempDir()
	dest := filepath.Join(tmp, "out.txt")
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	svc := NewSaveService(backup.NewWriter(afero.NewOsFs(), nil), nil, 0, time.Second)
	report := waitReport(t, svc.Save(models.NewSaveRequest(dest, blocker, 3, "text")))

	assert.True(t, report.Succeeded())
	assert.Len(t, report.FailedBackups(), 3)
	assert.Empty(t, report.WrittenBackups())

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats.Saves)
	assert.Equal(t, int64(3), stats.BackupsFailed)
	assert.Equal(t, int64(0), stats.BackupsWritten)
}

func TestSaveUsesContentSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	svc := NewSaveService(backup.NewWriter(fs, nil), nil, 1, time.Second)

	doc := models.NewDocument()
	doc.SetText("before")
	req := models.NewSaveRequest("/out.txt", "/b", 5, doc.Text())
	doc.SetText("after")

	report := waitReport(t, svc.Save(req))
	for _, path := range report.WrittenBackups() {
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, "before", string(data))
	}
	data, err := afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "before", string(data))
}

func TestDrainWaitsForDetachedSaves(t *testing.T) {
	tmp := t.TempDir()
	svc := NewSaveService(backup.NewWriter(afero.NewOsFs(), nil), nil, 0, 5*time.Second)

	for i := 0; i < 5; i++ {
		svc.Save(models.NewSaveRequest(filepath.Join(tmp, "out.txt"), filepath.Join(tmp, "b"), 4, strings.Repeat("x", 1024)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Drain(ctx))

	entries, err := os.ReadDir(filepath.Join(tmp, "b"))
	require.NoError(t, err)
	assert.Len(t, entries, 20)

	svc.Shutdown()
	assert.Equal(t, int64(20), svc.Stats().BackupsWritten)
}

func TestWaitHonorsContext(t *testing.T) {
	p := newPending(models.NewSaveRequest("a", "b", 0, ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, p.Original(ctx), context.Canceled)
}
