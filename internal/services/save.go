package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"backup-editor/internal/backup"
	"backup-editor/internal/logger"
	"backup-editor/internal/models"

	"golang.org/x/sync/errgroup"
)

// SaveStats are running totals since the service started.
type SaveStats struct {
	Saves            int64
	OriginalFailures int64
	BackupsWritten   int64
	BackupsFailed    int64
}

// SaveService runs the write tasks for each SaveRequest: one for the
// destination file and one per backup copy. Tasks are independent; a failed
// write never stops its siblings and nothing is retried.
type SaveService struct {
	writer          *backup.Writer
	logger          logger.Logger
	maxConcurrency  int
	shutdownTimeout time.Duration

	inflight sync.WaitGroup

	saves            atomic.Int64
	originalFailures atomic.Int64
	backupsWritten   atomic.Int64
	backupsFailed    atomic.Int64
}

// NewSaveService creates a save service. maxConcurrency bounds the number of
// writes running at once for a single save; zero or less means unbounded.
func NewSaveService(writer *backup.Writer, log logger.Logger, maxConcurrency int, shutdownTimeout time.Duration) *SaveService {
	if log == nil {
		log = logger.Nop()
	}
	return &SaveService{
		writer:          writer,
		logger:          log,
		maxConcurrency:  maxConcurrency,
		shutdownTimeout: shutdownTimeout,
	}
}

// Save starts all write tasks for req and returns without waiting for them.
func (s *SaveService) Save(req models.SaveRequest) *Pending {
	pending := newPending(req)
	s.inflight.Add(1)
	s.saves.Add(1)

	s.logger.Info("SaveService", "save started", map[string]interface{}{
		"destination": req.Destination,
		"backup_dir":  req.BackupDir,
		"copies":      req.Copies,
		"bytes":       len(req.Content),
	})

	go func() {
		defer s.inflight.Done()
		start := time.Now()

		var g errgroup.Group
		if s.maxConcurrency > 0 {
			g.SetLimit(s.maxConcurrency)
		}

		copies := max(req.Copies, 0)
		backups := make([]models.BackupResult, copies)

		g.Go(func() error {
			err := s.writer.WriteOriginal(req.Destination, req.Content)
			if err != nil {
				s.originalFailures.Add(1)
				s.logger.Error("SaveService", err, map[string]interface{}{
					"destination": req.Destination,
				})
			}
			pending.resolveOriginal(err)
			return nil
		})

		for i := 0; i < copies; i++ {
			i := i
			g.Go(func() error {
				path, err := s.writer.SaveCopy(req.Destination, req.BackupDir, req.Content)
				if err != nil {
					s.backupsFailed.Add(1)
					s.logger.Error("SaveService", err, map[string]interface{}{
						"backup_dir": req.BackupDir,
						"copy":       i,
					})
				} else {
					s.backupsWritten.Add(1)
				}
				backups[i] = models.BackupResult{Path: path, Err: err}
				return nil
			})
		}

		_ = g.Wait()

		report := &models.SaveReport{
			Request:     req,
			OriginalErr: pending.originalErr,
			Backups:     backups,
			Duration:    time.Since(start),
		}

		s.logger.Info("SaveService", "save finished", map[string]interface{}{
			"destination":    req.Destination,
			"original_ok":    report.Succeeded(),
			"backups_ok":     len(report.WrittenBackups()),
			"backups_failed": len(report.FailedBackups()),
			"duration_ms":    report.Duration.Milliseconds(),
		})

		pending.finish(report)
	}()

	return pending
}

// Stats returns the running totals.
func (s *SaveService) Stats() SaveStats {
	return SaveStats{
		Saves:            s.saves.Load(),
		OriginalFailures: s.originalFailures.Load(),
		BackupsWritten:   s.backupsWritten.Load(),
		BackupsFailed:    s.backupsFailed.Load(),
	}
}

// Drain blocks until every started save has finished or ctx is done.
func (s *SaveService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown waits for in-flight saves up to the configured timeout.
func (s *SaveService) Shutdown() {
	ctx := context.Background()
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	if err := s.Drain(ctx); err != nil {
		s.logger.Warning("SaveService", "shutdown before all writes finished", map[string]interface{}{
			"timeout": s.shutdownTimeout.String(),
		})
		return
	}

	stats := s.Stats()
	s.logger.Info("SaveService", "shutdown complete", map[string]interface{}{
		"saves":             stats.Saves,
		"original_failures": stats.OriginalFailures,
		"backups_written":   stats.BackupsWritten,
		"backups_failed":    stats.BackupsFailed,
	})
}
