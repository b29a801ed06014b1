package services

import (
	"context"

	"backup-editor/internal/models"
)

// Pending is the handle for a save whose writes may still be running.
type Pending struct {
	Request models.SaveRequest

	originalDone chan struct{}
	originalErr  error

	done   chan struct{}
	report *models.SaveReport
}

func newPending(req models.SaveRequest) *Pending {
	return &Pending{
		Request:      req,
		originalDone: make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (p *Pending) resolveOriginal(err error) {
	p.originalErr = err
	close(p.originalDone)
}

func (p *Pending) finish(report *models.SaveReport) {
	p.report = report
	close(p.done)
}

// Done is closed once every task has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Original waits for the destination write only and returns its error.
func (p *Pending) Original(ctx context.Context) error {
	select {
	case <-p.originalDone:
		return p.originalErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every task has finished and returns the aggregate report.
func (p *Pending) Wait(ctx context.Context) (*models.SaveReport, error) {
	select {
	case <-p.done:
		return p.report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
