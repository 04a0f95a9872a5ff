// Package runner drives scheduled sync passes: single instance
// locking, spreadsheet access preflight and the interval loop.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"sheetsync/internal/transfer"
	"sheetsync/internal/utils"
)

const DefaultInterval = time.Hour

var (
	home, _         = os.UserHomeDir()
	DefaultLockPath = filepath.Join(home, ".sheetsync", "sheetsync.lock")

	ErrAlreadyRunning = errors.New("another sheetsync instance holds the lock")
)

// Syncer runs one sync pass.
type Syncer interface {
	RunOnce(ctx context.Context, now time.Time) (*transfer.Report, error)
}

// Prober verifies a spreadsheet is reachable with the configured
// credentials and returns its title.
type Prober interface {
	Probe(ctx context.Context, spreadsheetID string) (string, error)
}

type Config struct {
	SourceSpreadsheetID string
	DestSpreadsheetID   string
	Interval            time.Duration
	LockPath            string
}

type Runner struct {
	syncer Syncer
	prober Prober
	cfg    Config
	flock  *flock.Flock
}

func New(syncer Syncer, prober Prober, cfg *Config) *Runner {
	c := *cfg
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.LockPath == "" {
		c.LockPath = DefaultLockPath
	}

	return &Runner{
		syncer: syncer,
		prober: prober,
		cfg:    c,
		flock:  flock.New(c.LockPath),
	}
}

// Start locks, checks access to both spreadsheets, then syncs
// immediately and on every interval until the context is cancelled.
// A failed pass is logged and the loop keeps going.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.unlock()

	if err := r.preflight(ctx); err != nil {
		return fmt.Errorf("spreadsheet access check: %w", err)
	}

	slog.Info("runner start", "interval", r.cfg.Interval)
	r.syncPass(ctx)

	// a timer and not a ticker, so a pass that outlasts the interval
	// does not queue up extra ticks
	timer := time.NewTimer(r.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("runner stop")
			return ctx.Err()
		case <-timer.C:
			r.syncPass(ctx)
			timer.Reset(r.cfg.Interval)
		}
	}
}

// RunOnce locks, checks access and performs a single pass.
func (r *Runner) RunOnce(ctx context.Context) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.unlock()

	if err := r.preflight(ctx); err != nil {
		return fmt.Errorf("spreadsheet access check: %w", err)
	}

	_, err := r.syncer.RunOnce(ctx, time.Now())
	return err
}

func (r *Runner) syncPass(ctx context.Context) {
	if _, err := r.syncer.RunOnce(ctx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("sync run failed", "error", err)
	}
}

func (r *Runner) preflight(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		title, err := r.prober.Probe(egCtx, r.cfg.SourceSpreadsheetID)
		if err != nil {
			return fmt.Errorf("source spreadsheet: %w", err)
		}
		slog.Info("source spreadsheet ok", "title", title, "id", utils.MaskSecret(r.cfg.SourceSpreadsheetID))
		return nil
	})

	eg.Go(func() error {
		title, err := r.prober.Probe(egCtx, r.cfg.DestSpreadsheetID)
		if err != nil {
			return fmt.Errorf("destination spreadsheet: %w", err)
		}
		slog.Info("destination spreadsheet ok", "title", title, "id", utils.MaskSecret(r.cfg.DestSpreadsheetID))
		return nil
	})

	return eg.Wait()
}

func (r *Runner) lock() error {
	if err := utils.EnsureParent(r.flock.Path()); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	locked, err := r.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", r.flock.Path(), err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	return nil
}

func (r *Runner) unlock() {
	// never remove a lock file this process does not hold
	if !r.flock.Locked() {
		return
	}

	if err := r.flock.Unlock(); err != nil {
		slog.Warn("release lock", "error", err)
		return
	}
	_ = os.Remove(r.flock.Path())
}
