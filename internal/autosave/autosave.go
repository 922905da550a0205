// Package autosave periodically writes canvas snapshots while there are
// unsaved edits.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/history"
	"github.com/venkeey/viscanvas-sub000/internal/snapshot"
)

const DefaultInterval = 30 * time.Second

// Source produces a consistent snapshot of the canvas.
type Source interface {
	Snapshot(documentID string) (*document.Snapshot, error)
}

type Config struct {
	Enabled    bool
	Interval   time.Duration
	DocumentID string
}

// Saver takes a snapshot under the engine lock and writes it outside it.
type Saver struct {
	src    Source
	dst    snapshot.Store
	cfg    Config
	logger *slog.Logger
	dirty  atomic.Bool
	saves  atomic.Int64
}

func New(src Source, dst snapshot.Store, cfg Config, logger *slog.Logger) *Saver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{src: src, dst: dst, cfg: cfg, logger: logger}
}

// MarkDirty records that the canvas changed. It has the history subscriber
// signature and never blocks.
func (s *Saver) MarkDirty(c history.Change) {
	if c.Op == history.OpClear {
		return
	}
	s.dirty.Store(true)
}

func (s *Saver) Dirty() bool { return s.dirty.Load() }

// Saves returns the number of successful saves.
func (s *Saver) Saves() int64 { return s.saves.Load() }

// Run saves on every tick while dirty and flushes once more when ctx is
// cancelled. It returns immediately when autosave is disabled.
func (s *Saver) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("autosave disabled")
		return
	}
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.saveIfDirty(ctx)
		case <-ctx.Done():
			// The run context is gone; give the final write its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s.saveIfDirty(flushCtx)
			cancel()
			return
		}
	}
}

func (s *Saver) saveIfDirty(ctx context.Context) {
	if !s.dirty.Swap(false) {
		return
	}
	if err := s.SaveNow(ctx); err != nil {
		s.dirty.Store(true)
		s.logger.Error("autosave failed", "document", s.cfg.DocumentID, "error", err)
	}
}

// SaveNow writes a snapshot regardless of the dirty flag.
func (s *Saver) SaveNow(ctx context.Context) error {
	snap, err := s.src.Snapshot(s.cfg.DocumentID)
	if err != nil {
		return fmt.Errorf("take snapshot: %w", err)
	}
	if err := s.dst.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.saves.Add(1)
	s.logger.Info("canvas saved", "document", snap.DocumentID, "version", snap.Version, "objects", len(snap.Objects))
	return nil
}
