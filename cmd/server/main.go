package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/venkeey/viscanvas-sub000/internal/api"
	"github.com/venkeey/viscanvas-sub000/internal/autosave"
	"github.com/venkeey/viscanvas-sub000/internal/config"
	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/engine"
	"github.com/venkeey/viscanvas-sub000/internal/feed"
	"github.com/venkeey/viscanvas-sub000/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		slog.Error("open snapshot store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	eng := engine.New(engine.Options{
		HistoryCapacity: cfg.HistoryCapacity,
		IndexCapacity:   cfg.IndexCapacity,
		IndexMaxDepth:   cfg.IndexMaxDepth,
		WorldExtent:     cfg.WorldExtent,
		Logger:          slog.Default(),
	})

	snap, err := store.Latest(ctx, cfg.DocumentID)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		slog.Info("no saved canvas, starting from sample", "document", cfg.DocumentID)
		snap = document.NewSampleSnapshot(cfg.DocumentID)
	case err != nil:
		slog.Error("load latest snapshot", "error", err)
		os.Exit(1)
	}
	if err := eng.Load(snap); err != nil {
		slog.Error("load canvas", "error", err)
		os.Exit(1)
	}

	// Late joiners receive the whole canvas, then incremental changes.
	hub := feed.NewHub(func() (json.RawMessage, error) {
		snap, err := eng.Snapshot(cfg.DocumentID)
		if err != nil {
			return nil, err
		}
		return document.Marshal(snap)
	})
	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)
	eng.Subscribe(hub.Publish)

	saver := autosave.New(eng, store, autosave.Config{
		Enabled:    cfg.AutosaveEnabled,
		Interval:   cfg.AutosaveInterval,
		DocumentID: cfg.DocumentID,
	}, slog.Default())
	eng.Subscribe(saver.MarkDirty)

	saverCtx, stopSaver := context.WithCancel(ctx)
	saverDone := make(chan struct{})
	go func() {
		defer close(saverDone)
		saver.Run(saverCtx)
	}()

	handler := api.NewHandler(eng, cfg.DocumentID, saver)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, hub, cfg.Origins()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Disconnect feed clients first so hijacked connections don't hold
		// Shutdown open.
		stopHub()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "document", cfg.DocumentID)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	// Flush unsaved edits.
	slog.Info("saving canvas...")
	stopSaver()
	<-saverDone
}

func openSnapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres snapshot store")
		return snapshot.NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	slog.Info("using file snapshot store", "dir", cfg.SnapshotDir)
	return snapshot.NewFileStore(cfg.SnapshotDir)
}
