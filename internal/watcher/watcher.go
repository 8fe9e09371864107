// Package watcher monitors the data directory for catalog changes.
//
// When CSV files appear in or leave the directory, connected dashboard
// clients are notified so the dataset list stays current without a reload.
package watcher

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/mbd888/fraudlens/internal/dataset"
	"github.com/mbd888/fraudlens/internal/metrics"
)

// Notifier receives catalog change announcements.
type Notifier interface {
	BroadcastCatalogChanged(added, removed []string, total int)
}

// Config for the catalog watcher
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		PollInterval: 15 * time.Second,
	}
}

// Watcher polls the dataset catalog and announces changes.
type Watcher struct {
	loader   *dataset.Loader
	config   Config
	notifier Notifier
	logger   *slog.Logger

	// File names seen on the previous poll
	known map[string]bool
}

// New creates a catalog watcher over the loader's directory.
func New(cfg Config, loader *dataset.Loader, notifier Notifier, logger *slog.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	return &Watcher{
		loader:   loader,
		config:   cfg,
		notifier: notifier,
		logger:   logger,
	}
}

// Run snapshots the current catalog and polls until ctx is cancelled.
// Files already present at startup are not announced.
func (w *Watcher) Run(ctx context.Context) {
	w.known = names(w.loader.List())

	w.logger.Info("catalog watcher started",
		"dir", w.loader.Dir(),
		"files", len(w.known),
		"interval", w.config.PollInterval,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.checkCatalog()
		}
	}
}

// checkCatalog diffs the directory listing against the previous poll and
// announces any difference.
func (w *Watcher) checkCatalog() {
	current := names(w.loader.List())

	added := []string{}
	removed := []string{}
	for name := range current {
		if !w.known[name] {
			added = append(added, name)
		}
	}
	for name := range w.known {
		if !current[name] {
			removed = append(removed, name)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	sort.Strings(added)
	sort.Strings(removed)

	w.logger.Info("dataset catalog changed",
		"added", added,
		"removed", removed,
		"total", len(current),
	)
	metrics.CatalogChangesTotal.Inc()
	if w.notifier != nil {
		w.notifier.BroadcastCatalogChanged(added, removed, len(current))
	}

	w.known = current
}

func names(infos []dataset.Info) map[string]bool {
	m := make(map[string]bool, len(infos))
	for _, info := range infos {
		m[info.Name] = true
	}
	return m
}
