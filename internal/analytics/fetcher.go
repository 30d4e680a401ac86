package analytics

import (
	"context"
	"log/slog"
)

// Fetcher runs every configured source and merges the batches into one
// deduplicated table. Per-source failures are logged and skipped so one
// broken API never hides the others' numbers.
type Fetcher struct {
	sources []Source
	logger  *slog.Logger
}

func NewFetcher(sources []Source, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{sources: sources, logger: logger}
}

// Configured lists the platforms that have credentials for metrics.
func (f *Fetcher) Configured() []string {
	var names []string
	for _, src := range f.sources {
		if src.Configured() {
			names = append(names, src.Platform())
		}
	}
	return names
}

func (f *Fetcher) FetchAll(ctx context.Context, limit int) []Metric {
	var batches [][]Metric
	for _, src := range f.sources {
		if !src.Configured() {
			f.logger.Debug("Metrics source not configured", "platform", src.Platform())
			continue
		}
		batch, err := src.Fetch(ctx, limit)
		if err != nil {
			f.logger.Warn("Metrics fetch failed", "platform", src.Platform(), "error", err)
			continue
		}
		batches = append(batches, batch)
	}
	return Merge(batches...)
}
