// Package knowledge defines the graph-store hook invoked once per
// completed run. Implementations can push topics and scripts into an
// external graph; the default just logs.
package knowledge

import (
	"context"
	"log/slog"

	"autoreel/internal/reel"
)

// Graph records what a run was about and what it produced.
type Graph interface {
	RecordTopic(ctx context.Context, productName, description string) error
	RecordScript(ctx context.Context, productName string, script *reel.GeneratedScript) error
	RecordRelationship(ctx context.Context, from, relation, to string) error
}

// LogGraph emits graph writes as structured log events. It stands in
// until a real graph store is wired.
type LogGraph struct {
	logger *slog.Logger
}

var _ Graph = (*LogGraph)(nil)

func NewLogGraph(logger *slog.Logger) *LogGraph {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGraph{logger: logger}
}

func (g *LogGraph) RecordTopic(ctx context.Context, productName, description string) error {
	g.logger.Debug("knowledge: topic", "product", productName)
	return nil
}

func (g *LogGraph) RecordScript(ctx context.Context, productName string, script *reel.GeneratedScript) error {
	platforms := make([]string, 0, len(script.Captions))
	for p := range script.Captions {
		platforms = append(platforms, p)
	}
	g.logger.Debug("knowledge: script", "product", productName, "platforms", platforms)
	return nil
}

func (g *LogGraph) RecordRelationship(ctx context.Context, from, relation, to string) error {
	g.logger.Debug("knowledge: relationship", "from", from, "relation", relation, "to", to)
	return nil
}
