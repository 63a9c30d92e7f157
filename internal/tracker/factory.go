package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/driver"
)

// New builds the tracker named by cfg.Tracker.Backend.
func New(ctx context.Context, cfg *config.Config) (Tracker, error) {
	switch strings.ToLower(cfg.Tracker.Backend) {
	case "none", "":
		return Nop{}, nil

	case "log":
		return NewLogTracker(slog.Default().With("component", "tracker", "project", cfg.RunName())), nil

	case "sqlite":
		return NewSQLiteTracker(cfg.Tracker.SQLitePath)

	case "memgraph":
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to memgraph: %w", err)
		}
		if err := d.BuildIndices(ctx); err != nil {
			return nil, err
		}
		return NewMemgraphTracker(d), nil

	default:
		return nil, fmt.Errorf("unsupported tracker backend: %s", cfg.Tracker.Backend)
	}
}
