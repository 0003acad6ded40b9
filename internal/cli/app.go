package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
)

// DefaultConfigPath is used when no application file is given.
const DefaultConfigPath = "waypoint.yaml"

// LoadApp builds the application described by path.
func LoadApp(path string, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*waypoint.App, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	opts := []waypoint.Option{
		waypoint.WithLogger(logger),
		waypoint.WithLifecycleHooks(domain.MergeHooks(append([]domain.LifecycleHooks{observability.LogHooks(logger)}, hooks...)...)),
	}
	app, err := waypoint.FromConfig(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}
	return app, nil
}
