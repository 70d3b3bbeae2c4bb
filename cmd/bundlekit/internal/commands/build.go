package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlekit/internal/buildconfig"
	"github.com/wolfeidau/bundlekit/internal/bundler"
)

// BuildCmd resolves the configuration and bundles it with esbuild.
type BuildCmd struct {
	ConfigFlags `embed:""`
	Mode        string        `help:"Override the configured mode (development or production)" env:"BUNDLEKIT_MODE"`
	Timeout     time.Duration `help:"Abort the build after this long" default:"5m" env:"BUNDLEKIT_TIMEOUT"`

	engine bundler.Engine
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	w := globals.out()

	cfg, err := c.resolve(w, buildconfig.WithMode(c.Mode))
	if err != nil {
		return err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	engine := c.engine
	if engine == nil {
		engine = bundler.NewESBuild()
	}

	report, err := engine.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", c.Config, err)
	}

	for _, warning := range report.Warnings {
		log.Warn().Str("build_id", report.BuildID).Str("warning", warning).Msg("Build warning")
	}

	fmt.Fprintf(w, "Built %d files into %s in %s (build %s)\n", len(report.Artifacts), cfg.Output.Directory, report.Duration.Round(time.Millisecond), report.BuildID)
	for _, a := range report.Artifacts {
		if a.Entry != "" {
			fmt.Fprintf(w, "  %-40s %8d  (entry %s)\n", a.Path, a.Bytes, a.Entry)
			continue
		}
		fmt.Fprintf(w, "  %-40s %8d\n", a.Path, a.Bytes)
	}

	return nil
}
