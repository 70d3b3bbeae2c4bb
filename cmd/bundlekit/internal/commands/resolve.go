package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ResolveCmd prints the normalized configuration.
type ResolveCmd struct {
	ConfigFlags `embed:""`
	Format      string `help:"Output format" default:"json" enum:"json,yaml" env:"BUNDLEKIT_FORMAT"`
}

func (c *ResolveCmd) Run(ctx context.Context, globals *Globals) error {
	w := globals.out()

	cfg, err := c.resolve(w)
	if err != nil {
		return err
	}

	var out []byte
	switch c.Format {
	case "yaml":
		out, err = yaml.Marshal(cfg)
	default:
		out, err = json.MarshalIndent(cfg, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = w.Write(out)
	return err
}
