package commands

import (
	"context"

	"github.com/wolfeidau/bundlekit/internal/buildconfig"
)

// SchemaCmd prints the JSON schema configuration files are checked against.
type SchemaCmd struct{}

func (c *SchemaCmd) Run(ctx context.Context, globals *Globals) error {
	_, err := globals.out().Write(buildconfig.Schema())
	return err
}
