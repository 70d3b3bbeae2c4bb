package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfeidau/bundlekit/internal/buildconfig"
)

// MatchCmd shows which rules select the given files.
type MatchCmd struct {
	ConfigFlags `embed:""`
	Paths       []string `arg:"" help:"File paths, relative to the build context"`
}

func (c *MatchCmd) Run(ctx context.Context, globals *Globals) error {
	w := globals.out()

	cfg, err := c.resolve(w)
	if err != nil {
		return err
	}

	for _, p := range c.Paths {
		rules := buildconfig.OrderedRulesFor(p, cfg.Rules)
		if len(rules) == 0 {
			fmt.Fprintf(w, "%s: no rules\n", p)
			continue
		}

		fmt.Fprintf(w, "%s:\n", p)
		for _, rule := range rules {
			fmt.Fprintf(w, "  %s\n", rule)
		}

		chain := buildconfig.HandlerChain(p, cfg.Rules)
		names := make([]string, 0, len(chain))
		for _, h := range chain {
			names = append(names, h.Name)
		}
		fmt.Fprintf(w, "  chain: %s\n", strings.Join(names, " -> "))
	}

	return nil
}
