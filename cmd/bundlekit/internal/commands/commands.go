package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/bundlekit/internal/buildconfig"
)

// ErrInvalidConfig is returned after validation problems have been printed.
var ErrInvalidConfig = errors.New("configuration is invalid")

type Globals struct {
	Debug   bool
	Version string
	Out     io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// ConfigFlags are shared by every command that reads a configuration file.
type ConfigFlags struct {
	Config  string `arg:"" help:"Path to the build configuration (YAML or JSON)" type:"existingfile"`
	BaseDir string `help:"Directory relative paths are resolved against (default: the config file's directory)" env:"BUNDLEKIT_BASE_DIR"`
}

func (f ConfigFlags) resolve(w io.Writer, overrides ...buildconfig.Override) (*buildconfig.BuildConfig, error) {
	cfg, err := buildconfig.ResolveFile(f.Config, buildconfig.Resolver{BaseDir: f.BaseDir}, overrides...)
	if err != nil {
		return nil, explain(w, f.Config, err)
	}
	return cfg, nil
}

// explain prints every validation problem in err, naming the offending field.
func explain(w io.Writer, config string, err error) error {
	verrs := buildconfig.ValidationErrors(err)
	if len(verrs) == 0 {
		return err
	}

	fmt.Fprintf(w, "%s:\n", config)
	for _, ve := range verrs {
		fmt.Fprintf(w, "  %s [%s]: %s\n", ve.Field, ve.Kind, ve.Error())
	}
	return fmt.Errorf("%s: %w", config, ErrInvalidConfig)
}
