// Package bundler hands a resolved BuildConfig to esbuild and reports what it
// emitted.
package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlekit/internal/buildconfig"
)

// DefaultMetafileName is written to the output directory after every build.
const DefaultMetafileName = "meta.json"

// Engine builds a resolved configuration.
type Engine interface {
	Run(ctx context.Context, cfg *buildconfig.BuildConfig) (*Report, error)
}

var _ Engine = (*ESBuild)(nil)

// ESBuild runs builds with esbuild. It holds no per-build state and may be
// shared between goroutines.
type ESBuild struct {
	Registry     Registry
	MetafileName string
}

// NewESBuild returns an engine using the default handler registry.
func NewESBuild() *ESBuild {
	return &ESBuild{
		Registry:     DefaultRegistry(),
		MetafileName: DefaultMetafileName,
	}
}

// Run builds cfg into cfg.Output.Directory.
func (e *ESBuild) Run(ctx context.Context, cfg *buildconfig.BuildConfig) (*Report, error) {
	if len(cfg.Entries) == 0 {
		return nil, ErrNoEntries
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts, err := e.buildOptions(cfg)
	if err != nil {
		return nil, err
	}

	buildID := uuid.New().String()
	logger := log.With().Str("build_id", buildID).Logger()

	logger.Info().Strs("entrypoints", cfg.Entries.Names()).Str("mode", cfg.Mode.String()).Msg("Building bundle")

	started := time.Now()

	bctx, cerr := api.Context(opts)
	if cerr != nil {
		return nil, newBuildError(cerr.Errors)
	}
	defer bctx.Dispose()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			bctx.Cancel()
		case <-done:
		}
	}()
	result := bctx.Rebuild()
	close(done)
	<-stopped

	if len(result.Errors) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, msg := range result.Errors {
			logger.Error().Str("error", formatMessage(msg)).Msg("Build error")
		}
		return nil, newBuildError(result.Errors)
	}

	for _, file := range result.OutputFiles {
		logger.Debug().Str("file", file.Path).Msg("Built file")
	}

	metafileName := cond(e.MetafileName != "", e.MetafileName, DefaultMetafileName)
	if err := renameio.WriteFile(filepath.Join(cfg.Output.Directory, metafileName), []byte(result.Metafile), 0644); err != nil {
		return nil, fmt.Errorf("failed to write metafile: %w", err)
	}

	report, err := newReport(cfg, result.Metafile, opts.AbsWorkingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}
	report.BuildID = buildID
	report.Duration = time.Since(started)
	for _, msg := range result.Warnings {
		report.Warnings = append(report.Warnings, formatMessage(msg))
	}

	logger.Info().Int("artifacts", len(report.Artifacts)).Dur("duration", report.Duration).Msg("Bundle built")

	return report, nil
}

func (e *ESBuild) buildOptions(cfg *buildconfig.BuildConfig) (api.BuildOptions, error) {
	production := cfg.Mode == buildconfig.ModeProduction

	outExt, err := outputExtension(cfg.Output.FilenamePattern)
	if err != nil {
		return api.BuildOptions{}, err
	}

	entryPoints := make([]api.EntryPoint, 0, len(cfg.Entries))
	for _, entry := range cfg.Entries {
		out := strings.TrimSuffix(cfg.Output.Filename(entry.Name), outExt)
		entryPoints = append(entryPoints, api.EntryPoint{InputPath: entry.Path, OutputPath: out})
	}

	opts := api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		AbsWorkingDir:       cfg.Context,
		Bundle:              true,
		Splitting:           true,
		Write:               true,
		Outdir:              cfg.Output.Directory,
		PublicPath:          cond(cfg.Output.PublicPath == "auto", "", cfg.Output.PublicPath),
		Format:              api.FormatESModule,
		MinifyWhitespace:    production,
		MinifyIdentifiers:   production,
		MinifySyntax:        production,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(production, api.SourceMapNone, api.SourceMapLinked),
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
		Define: map[string]string{
			"process.env.NODE_ENV": fmt.Sprintf("%q", cfg.Mode),
		},
	}
	if outExt != ".js" {
		opts.OutExtension = map[string]string{".js": outExt}
	}
	if len(cfg.Rules) > 0 {
		registry := e.Registry
		if registry == nil {
			registry = DefaultRegistry()
		}
		opts.Plugins = []api.Plugin{rulesPlugin(cfg, registry)}
	}

	return opts, nil
}

// outputExtension validates the filename pattern against what esbuild can
// honour for named entry points and returns the script extension it implies.
func outputExtension(pattern string) (string, error) {
	for _, token := range []string{"[hash]", "[contenthash]", "[chunkhash]", "[id]"} {
		if strings.Contains(pattern, token) {
			return "", fmt.Errorf("%w: %s in %q", ErrUnsupportedFilename, token, pattern)
		}
	}
	switch ext := filepath.Ext(pattern); ext {
	case ".js", ".mjs", ".cjs":
		return ext, nil
	case "":
		return ".js", nil
	default:
		return "", fmt.Errorf("%w: extension %q in %q", ErrUnsupportedFilename, ext, pattern)
	}
}

// rulesPlugin applies the configured transform rules through esbuild's
// on-load hook. Files no rule selects fall through to esbuild's defaults.
func rulesPlugin(cfg *buildconfig.BuildConfig, registry Registry) api.Plugin {
	return api.Plugin{
		Name: "bundlekit-rules",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					rel := relativeTo(cfg.Context, args.Path)

					chain := buildconfig.HandlerChain(rel, cfg.Rules)
					if len(chain) == 0 {
						return api.OnLoadResult{}, nil
					}

					loader, err := registry.LoaderFor(args.Path, chain)
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("%s: %w", rel, err)
					}

					contents, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					text := string(contents)

					log.Debug().Str("file", rel).Int("handlers", len(chain)).Msg("Applying rules")

					return api.OnLoadResult{
						Contents:   &text,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     loader,
					}, nil
				})
		},
	}
}

func relativeTo(base, p string) string {
	if base == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
