package bundler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/bundlekit/internal/buildconfig"
)

// LoaderFunc picks the esbuild loader a handler implies for a file.
type LoaderFunc func(path string) api.Loader

// Registry maps handler names to esbuild loaders.
type Registry map[string]LoaderFunc

// DefaultRegistry covers the webpack loaders esbuild has a native equivalent for.
func DefaultRegistry() Registry {
	script := func(path string) api.Loader {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ts", ".mts", ".cts":
			return api.LoaderTS
		case ".tsx":
			return api.LoaderTSX
		case ".jsx":
			return api.LoaderJSX
		default:
			return api.LoaderJS
		}
	}
	fixed := func(l api.Loader) LoaderFunc {
		return func(string) api.Loader { return l }
	}

	return Registry{
		"babel-loader":   script,
		"ts-loader":      script,
		"esbuild-loader": script,
		"swc-loader":     script,
		"style-loader":   fixed(api.LoaderCSS),
		"css-loader":     fixed(api.LoaderCSS),
		"postcss-loader": fixed(api.LoaderCSS),
		"file-loader":    fixed(api.LoaderFile),
		"url-loader":     fixed(api.LoaderDataURL),
		"raw-loader":     fixed(api.LoaderText),
		"json-loader":    fixed(api.LoaderJSON),
	}
}

// LoaderFor returns the loader for a handler chain. The outermost handler
// decides; every handler in the chain must be known.
func (r Registry) LoaderFor(path string, chain []buildconfig.Handler) (api.Loader, error) {
	if len(chain) == 0 {
		return api.LoaderNone, nil
	}
	for _, h := range chain {
		if _, ok := r[h.Name]; !ok {
			return api.LoaderNone, fmt.Errorf("%w: %q", ErrUnsupportedHandler, h.Name)
		}
	}
	return r[chain[0].Name](path), nil
}
