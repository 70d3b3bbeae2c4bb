package bundler

import (
	"encoding/json"
	"errors"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/wolfeidau/bundlekit/internal/buildconfig"
)

// Metafile is the subset of the esbuild metafile the report needs.
type Metafile struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	Bytes      int          `json:"bytes"`
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	CSSBundle  string       `json:"cssBundle"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

// Artifact is one emitted file.
type Artifact struct {
	// Path is relative to the output directory, in slash form.
	Path string `json:"path"`
	// Entry names the entry point the file was built for, empty for shared chunks.
	Entry string `json:"entry,omitempty"`
	Bytes int    `json:"bytes"`
}

// Report describes a finished build.
type Report struct {
	BuildID   string        `json:"buildId"`
	Artifacts []Artifact    `json:"artifacts"`
	Warnings  []string      `json:"warnings,omitempty"`
	Duration  time.Duration `json:"duration"`

	metafile   Metafile
	entries    map[string]string // entry name -> metafile output key
	outDir     string            // output directory relative to the working directory
	publicPath string
}

func newReport(cfg *buildconfig.BuildConfig, raw string, workDir string) (*Report, error) {
	var meta Metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}

	outDir := cfg.Output.Directory
	if workDir != "" {
		if rel, err := filepath.Rel(workDir, outDir); err == nil {
			outDir = rel
		}
	}

	r := &Report{
		metafile:   meta,
		entries:    map[string]string{},
		outDir:     filepath.ToSlash(outDir),
		publicPath: cfg.Output.PublicPath,
	}

	inputs := make(map[string]string, len(cfg.Entries))
	for _, e := range cfg.Entries {
		inputs[metafileInput(e.Path, workDir)] = e.Name
	}

	keys := make([]string, 0, len(meta.Outputs))
	for k := range meta.Outputs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		info := meta.Outputs[key]
		a := Artifact{Path: r.relOutput(key), Bytes: info.Bytes}
		if name, ok := inputs[info.EntryPoint]; ok && isScript(key) {
			a.Entry = name
			r.entries[name] = key
		}
		r.Artifacts = append(r.Artifacts, a)
	}

	return r, nil
}

// Scripts returns the URLs of the scripts an entry needs, the entry's own
// output first followed by the chunks it statically imports.
func (r *Report) Scripts(entryName string) ([]string, error) {
	key, ok := r.entries[entryName]
	if !ok {
		return nil, errors.New("entrypoint not found in metadata")
	}

	scripts := []string{r.url(key)}
	visited := map[string]bool{key: true}
	r.addDependencies(r.metafile.Outputs[key], &scripts, visited)
	return scripts, nil
}

// Stylesheet returns the URL of the CSS bundle emitted for an entry, if any.
func (r *Report) Stylesheet(entryName string) (string, bool) {
	key, ok := r.entries[entryName]
	if !ok {
		return "", false
	}
	css := r.metafile.Outputs[key].CSSBundle
	if css == "" {
		return "", false
	}
	return r.url(css), true
}

func (r *Report) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || imp.Kind == "dynamic-import" || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, r.url(imp.Path))

		if chunkInfo, exists := r.metafile.Outputs[imp.Path]; exists {
			r.addDependencies(chunkInfo, scripts, visited)
		}
	}
}

func (r *Report) relOutput(key string) string {
	if r.outDir == "" || r.outDir == "." {
		return key
	}
	return strings.TrimPrefix(key, r.outDir+"/")
}

func (r *Report) url(key string) string {
	rel := r.relOutput(key)
	switch {
	case r.publicPath == "auto":
		return rel
	case strings.HasSuffix(r.publicPath, "/"):
		return r.publicPath + rel
	default:
		return r.publicPath + "/" + rel
	}
}

// metafileInput converts an entry path to the key esbuild uses for it in the
// metafile: slash separated and relative to the working directory.
func metafileInput(p, workDir string) string {
	if filepath.IsAbs(p) && workDir != "" {
		if rel, err := filepath.Rel(workDir, p); err == nil {
			p = rel
		}
	}
	return path.Clean(filepath.ToSlash(p))
}

func isScript(p string) bool {
	switch path.Ext(p) {
	case ".js", ".mjs", ".cjs":
		return true
	default:
		return false
	}
}
