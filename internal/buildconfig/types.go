// Package buildconfig turns loosely-structured bundler configuration into a
// validated BuildConfig that a bundler engine can consume as-is.
package buildconfig

import (
	"fmt"
	"maps"
	"slices"
)

// Mode selects the optimisation profile of a build.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode converts a raw mode string, returning false for unknown modes.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDevelopment, ModeProduction:
		return Mode(s), true
	default:
		return "", false
	}
}

func (m Mode) String() string {
	return string(m)
}

// Entry is a named entry point. The name is also the output chunk name.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// EntryMap holds entries in declaration order with unique names.
type EntryMap []Entry

// Lookup returns the entry with the given name.
func (m EntryMap) Lookup(name string) (Entry, bool) {
	for _, e := range m {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the entry names in declaration order.
func (m EntryMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, e := range m {
		names = append(names, e.Name)
	}
	return names
}

// OutputSpec describes where and how emitted files are written.
type OutputSpec struct {
	// Directory is absolute and cleaned.
	Directory string `json:"directory" yaml:"directory"`
	// FilenamePattern may contain the [name] placeholder.
	FilenamePattern string `json:"filenamePattern" yaml:"filenamePattern"`
	// PublicPath is the URL prefix emitted files are served under.
	PublicPath string `json:"publicPath" yaml:"publicPath"`
}

// Filename expands the entry name placeholder in the filename pattern.
func (o OutputSpec) Filename(entryName string) string {
	return expandName(o.FilenamePattern, entryName)
}

// Handler is one named step of a rule's handler chain.
type Handler struct {
	Name    string         `json:"loader" yaml:"loader"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// TransformRule selects files by pattern and names the handlers applied to them.
type TransformRule struct {
	Test     Pattern   `json:"test" yaml:"test"`
	Exclude  *Pattern  `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Handlers []Handler `json:"use" yaml:"use"`
}

func (r TransformRule) String() string {
	names := make([]string, 0, len(r.Handlers))
	for _, h := range r.Handlers {
		names = append(names, h.Name)
	}
	if r.Exclude != nil {
		return fmt.Sprintf("test=%s exclude=%s use=%v", r.Test, r.Exclude, names)
	}
	return fmt.Sprintf("test=%s use=%v", r.Test, names)
}

// BuildConfig is the resolved configuration. It is never mutated after Resolve
// returns it and may be shared between goroutines.
type BuildConfig struct {
	Mode    Mode            `json:"mode" yaml:"mode"`
	Context string          `json:"context,omitempty" yaml:"context,omitempty"`
	Entries EntryMap        `json:"entries" yaml:"entries"`
	Output  OutputSpec      `json:"output" yaml:"output"`
	Rules   []TransformRule `json:"rules" yaml:"rules"`
}

// cloneOptions deep copies a handler options mapping so a resolved config never
// aliases caller-owned data.
func cloneOptions(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneOptions(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}
