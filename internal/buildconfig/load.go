package buildconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// defaultEntryName is used when entry is given as a single path.
const defaultEntryName = "main"

var (
	rawEntriesType = reflect.TypeOf(RawEntries{})
	rawUsesType    = reflect.TypeOf(RawUses{})
)

// Load parses a YAML or JSON configuration document, checks it against the
// schema and decodes it into a RawConfig. Unknown top level keys are ignored.
func Load(data []byte) (RawConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return RawConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	var doc any
	if root.Kind != 0 {
		entriesToSequence(&root)
		if err := root.Decode(&doc); err != nil {
			return RawConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := validateDocument(doc); err != nil {
		return RawConfig{}, err
	}

	var raw RawConfig
	if doc == nil {
		return raw, nil
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Metadata:   &md,
		Result:     &raw,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(entriesHook, usesHook),
	})
	if err != nil {
		return RawConfig{}, err
	}
	if err := decoder.Decode(doc); err != nil {
		return RawConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if len(md.Unused) > 0 {
		slices.Sort(md.Unused)
		log.Debug().Strs("keys", md.Unused).Msg("ignoring unsupported config keys")
	}

	return raw, nil
}

// LoadFile reads and loads the configuration document at path.
func LoadFile(path string) (RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Load(data)
}

// Override adjusts a loaded document before it is resolved.
type Override func(*RawConfig)

// WithMode replaces the document's mode when mode is not empty.
func WithMode(mode string) Override {
	return func(raw *RawConfig) {
		if mode != "" {
			raw.Mode = mode
		}
	}
}

// ResolveFile loads the document at path and resolves it. Relative paths in
// the document are anchored at the document's directory unless r.BaseDir is set.
func ResolveFile(path string, r Resolver, overrides ...Override) (*BuildConfig, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(&raw)
	}

	if r.BaseDir == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
		}
		r.BaseDir = filepath.Dir(abs)
	}
	if r.SourceFS == nil {
		root := r.BaseDir
		if raw.Context != "" {
			root = raw.Context
			if !filepath.IsAbs(root) {
				root = filepath.Join(r.BaseDir, root)
			}
		}
		r.SourceFS = os.DirFS(root)
	}

	return r.Resolve(raw)
}

// entriesHook accepts the string and list forms of entry. The mapping form
// has already been rewritten by entriesToSequence.
func entriesHook(from, to reflect.Type, data any) (any, error) {
	if to != rawEntriesType {
		return data, nil
	}

	if v, ok := data.(string); ok {
		return RawEntries{{Name: defaultEntryName, Import: v}}, nil
	}
	return data, nil
}

// usesHook accepts a handler name, a handler object or a list of either.
func usesHook(from, to reflect.Type, data any) (any, error) {
	if to != rawUsesType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return RawUses{{Loader: v}}, nil
	case map[string]any:
		return []any{v}, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			if name, ok := item.(string); ok {
				out[i] = map[string]any{"loader": name}
				continue
			}
			out[i] = item
		}
		return out, nil
	default:
		return data, nil
	}
}

// entriesToSequence rewrites a mapping form entry into the equivalent list of
// descriptors, keeping declaration order and repeated names so Resolve can
// report them. Mappings holding values of any other shape are left for the
// schema to reject.
func entriesToSequence(root *yaml.Node) {
	top := root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "entry" {
			continue
		}
		entry := top.Content[i+1]
		if entry.Kind != yaml.MappingNode {
			return
		}

		items := make([]*yaml.Node, 0, len(entry.Content)/2)
		for j := 0; j+1 < len(entry.Content); j += 2 {
			name, value := entry.Content[j], entry.Content[j+1]

			desc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: value.Line, Column: value.Column}
			desc.Content = append(desc.Content, strNode("name"), strNode(name.Value))

			switch {
			case value.Kind == yaml.ScalarNode && value.ShortTag() == "!!str":
				desc.Content = append(desc.Content, strNode("import"), value)
			case value.Kind == yaml.MappingNode:
				for k := 0; k+1 < len(value.Content); k += 2 {
					if value.Content[k].Value == "name" {
						continue
					}
					desc.Content = append(desc.Content, value.Content[k], value.Content[k+1])
				}
			default:
				return
			}
			items = append(items, desc)
		}

		top.Content[i+1] = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items, Line: entry.Line, Column: entry.Column}
		return
	}
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
