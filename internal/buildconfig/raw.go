package buildconfig

// RawConfig mirrors the loosely-typed fields of a webpack style configuration
// document. It is only ever consumed by Resolve.
type RawConfig struct {
	Mode    string     `json:"mode,omitempty"`
	Context string     `json:"context,omitempty"`
	Entry   RawEntries `json:"entry,omitempty"`
	Output  RawOutput  `json:"output,omitempty"`
	Module  RawModule  `json:"module,omitempty"`
}

// RawEntry is one declared entry point. Import is named after webpack's entry
// descriptor field.
type RawEntry struct {
	Name   string `json:"name"`
	Import string `json:"import"`
}

// RawEntries keeps entries in declaration order so duplicates survive until
// validation.
type RawEntries []RawEntry

type RawOutput struct {
	Path       string `json:"path,omitempty"`
	Filename   string `json:"filename,omitempty"`
	PublicPath string `json:"publicPath,omitempty"`
}

type RawModule struct {
	Rules []RawRule `json:"rules,omitempty"`
}

type RawRule struct {
	Test    string  `json:"test,omitempty"`
	Exclude string  `json:"exclude,omitempty"`
	Use     RawUses `json:"use,omitempty"`
}

type RawUse struct {
	Loader  string         `json:"loader"`
	Options map[string]any `json:"options,omitempty"`
}

type RawUses []RawUse
