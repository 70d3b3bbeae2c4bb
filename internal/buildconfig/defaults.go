package buildconfig

import "strings"

// NamePlaceholder is replaced by the entry name in output filename patterns.
const NamePlaceholder = "[name]"

// DefaultOutputDir is joined to the resolver base directory when no output path is given.
const DefaultOutputDir = "dist"

// Options applied when the raw configuration leaves a field unset.
type Options struct {
	Mode            Mode
	PublicPath      string
	FilenamePattern string
}

// Defaults is the option table consulted by Resolve. Consumers of a BuildConfig
// never see an unset mode, public path or filename pattern.
var Defaults = Options{
	Mode:            ModeDevelopment,
	PublicPath:      "/",
	FilenamePattern: NamePlaceholder + ".js",
}

func expandName(pattern, name string) string {
	return strings.ReplaceAll(pattern, NamePlaceholder, name)
}
