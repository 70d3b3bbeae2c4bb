package buildconfig

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Resolver validates raw configurations. The zero value is ready to use and
// performs no I/O.
type Resolver struct {
	// BaseDir anchors relative output and context paths. When set, a missing
	// output path defaults to BaseDir/dist.
	BaseDir string
	// SourceFS, when set, must contain every entry path. It is rooted at the
	// build context.
	SourceFS fs.FS
}

// Resolve validates raw with the zero Resolver.
func Resolve(raw RawConfig) (*BuildConfig, error) {
	return (&Resolver{}).Resolve(raw)
}

// Resolve validates raw and applies Defaults. Every violation is reported in
// the returned error; on failure no BuildConfig is returned.
func (r *Resolver) Resolve(raw RawConfig) (*BuildConfig, error) {
	var errs errorList

	cfg := &BuildConfig{
		Mode:    Defaults.Mode,
		Entries: EntryMap{},
		Rules:   []TransformRule{},
	}

	if raw.Mode != "" {
		mode, ok := ParseMode(raw.Mode)
		if !ok {
			errs.add(InvalidValue, "mode", fmt.Sprintf("%q is not one of %s, %s", raw.Mode, ModeDevelopment, ModeProduction), nil)
		}
		cfg.Mode = mode
	}

	switch {
	case raw.Context != "":
		cfg.Context = r.absPath(raw.Context, "context", &errs)
	case r.BaseDir != "":
		cfg.Context = filepath.Clean(r.BaseDir)
	}

	cfg.Entries = r.resolveEntries(raw.Entry, cfg.Context, &errs)
	cfg.Output = r.resolveOutput(raw.Output, len(raw.Entry), &errs)
	cfg.Rules = resolveRules(raw.Module.Rules, &errs)

	if len(errs) > 0 {
		return nil, errs.err()
	}
	return cfg, nil
}

func (r *Resolver) resolveEntries(raw RawEntries, context string, errs *errorList) EntryMap {
	entries := make(EntryMap, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, e := range raw {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			errs.add(MissingField, fmt.Sprintf("entry[%d].name", i), "entry name is empty", nil)
			continue
		}
		field := "entry." + name
		if seen[name] {
			errs.add(DuplicateEntryName, field, fmt.Sprintf("entry %q is declared more than once", name), nil)
			continue
		}
		seen[name] = true

		if strings.TrimSpace(e.Import) == "" {
			errs.add(MissingField, field, "entry path is empty", nil)
			continue
		}

		if r.SourceFS != nil {
			if err := r.checkSource(e.Import, context); err != nil {
				errs.add(EntryNotFound, field, e.Import, err)
				continue
			}
		}

		entries = append(entries, Entry{Name: name, Path: e.Import})
	}
	return entries
}

func (r *Resolver) checkSource(p, context string) error {
	name := p
	if filepath.IsAbs(p) && context != "" {
		if rel, err := filepath.Rel(context, p); err == nil {
			name = rel
		}
	}
	name = path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "./"))
	if !fs.ValidPath(name) {
		return fmt.Errorf("path %q is outside the source tree", p)
	}
	info, err := fs.Stat(r.SourceFS, name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory", p)
	}
	return nil
}

func (r *Resolver) resolveOutput(raw RawOutput, entryCount int, errs *errorList) OutputSpec {
	out := OutputSpec{
		FilenamePattern: Defaults.FilenamePattern,
		PublicPath:      Defaults.PublicPath,
	}

	switch {
	case raw.Path != "":
		out.Directory = r.absPath(raw.Path, "output.path", errs)
	case r.BaseDir != "":
		out.Directory = filepath.Join(r.BaseDir, DefaultOutputDir)
	case entryCount > 0:
		errs.add(MissingField, "output.path", "an output directory is required when entries are declared", nil)
	}

	if raw.Filename != "" {
		out.FilenamePattern = raw.Filename
	}
	if entryCount > 1 && !strings.Contains(out.FilenamePattern, NamePlaceholder) {
		errs.add(InvalidPattern, "output.filename",
			fmt.Sprintf("%q must contain %s when %d entries are declared", out.FilenamePattern, NamePlaceholder, entryCount), nil)
	}

	if raw.PublicPath != "" {
		if err := validatePublicPath(raw.PublicPath); err != nil {
			errs.add(InvalidValue, "output.publicPath", err.Error(), nil)
		}
		out.PublicPath = raw.PublicPath
	}

	return out
}

func validatePublicPath(p string) error {
	if p == "auto" || strings.HasPrefix(p, "/") {
		return nil
	}
	u, err := url.Parse(p)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q must be root-relative, an absolute URL or auto", p)
	}
	return nil
}

func resolveRules(raw []RawRule, errs *errorList) []TransformRule {
	rules := make([]TransformRule, 0, len(raw))

	for i, rr := range raw {
		field := fmt.Sprintf("module.rules[%d]", i)
		rule := TransformRule{}
		ok := true

		if rr.Test == "" {
			errs.add(MissingField, field+".test", "rule has no test pattern", nil)
			ok = false
		} else if p, err := CompilePattern(rr.Test); err != nil {
			errs.add(InvalidPattern, field+".test", rr.Test, err)
			ok = false
		} else {
			rule.Test = p
		}

		if rr.Exclude != "" {
			p, err := CompilePattern(rr.Exclude)
			if err != nil {
				errs.add(InvalidPattern, field+".exclude", rr.Exclude, err)
				ok = false
			} else {
				rule.Exclude = &p
			}
		}

		if len(rr.Use) == 0 {
			errs.add(MissingField, field+".use", "rule has no handlers", nil)
			ok = false
		}
		rule.Handlers = make([]Handler, 0, len(rr.Use))
		for j, u := range rr.Use {
			name := strings.TrimSpace(u.Loader)
			if name == "" {
				errs.add(MissingField, fmt.Sprintf("%s.use[%d].loader", field, j), "handler has no name", nil)
				ok = false
				continue
			}
			rule.Handlers = append(rule.Handlers, Handler{Name: name, Options: cloneOptions(u.Options)})
		}

		if ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func (r *Resolver) absPath(p, field string, errs *errorList) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if r.BaseDir == "" {
		errs.add(InvalidValue, field, fmt.Sprintf("%q must be absolute", p), nil)
		return ""
	}
	return filepath.Join(r.BaseDir, p)
}
