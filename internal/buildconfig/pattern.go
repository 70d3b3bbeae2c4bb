package buildconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

type patternKind int

const (
	patternLiteral patternKind = iota
	patternGlob
	patternRegexp
)

// Pattern is a compiled file path condition. The zero value matches nothing.
//
// Accepted forms:
//
//	/\.js$/i      regular expression with optional i, m or s flags (g, u, y are ignored)
//	re:\.js$      regular expression
//	src/**.tsx    glob; * and ** both cross directory separators
//	node_modules  literal path or path segment run
//
// A /expr/ string without flags is always a regular expression. With flags it
// is only read as one when expr holds a regexp metacharacter other than '.',
// so an absolute path such as /srv/app/lib/is stays a literal.
type Pattern struct {
	src  string
	kind patternKind
	re   *regexp.Regexp
	g    glob.Glob
	lit  string
}

// CompilePattern parses a pattern string.
func CompilePattern(src string) (Pattern, error) {
	if strings.TrimSpace(src) == "" {
		return Pattern{}, errors.New("empty pattern")
	}

	if expr, ok := strings.CutPrefix(src, "re:"); ok {
		re, err := regexp.Compile(expr)
		if err != nil {
			return Pattern{}, err
		}
		return Pattern{src: src, kind: patternRegexp, re: re}, nil
	}

	if expr, flags, ok := splitRegexpLiteral(src); ok {
		re, err := regexp.Compile(flags + expr)
		if err != nil {
			return Pattern{}, err
		}
		return Pattern{src: src, kind: patternRegexp, re: re}, nil
	}

	if strings.ContainsAny(src, "*?[{") {
		g, err := glob.Compile(src)
		if err != nil {
			return Pattern{}, err
		}
		return Pattern{src: src, kind: patternGlob, g: g}, nil
	}

	lit := strings.TrimSuffix(filepath.ToSlash(src), "/")
	if lit == "" {
		return Pattern{}, fmt.Errorf("pattern %q matches every path", src)
	}
	return Pattern{src: src, kind: patternLiteral, lit: lit}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(src string) Pattern {
	p, err := CompilePattern(src)
	if err != nil {
		panic(fmt.Sprintf("buildconfig: compile pattern %q: %v", src, err))
	}
	return p
}

// splitRegexpLiteral recognises the /expr/flags form and converts flags to
// Go's inline syntax.
func splitRegexpLiteral(src string) (expr, flags string, ok bool) {
	if len(src) < 2 || src[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndex(src, "/")
	if end == 0 {
		return "", "", false
	}
	var inline strings.Builder
	for _, f := range src[end+1:] {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'g', 'u', 'y':
		default:
			return "", "", false
		}
	}
	expr = src[1:end]
	if expr == "" {
		return "", "", false
	}
	if end < len(src)-1 && !strings.ContainsAny(expr, `\^$|()[]{}*+?`) {
		return "", "", false
	}
	if inline.Len() > 0 {
		flags = "(?" + inline.String() + ")"
	}
	return expr, flags, true
}

// Match reports whether filePath satisfies the pattern. Paths are compared in
// slash form.
func (p Pattern) Match(filePath string) bool {
	filePath = filepath.ToSlash(filePath)
	switch p.kind {
	case patternRegexp:
		return p.re != nil && p.re.MatchString(filePath)
	case patternGlob:
		return p.g != nil && p.g.Match(filePath)
	default:
		if p.lit == "" {
			return false
		}
		return filePath == p.lit ||
			strings.HasPrefix(filePath, p.lit+"/") ||
			strings.Contains(filePath, "/"+p.lit+"/") ||
			strings.HasSuffix(filePath, "/"+p.lit)
	}
}

// IsZero reports whether the pattern was never compiled.
func (p Pattern) IsZero() bool {
	return p.src == ""
}

func (p Pattern) String() string {
	return p.src
}

// Equal reports whether both patterns were compiled from the same source.
func (p Pattern) Equal(other Pattern) bool {
	return p.src == other.src
}

func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.src), nil
}

func (p *Pattern) UnmarshalText(b []byte) error {
	compiled, err := CompilePattern(string(b))
	if err != nil {
		return err
	}
	*p = compiled
	return nil
}
