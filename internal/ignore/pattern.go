// Package ignore compiles ignore-file patterns and evaluates ordered rule sets
// built from them.
package ignore

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	negationPrefix     = "!"
	separator          = "/"
	currentDirPrefix   = "./"
	escapedTrailingGap = `\ `
)

// Pattern is one compiled ignore pattern. The zero value matches nothing.
type Pattern struct {
	raw           string
	body          string
	base          string
	negated       bool
	directoryOnly bool
	anchored      bool
	expression    *regexp.Regexp
}

// Compile compiles a pattern relative to the traversal root.
func Compile(raw string) Pattern {
	return CompileRelative(raw, "")
}

// CompileRelative compiles a pattern loaded from an ignore file that lives in
// base, a slash-separated directory relative to the traversal root. The
// pattern only applies to paths inside base and anchors to it.
func CompileRelative(raw string, base string) Pattern {
	pattern := Pattern{raw: raw, base: normalizePath(base)}

	text := trimTrailingWhitespace(raw)
	if strings.HasPrefix(text, negationPrefix) {
		pattern.negated = true
		text = strings.TrimPrefix(text, negationPrefix)
	}
	if strings.HasSuffix(text, separator) {
		pattern.directoryOnly = true
		text = strings.TrimRight(text, separator)
	}
	if strings.HasPrefix(text, separator) {
		pattern.anchored = true
		text = strings.TrimLeft(text, separator)
	}
	if strings.Contains(text, separator) {
		pattern.anchored = true
	}

	pattern.body = text
	if text != "" {
		pattern.expression = compileGlob(text)
	}
	return pattern
}

// Matches reports whether relativePath, a path relative to the traversal root,
// is selected by the pattern. Negation does not affect the result; it only
// changes how a RuleSet applies the match.
func (pattern Pattern) Matches(relativePath string, isDirectory bool) bool {
	if pattern.expression == nil {
		return false
	}
	if pattern.directoryOnly && !isDirectory {
		return false
	}

	candidate := normalizePath(relativePath)
	if candidate == "" {
		return false
	}
	if pattern.base != "" {
		if !strings.HasPrefix(candidate, pattern.base+separator) {
			return false
		}
		candidate = candidate[len(pattern.base)+1:]
	}
	if !pattern.anchored {
		candidate = path.Base(candidate)
	}
	return pattern.expression.MatchString(candidate)
}

// Raw returns the pattern text as it was loaded.
func (pattern Pattern) Raw() string { return pattern.raw }

// Base returns the directory the pattern is scoped to, empty for the root.
func (pattern Pattern) Base() string { return pattern.base }

// Negated reports whether the pattern started with "!".
func (pattern Pattern) Negated() bool { return pattern.negated }

// DirectoryOnly reports whether the pattern ended with "/".
func (pattern Pattern) DirectoryOnly() bool { return pattern.directoryOnly }

// Anchored reports whether the pattern matches from its base rather than at any depth.
func (pattern Pattern) Anchored() bool { return pattern.anchored }

func (pattern Pattern) String() string {
	if pattern.base == "" {
		return pattern.raw
	}
	return pattern.raw + " @" + pattern.base
}

// normalizePath converts a relative path to the slash-separated form used for
// matching, without leading "./" or surrounding separators.
func normalizePath(relativePath string) string {
	normalized := filepath.ToSlash(relativePath)
	for strings.HasPrefix(normalized, currentDirPrefix) {
		normalized = strings.TrimPrefix(normalized, currentDirPrefix)
	}
	normalized = strings.Trim(normalized, separator)
	if normalized == "." {
		return ""
	}
	return normalized
}

// trimTrailingWhitespace drops trailing spaces and tabs unless the last space
// is escaped with a backslash.
func trimTrailingWhitespace(line string) string {
	line = strings.TrimRight(line, "\r\n")
	for len(line) > 0 {
		last := line[len(line)-1]
		if last != ' ' && last != '\t' {
			break
		}
		if strings.HasSuffix(line, escapedTrailingGap) {
			break
		}
		line = line[:len(line)-1]
	}
	return line
}
