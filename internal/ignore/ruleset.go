package ignore

import (
	"strings"
)

const (
	commentPrefix     = "#"
	leadingWhitespace = " \t"
)

// Source is one origin of ignore patterns: an ignore file, the built-in
// defaults, or patterns supplied on the command line.
type Source struct {
	// Origin names the source in diagnostics, usually the ignore file path.
	Origin string
	// Base is the slash-separated directory, relative to the traversal root,
	// that the patterns are scoped to. Empty means the root.
	Base     string
	Patterns []string
}

// RuleSet is an ordered list of compiled patterns. The last pattern that
// matches a path decides its verdict. A nil RuleSet excludes nothing.
type RuleSet struct {
	patterns []Pattern
}

// Build compiles sources in order followed by extraPatterns, which therefore
// take precedence over every file-sourced pattern. Blank lines and comments
// are skipped.
func Build(sources []Source, extraPatterns []string) *RuleSet {
	ruleSet := &RuleSet{}
	for _, source := range sources {
		for _, line := range source.Patterns {
			if isSkippableLine(line) {
				continue
			}
			ruleSet.patterns = append(ruleSet.patterns, CompileRelative(strings.TrimLeft(line, leadingWhitespace), source.Base))
		}
	}
	for _, line := range extraPatterns {
		if isSkippableLine(line) {
			continue
		}
		ruleSet.patterns = append(ruleSet.patterns, Compile(strings.TrimLeft(line, leadingWhitespace)))
	}
	return ruleSet
}

// IsExcluded evaluates relativePath against every pattern in load order. When
// ancestorExcluded is true the path is excluded regardless of the patterns,
// since nothing inside a pruned directory can be re-included.
func (ruleSet *RuleSet) IsExcluded(relativePath string, isDirectory bool, ancestorExcluded bool) bool {
	if ancestorExcluded {
		return true
	}
	_, excluded := ruleSet.decide(relativePath, isDirectory)
	return excluded
}

// Excludes evaluates relativePath together with each of its parent
// directories, for callers that hold a bare path instead of walking to it.
func (ruleSet *RuleSet) Excludes(relativePath string, isDirectory bool) bool {
	normalized := normalizePath(relativePath)
	if normalized == "" {
		return false
	}
	segments := strings.Split(normalized, separator)
	ancestorExcluded := false
	for index := 1; index < len(segments); index++ {
		parent := strings.Join(segments[:index], separator)
		ancestorExcluded = ruleSet.IsExcluded(parent, true, ancestorExcluded)
		if ancestorExcluded {
			return true
		}
	}
	return ruleSet.IsExcluded(normalized, isDirectory, false)
}

// Explain returns the pattern that decided the verdict for relativePath. The
// boolean is false when no pattern matched.
func (ruleSet *RuleSet) Explain(relativePath string, isDirectory bool) (Pattern, bool) {
	deciding, _ := ruleSet.decide(relativePath, isDirectory)
	if deciding < 0 {
		return Pattern{}, false
	}
	return ruleSet.patterns[deciding], true
}

// Len returns the number of compiled patterns.
func (ruleSet *RuleSet) Len() int {
	if ruleSet == nil {
		return 0
	}
	return len(ruleSet.patterns)
}

// Patterns returns a copy of the compiled patterns in evaluation order.
func (ruleSet *RuleSet) Patterns() []Pattern {
	if ruleSet == nil {
		return nil
	}
	return append([]Pattern(nil), ruleSet.patterns...)
}

func (ruleSet *RuleSet) decide(relativePath string, isDirectory bool) (int, bool) {
	if ruleSet == nil {
		return -1, false
	}
	deciding := -1
	excluded := false
	for index, pattern := range ruleSet.patterns {
		if pattern.Matches(relativePath, isDirectory) {
			deciding = index
			excluded = !pattern.Negated()
		}
	}
	return deciding, excluded
}

func isSkippableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, commentPrefix)
}
