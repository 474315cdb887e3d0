// Package output renders walk results, file contents and statistics as raw
// text, JSON or YAML.
package output

import (
	"fmt"
	"slices"
	"strings"

	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	separatorLine = "----------------------------------------"

	binaryContentOmitted   = "(binary content omitted)"
	tooLargeContentFormat  = "(content omitted: larger than %s)"
	missingContentFormat   = "(content unavailable: %v)"
	truncatedContentNotice = "(content truncated)"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	errorUnsupportedFormat = "unsupported output format %q"
)

// ValidateFormat reports whether format names a renderer.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case types.FormatRaw, types.FormatJSON, types.FormatYAML:
		return nil
	default:
		return fmt.Errorf(errorUnsupportedFormat, format)
	}
}

// FormatSummaryLine formats file totals and per-model token totals into the
// raw summary line.
func FormatSummaryLine(files int, bytes int64, tokens map[string]int) string {
	label := "files"
	if files == 1 {
		label = "file"
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Summary: %d %s, %s", files, label, utils.FormatFileSize(bytes))
	for _, model := range sortedModels(tokens) {
		fmt.Fprintf(&builder, ", %d tokens (model: %s)", tokens[model], model)
	}
	return builder.String()
}

func sortedModels(tokens map[string]int) []string {
	models := make([]string, 0, len(tokens))
	for model := range tokens {
		models = append(models, model)
	}
	slices.Sort(models)
	return models
}
