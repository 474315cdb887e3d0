package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	cellTypeCode     = "code"
	cellTypeMarkdown = "markdown"

	errorDecodeNotebookFormat = "decode notebook: %w"
	errorDecodeSourceFormat   = "decode cell source: %w"
)

// notebookDocument is the subset of the notebook format read here. Outputs,
// execution counts and metadata are never decoded.
type notebookDocument struct {
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string     `json:"cell_type"`
	Source   cellSource `json:"source"`
}

// cellSource accepts both the string and the list-of-lines source encodings.
type cellSource string

func (source *cellSource) UnmarshalJSON(data []byte) error {
	var text string
	if json.Unmarshal(data, &text) == nil {
		*source = cellSource(text)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf(errorDecodeSourceFormat, err)
	}
	*source = cellSource(strings.Join(lines, ""))
	return nil
}

// ExtractNotebook returns the code and markdown cells of a notebook in order,
// each preceded by a "# Code cell" or "# Markdown cell" header and followed by
// a blank line. Raw cells and every output are dropped.
func ExtractNotebook(data []byte) (string, error) {
	var document notebookDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return "", fmt.Errorf(errorDecodeNotebookFormat, err)
	}
	var builder strings.Builder
	for _, cell := range document.Cells {
		header, retained := cellHeader(cell.CellType)
		if !retained || cell.Source == "" {
			continue
		}
		builder.WriteString(header)
		builder.WriteString("\n")
		builder.WriteString(string(cell.Source))
		builder.WriteString("\n\n")
	}
	return builder.String(), nil
}

func cellHeader(cellType string) (string, bool) {
	switch cellType {
	case cellTypeCode:
		return "# Code cell", true
	case cellTypeMarkdown:
		return "# Markdown cell", true
	default:
		return "", false
	}
}
