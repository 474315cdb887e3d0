package output

import (
	"fmt"
	"io"

	"github.com/temirov/summarize/internal/content"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

// WriteContent renders each result as a file block. Files without content
// keep their block with a note explaining the omission.
func WriteContent(writer io.Writer, results []content.Result, maxFileSize int64) error {
	for _, result := range results {
		if result.Node.Kind != types.NodeKindFile {
			continue
		}
		if _, err := fmt.Fprintf(writer, "File: %s\n", result.Node.RelativePath); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(writer, contentBody(result, maxFileSize)); err != nil {
			return err
		}
		if result.Truncated {
			if _, err := fmt.Fprintln(writer, truncatedContentNotice); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(writer, "End of file: %s\n%s\n", result.Node.RelativePath, separatorLine); err != nil {
			return err
		}
	}
	return nil
}

func contentBody(result content.Result, maxFileSize int64) string {
	switch result.Status {
	case content.StatusText, content.StatusNotebook:
		return result.Content
	case content.StatusBinary:
		return binaryContentOmitted
	case content.StatusTooLarge:
		return fmt.Sprintf(tooLargeContentFormat, utils.FormatFileSize(maxFileSize))
	default:
		var cause error
		if result.Err != nil {
			cause = result.Err.Err
		}
		return fmt.Sprintf(missingContentFormat, cause)
	}
}
