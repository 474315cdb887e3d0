package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

const (
	noExtensionLabel = "(none)"
	totalLabel       = "TOTAL"
)

// WriteStatisticsTable renders a record as an aligned table with one token
// column per model.
func WriteStatisticsTable(writer io.Writer, record types.StatisticsRecord, models []string) error {
	table := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	header := []string{strings.ToUpper(string(record.Grouping)), "FILES", "SIZE", "BYTES"}
	for _, model := range models {
		header = append(header, "TOKENS("+model+")")
	}
	if _, err := fmt.Fprintln(table, strings.Join(header, "\t")+"\t"); err != nil {
		return err
	}
	for _, key := range record.Keys() {
		bucket, _ := record.Bucket(key)
		if _, err := fmt.Fprintln(table, statisticsRow(bucketLabel(record.Grouping, key), bucket, models)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(table, statisticsRow(totalLabel, record.Total, models)); err != nil {
		return err
	}
	if err := table.Flush(); err != nil {
		return err
	}
	for _, problem := range record.Problems {
		if _, err := fmt.Fprintf(writer, "skipped %s: %s\n", problem.Path, problem.Reason); err != nil {
			return err
		}
	}
	return nil
}

func statisticsRow(label string, bucket types.Bucket, models []string) string {
	cells := []string{
		label,
		fmt.Sprintf("%d", bucket.FileCount),
		utils.FormatFileSize(bucket.TotalSizeBytes),
		fmt.Sprintf("%d", bucket.TotalSizeBytes),
	}
	for _, model := range models {
		cells = append(cells, fmt.Sprintf("%d", bucket.Tokens[model]))
	}
	return strings.Join(cells, "\t") + "\t"
}

func bucketLabel(grouping types.Grouping, key string) string {
	if grouping == types.GroupByExtension && key == types.NoExtensionKey {
		return noExtensionLabel
	}
	if grouping == types.GroupByExtension {
		return "." + key
	}
	return key
}
