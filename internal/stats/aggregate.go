// Package stats folds walked nodes into per-extension or per-directory totals.
package stats

import (
	"errors"
	"fmt"
	"iter"
	"path"
	"slices"

	"github.com/temirov/summarize/internal/types"
)

const errorUnknownGroupingFormat = "unknown grouping %q"

// TokenCounter maps text to a token count for one model.
type TokenCounter interface {
	CountTokens(text string, model string) (int, error)
}

// ContentFunc supplies the text of a file node for token counting.
type ContentFunc func(node types.Node) (string, error)

// Options configures token counting and directory rollup.
type Options struct {
	// Models lists the model identifiers counted per bucket. Token counting
	// is off when Models is empty or TokenCounter or Content is nil.
	Models       []string
	TokenCounter TokenCounter
	Content      ContentFunc
	// Recursive adds every file to each ancestor directory bucket as well as
	// its parent when grouping by directory.
	Recursive bool
}

func (options Options) countsTokens() bool {
	return len(options.Models) > 0 && options.TokenCounter != nil && options.Content != nil
}

// Aggregate buckets the file nodes of nodes by grouping.
func Aggregate(nodes []types.Node, grouping types.Grouping, options Options) (types.StatisticsRecord, error) {
	return AggregateSeq(slices.Values(nodes), grouping, options)
}

// AggregateSeq is Aggregate over a lazy node sequence such as a walk.
// Directories and unresolved symlinks are not counted. Files whose content
// cannot be read or counted still contribute their count and size; the
// problem is recorded in the record.
func AggregateSeq(nodes iter.Seq[types.Node], grouping types.Grouping, options Options) (types.StatisticsRecord, error) {
	keyFunction, keyError := bucketKeys(grouping, options.Recursive)
	if keyError != nil {
		return types.StatisticsRecord{}, keyError
	}

	record := types.StatisticsRecord{Grouping: grouping, Buckets: make(map[string]types.Bucket)}
	for node := range nodes {
		if node.Kind != types.NodeKindFile {
			continue
		}
		tokens := countNodeTokens(node, options, &record)
		addToBucket(&record.Total, node, tokens)
		for _, key := range keyFunction(node) {
			bucket := record.Buckets[key]
			addToBucket(&bucket, node, tokens)
			record.Buckets[key] = bucket
		}
	}
	return record, nil
}

func bucketKeys(grouping types.Grouping, recursive bool) (func(types.Node) []string, error) {
	switch grouping {
	case types.GroupByExtension:
		return func(node types.Node) []string {
			return []string{node.Extension()}
		}, nil
	case types.GroupByDirectory:
		if !recursive {
			return func(node types.Node) []string {
				return []string{node.ParentDirectory()}
			}, nil
		}
		return ancestorDirectories, nil
	default:
		return nil, fmt.Errorf(errorUnknownGroupingFormat, grouping)
	}
}

// ancestorDirectories lists the parent directory of node and every directory
// above it up to the root key.
func ancestorDirectories(node types.Node) []string {
	var keys []string
	directory := node.ParentDirectory()
	for {
		keys = append(keys, directory)
		if directory == types.RootDirectoryKey {
			return keys
		}
		directory = path.Dir(directory)
	}
}

func countNodeTokens(node types.Node, options Options, record *types.StatisticsRecord) map[string]int {
	if !options.countsTokens() {
		return nil
	}
	text, contentError := options.Content(node)
	if contentError != nil {
		record.Problems = append(record.Problems, asContentError(node, contentError))
		return nil
	}
	tokens := make(map[string]int, len(options.Models))
	for _, model := range options.Models {
		count, countError := options.TokenCounter.CountTokens(text, model)
		if countError != nil {
			record.Problems = append(record.Problems, types.ContentError{
				Path:   node.RelativePath,
				Reason: types.ContentTokenizer,
				Err:    fmt.Errorf("%s: %w", model, countError),
			})
			continue
		}
		tokens[model] = count
	}
	return tokens
}

func asContentError(node types.Node, err error) types.ContentError {
	var contentError *types.ContentError
	if errors.As(err, &contentError) {
		return *contentError
	}
	return types.ContentError{Path: node.RelativePath, Reason: types.ContentRead, Err: err}
}

func addToBucket(bucket *types.Bucket, node types.Node, tokens map[string]int) {
	bucket.FileCount++
	bucket.TotalSizeBytes += node.Size
	if len(tokens) == 0 {
		return
	}
	if bucket.Tokens == nil {
		bucket.Tokens = make(map[string]int, len(tokens))
	}
	for model, count := range tokens {
		bucket.Tokens[model] += count
	}
}
