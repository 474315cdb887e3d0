package stats_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/stats"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/walker"
)

type wordCounter struct {
	failingModel string
}

func (counter wordCounter) CountTokens(text string, model string) (int, error) {
	if model == counter.failingModel {
		return 0, errors.New("tokenizer unavailable")
	}
	return len(strings.Fields(text)), nil
}

func file(relativePath string, size int64) types.Node {
	return types.Node{RelativePath: relativePath, Kind: types.NodeKindFile, Size: size}
}

func sampleNodes() []types.Node {
	return []types.Node{
		file("a.py", 10),
		file("README", 3),
		{RelativePath: "sub", Kind: types.NodeKindDirectory},
		file("sub/c.py", 8),
		file("sub/deep/d.PY", 4),
		file("sub/deep/.gitignore", 2),
		{RelativePath: "link", Kind: types.NodeKindSymlink},
	}
}

// TestAggregateByExtension verifies extension buckets and totals.
func TestAggregateByExtension(testingInstance *testing.T) {
	record, err := stats.Aggregate(sampleNodes(), types.GroupByExtension, stats.Options{})
	require.NoError(testingInstance, err)

	assert.Equal(testingInstance, types.GroupByExtension, record.Grouping)
	assert.Equal(testingInstance, []string{"", "gitignore", "py"}, record.Keys())
	python, found := record.Bucket("py")
	require.True(testingInstance, found)
	assert.Equal(testingInstance, 3, python.FileCount)
	assert.Equal(testingInstance, int64(22), python.TotalSizeBytes)
	assert.Nil(testingInstance, python.Tokens)
	assert.Equal(testingInstance, 5, record.Total.FileCount)
	assert.Equal(testingInstance, int64(27), record.Total.TotalSizeBytes)
}

// TestAggregateByDirectory verifies parent and recursive directory buckets.
func TestAggregateByDirectory(testingInstance *testing.T) {
	testCases := []struct {
		testName  string
		recursive bool
		expected  map[string]types.Bucket
	}{
		{
			testName: "parent only",
			expected: map[string]types.Bucket{
				".":        {FileCount: 2, TotalSizeBytes: 13},
				"sub":      {FileCount: 1, TotalSizeBytes: 8},
				"sub/deep": {FileCount: 2, TotalSizeBytes: 6},
			},
		},
		{
			testName:  "rolled up",
			recursive: true,
			expected: map[string]types.Bucket{
				".":        {FileCount: 5, TotalSizeBytes: 27},
				"sub":      {FileCount: 3, TotalSizeBytes: 14},
				"sub/deep": {FileCount: 2, TotalSizeBytes: 6},
			},
		},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(subTest *testing.T) {
			record, err := stats.Aggregate(sampleNodes(), types.GroupByDirectory, stats.Options{Recursive: testCase.recursive})
			require.NoError(subTest, err)
			assert.Equal(subTest, testCase.expected, record.Buckets)
		})
	}
}

// TestAggregateCountsTokens verifies per-model token sums and recorded problems.
func TestAggregateCountsTokens(testingInstance *testing.T) {
	contents := map[string]string{
		"a.py":     "one two three",
		"README":   "hello",
		"sub/c.py": "four five",
	}
	options := stats.Options{
		Models:       []string{"words", "broken"},
		TokenCounter: wordCounter{failingModel: "broken"},
		Content: func(node types.Node) (string, error) {
			text, found := contents[node.RelativePath]
			if !found {
				return "", &types.ContentError{Path: node.RelativePath, Reason: types.ContentBinary, Err: types.ErrBinaryContent}
			}
			return text, nil
		},
	}

	record, err := stats.Aggregate(sampleNodes(), types.GroupByExtension, options)
	require.NoError(testingInstance, err)

	python, _ := record.Bucket("py")
	assert.Equal(testingInstance, map[string]int{"words": 5}, python.Tokens)
	assert.Equal(testingInstance, 3, python.FileCount)
	assert.Equal(testingInstance, map[string]int{"words": 6}, record.Total.Tokens)

	reasons := make(map[types.ContentReason]int)
	for _, problem := range record.Problems {
		reasons[problem.Reason]++
	}
	assert.Equal(testingInstance, map[types.ContentReason]int{types.ContentBinary: 2, types.ContentTokenizer: 3}, reasons)
}

// TestAggregateRejectsUnknownGrouping verifies grouping validation.
func TestAggregateRejectsUnknownGrouping(testingInstance *testing.T) {
	_, err := stats.Aggregate(sampleNodes(), types.Grouping("size"), stats.Options{})
	assert.Error(testingInstance, err)
}

// TestAggregateEmpty verifies an empty input produces an empty record.
func TestAggregateEmpty(testingInstance *testing.T) {
	record, err := stats.Aggregate(nil, types.GroupByDirectory, stats.Options{})
	require.NoError(testingInstance, err)
	assert.Empty(testingInstance, record.Buckets)
	assert.Zero(testingInstance, record.Total.FileCount)
}

// TestViewsPartitionAllNodes verifies effective and removed partition the unfiltered walk.
func TestViewsPartitionAllNodes(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	for relativePath, size := range map[string]int{"a.py": 10, "b.log": 5, "sub/c.py": 8, "sub/ignored/d.py": 8} {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		require.NoError(testingInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testingInstance, os.WriteFile(absolutePath, []byte(strings.Repeat("x", size)), 0o600))
	}
	config := types.TraversalConfig{RootDirectory: rootDirectory}

	ruleSets := [][]string{
		{"*.log", "sub/ignored/"},
		{"*.py", "!a.py"},
		{"sub"},
		{},
	}
	for _, patterns := range ruleSets {
		allWalker, allErr := walker.New(config, nil, nil)
		require.NoError(testingInstance, allErr)
		effectiveWalker, effectiveErr := walker.New(config, ignore.Build([]ignore.Source{{Patterns: patterns}}, nil), nil)
		require.NoError(testingInstance, effectiveErr)

		all, _ := allWalker.Collect(context.Background())
		effective, _ := effectiveWalker.Collect(context.Background())
		viewSet := stats.Views(all.Nodes, effective.Nodes)

		union := make(map[string]int)
		for _, node := range viewSet.Effective {
			union[node.RelativePath]++
		}
		for _, node := range viewSet.Removed {
			union[node.RelativePath]++
		}
		assert.Len(testingInstance, union, len(viewSet.All), "patterns %v", patterns)
		for _, node := range viewSet.All {
			assert.Equal(testingInstance, 1, union[node.RelativePath], "patterns %v path %s", patterns, node.RelativePath)
		}
	}
}

// TestRemovedAndAggregateViews verifies the removed view and per-view records.
func TestRemovedAndAggregateViews(testingInstance *testing.T) {
	all := sampleNodes()
	effective := []types.Node{all[0], all[2], all[3]}
	viewSet := stats.Views(all, effective)
	assert.Equal(testingInstance, []types.Node{all[1], all[4], all[5], all[6]}, viewSet.Removed)

	removedNodes, err := viewSet.Nodes(types.ViewRemoved)
	require.NoError(testingInstance, err)
	assert.Len(testingInstance, removedNodes, 4)
	_, unknownErr := viewSet.Nodes(types.View("other"))
	assert.Error(testingInstance, unknownErr)

	records, aggregateErr := stats.AggregateViews(viewSet, types.GroupByExtension, stats.Options{})
	require.NoError(testingInstance, aggregateErr)
	assert.Equal(testingInstance, 5, records[types.ViewAll].Total.FileCount)
	assert.Equal(testingInstance, 2, records[types.ViewEffective].Total.FileCount)
	assert.Equal(testingInstance, 3, records[types.ViewRemoved].Total.FileCount)
}
