package walker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/walker"
)

func writeTestFile(testingInstance *testing.T, filePath string, size int) {
	testingInstance.Helper()
	require.NoError(testingInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	content := make([]byte, size)
	for index := range content {
		content[index] = 'x'
	}
	require.NoError(testingInstance, os.WriteFile(filePath, content, 0o600))
}

func scenarioRoot(testingInstance *testing.T) string {
	testingInstance.Helper()
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "a.py"), 10)
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "b.log"), 5)
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "sub", "c.py"), 8)
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "sub", "ignored", "d.py"), 8)
	return rootDirectory
}

func relativePaths(nodes []types.Node) []string {
	paths := make([]string, 0, len(nodes))
	for _, node := range nodes {
		paths = append(paths, node.RelativePath)
	}
	return paths
}

func newWalker(testingInstance *testing.T, config types.TraversalConfig, patterns ...string) *walker.Walker {
	testingInstance.Helper()
	rules := ignore.Build([]ignore.Source{{Origin: "test", Patterns: patterns}}, nil)
	walkerInstance, err := walker.New(config, rules, zap.NewNop())
	require.NoError(testingInstance, err)
	return walkerInstance
}

// TestWalkEndToEnd verifies pruning, ordering and sizes on a small tree.
func TestWalkEndToEnd(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory}, "*.log", "sub/ignored/")

	result, err := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, err)
	assert.Equal(testingInstance, []string{"a.py", "sub", "sub/c.py"}, relativePaths(result.Nodes))
	assert.Equal(testingInstance, int64(18), result.TotalSize())
	assert.Equal(testingInstance, 2, result.FileCount())
	assert.Empty(testingInstance, result.Warnings)

	assert.Equal(testingInstance, types.NodeKindDirectory, result.Nodes[1].Kind)
	assert.Equal(testingInstance, int64(0), result.Nodes[1].Size)
	assert.Equal(testingInstance, 1, result.Nodes[2].Depth)
	assert.Equal(testingInstance, filepath.Join(rootDirectory, "sub", "c.py"), result.Nodes[2].AbsolutePath)
}

// TestWalkIsIdempotent verifies two traversals yield identical sequences.
func TestWalkIsIdempotent(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory}, "*.log")

	first, firstErr := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, firstErr)
	second, secondErr := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, secondErr)
	assert.Equal(testingInstance, first.Nodes, second.Nodes)

	traversal := walkerInstance.Walk(context.Background())
	var firstPass, secondPass []types.Node
	for node := range traversal.Nodes() {
		firstPass = append(firstPass, node)
	}
	for node := range traversal.Nodes() {
		secondPass = append(secondPass, node)
	}
	assert.Equal(testingInstance, firstPass, secondPass)
}

// TestWalkAncestorExclusionIsTerminal verifies negations cannot reach into pruned directories.
func TestWalkAncestorExclusionIsTerminal(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory}, "sub/ignored/", "!sub/ignored/d.py", "!*.py")

	result, err := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, err)
	assert.NotContains(testingInstance, relativePaths(result.Nodes), "sub/ignored/d.py")
	assert.NotContains(testingInstance, relativePaths(result.Nodes), "sub/ignored")
}

// TestWalkSortsEntries verifies lexicographic order within each directory.
func TestWalkSortsEntries(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	for _, name := range []string{"b.txt", "A.txt", "a/z.txt", "a/b.txt", "c.txt"} {
		writeTestFile(testingInstance, filepath.Join(rootDirectory, filepath.FromSlash(name)), 1)
	}
	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory})

	result, err := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, err)
	assert.Equal(testingInstance, []string{"A.txt", "a", "a/b.txt", "a/z.txt", "b.txt", "c.txt"}, relativePaths(result.Nodes))
}

// TestWalkNilRulesYieldsEverything verifies that a nil rule set excludes nothing.
func TestWalkNilRulesYieldsEverything(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	walkerInstance, err := walker.New(types.TraversalConfig{RootDirectory: rootDirectory}, nil, nil)
	require.NoError(testingInstance, err)

	result, collectErr := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, collectErr)
	assert.Equal(testingInstance, []string{"a.py", "b.log", "sub", "sub/c.py", "sub/ignored", "sub/ignored/d.py"}, relativePaths(result.Nodes))
}

// TestWalkMaxDepth verifies that the depth limit stops both yielding and descent.
func TestWalkMaxDepth(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	testCases := []struct {
		testName string
		maxDepth int
		expected []string
	}{
		{testName: "root entries only", maxDepth: 1, expected: []string{"a.py", "b.log", "sub"}},
		{testName: "two levels", maxDepth: 2, expected: []string{"a.py", "b.log", "sub", "sub/c.py", "sub/ignored"}},
		{testName: "unlimited", maxDepth: 0, expected: []string{"a.py", "b.log", "sub", "sub/c.py", "sub/ignored", "sub/ignored/d.py"}},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(subTest *testing.T) {
			walkerInstance := newWalker(subTest, types.TraversalConfig{RootDirectory: rootDirectory, MaxDepth: testCase.maxDepth})
			result, err := walkerInstance.Collect(context.Background())
			require.NoError(subTest, err)
			assert.Equal(subTest, testCase.expected, relativePaths(result.Nodes))
		})
	}
}

// TestWalkStopsEarly verifies that breaking out of the sequence ends the walk.
func TestWalkStopsEarly(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory})

	var seen []string
	for node := range walkerInstance.Walk(context.Background()).Nodes() {
		seen = append(seen, node.RelativePath)
		if node.RelativePath == "sub" {
			break
		}
	}
	assert.Equal(testingInstance, []string{"a.py", "b.log", "sub"}, seen)
}

// TestWalkHonorsCancellation verifies that a cancelled context stops the walk.
func TestWalkHonorsCancellation(testingInstance *testing.T) {
	rootDirectory := scenarioRoot(testingInstance)
	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory})

	ctx, cancel := context.WithCancel(context.Background())
	traversal := walkerInstance.Walk(ctx)
	var seen []string
	for node := range traversal.Nodes() {
		seen = append(seen, node.RelativePath)
		cancel()
	}
	assert.Equal(testingInstance, []string{"a.py"}, seen)
	assert.ErrorIs(testingInstance, traversal.Err(), context.Canceled)
}

// TestNewRejectsInvalidRoot verifies configuration errors for bad roots.
func TestNewRejectsInvalidRoot(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	filePath := filepath.Join(rootDirectory, "file.txt")
	writeTestFile(testingInstance, filePath, 1)

	for _, candidate := range []string{filepath.Join(rootDirectory, "missing"), filePath} {
		_, err := walker.New(types.TraversalConfig{RootDirectory: candidate}, nil, nil)
		var configError *types.ConfigError
		require.True(testingInstance, errors.As(err, &configError), "expected ConfigError for %s", candidate)
		assert.Equal(testingInstance, candidate, configError.Path)
	}
}

// TestWalkRecordsUnreadableDirectory verifies that listing failures become warnings.
func TestWalkRecordsUnreadableDirectory(testingInstance *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		testingInstance.Skip("directory permissions are not enforced")
	}
	rootDirectory := scenarioRoot(testingInstance)
	lockedDirectory := filepath.Join(rootDirectory, "sub", "ignored")
	require.NoError(testingInstance, os.Chmod(lockedDirectory, 0o000))
	testingInstance.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory})
	result, err := walkerInstance.Collect(context.Background())
	require.NoError(testingInstance, err)
	assert.Contains(testingInstance, relativePaths(result.Nodes), "sub/ignored")
	require.Len(testingInstance, result.Warnings, 1)
	assert.Equal(testingInstance, types.WarningUnreadableDirectory, result.Warnings[0].Kind)
	assert.Equal(testingInstance, "sub/ignored", result.Warnings[0].Path)
}

// TestWalkSymlinks verifies symlink listing, following, cycle detection and broken links.
func TestWalkSymlinks(testingInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testingInstance.Skip("symlinks require privileges on windows")
	}
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "data", "file.txt"), 4)
	require.NoError(testingInstance, os.Symlink(rootDirectory, filepath.Join(rootDirectory, "data", "loop")))
	require.NoError(testingInstance, os.Symlink(filepath.Join(rootDirectory, "data", "file.txt"), filepath.Join(rootDirectory, "link.txt")))
	require.NoError(testingInstance, os.Symlink(filepath.Join(rootDirectory, "absent"), filepath.Join(rootDirectory, "broken")))

	testingInstance.Run("not followed", func(subTest *testing.T) {
		walkerInstance := newWalker(subTest, types.TraversalConfig{RootDirectory: rootDirectory})
		result, err := walkerInstance.Collect(context.Background())
		require.NoError(subTest, err)
		assert.Equal(subTest, []string{"broken", "data", "data/file.txt", "data/loop", "link.txt"}, relativePaths(result.Nodes))
		assert.Equal(subTest, types.NodeKindSymlink, result.Nodes[0].Kind)
		assert.Equal(subTest, types.NodeKindSymlink, result.Nodes[3].Kind)
		require.Len(subTest, result.Warnings, 1)
		assert.Equal(subTest, types.WarningBrokenSymlink, result.Warnings[0].Kind)
		assert.Equal(subTest, "broken", result.Warnings[0].Path)
	})

	testingInstance.Run("followed", func(subTest *testing.T) {
		walkerInstance := newWalker(subTest, types.TraversalConfig{RootDirectory: rootDirectory, FollowSymlinks: true})
		result, err := walkerInstance.Collect(context.Background())
		require.NoError(subTest, err)
		assert.Equal(subTest, []string{"data", "data/file.txt", "link.txt"}, relativePaths(result.Nodes))
		assert.Equal(subTest, int64(4), result.Nodes[2].Size)

		kinds := make(map[types.WarningKind]string)
		for _, warning := range result.Warnings {
			kinds[warning.Kind] = warning.Path
		}
		assert.Equal(subTest, "broken", kinds[types.WarningBrokenSymlink])
		assert.Equal(subTest, "data/loop", kinds[types.WarningSymlinkCycle])
	})
}

// TestWalkExcludedSymlinksRaiseNoWarnings verifies that problems with excluded
// entries are not reported.
func TestWalkExcludedSymlinksRaiseNoWarnings(testingInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testingInstance.Skip("symlinks require privileges on windows")
	}
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "data", "file.txt"), 4)
	require.NoError(testingInstance, os.Symlink(rootDirectory, filepath.Join(rootDirectory, "data", "loop")))
	require.NoError(testingInstance, os.Symlink(filepath.Join(rootDirectory, "absent"), filepath.Join(rootDirectory, "broken")))

	for _, followSymlinks := range []bool{false, true} {
		walkerInstance := newWalker(testingInstance, types.TraversalConfig{RootDirectory: rootDirectory, FollowSymlinks: followSymlinks}, "broken", "loop")
		result, err := walkerInstance.Collect(context.Background())
		require.NoError(testingInstance, err)
		assert.Equal(testingInstance, []string{"data", "data/file.txt"}, relativePaths(result.Nodes))
		assert.Empty(testingInstance, result.Warnings, "follow symlinks: %t", followSymlinks)
	}
}
