// Package walker enumerates a directory tree while applying an ignore rule set.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

const (
	errorRootNotDirectory = "root is not a directory"
	errorSymlinkCycle     = "symlink cycle back to %s"

	warningLogMessage = "traversal warning"
)

// Walker walks one root directory. A Walker is immutable and may start any
// number of traversals.
type Walker struct {
	config        types.TraversalConfig
	rules         *ignore.RuleSet
	logger        *zap.Logger
	rootDirectory string
	realRoot      string
}

// New validates the root directory of config. A nil rules value walks every
// entry. An invalid root yields a *types.ConfigError.
func New(config types.TraversalConfig, rules *ignore.RuleSet, logger *zap.Logger) (*Walker, error) {
	rootDirectory, absoluteError := filepath.Abs(config.RootDirectory)
	if absoluteError != nil {
		return nil, &types.ConfigError{Path: config.RootDirectory, Err: absoluteError}
	}
	info, statError := os.Stat(rootDirectory)
	if statError != nil {
		return nil, &types.ConfigError{Path: config.RootDirectory, Err: statError}
	}
	if !info.IsDir() {
		return nil, &types.ConfigError{Path: config.RootDirectory, Err: errors.New(errorRootNotDirectory)}
	}
	realRoot, realError := filepath.EvalSymlinks(rootDirectory)
	if realError != nil {
		return nil, &types.ConfigError{Path: config.RootDirectory, Err: realError}
	}
	config.RootDirectory = rootDirectory
	return &Walker{
		config:        config,
		rules:         rules,
		logger:        utils.LoggerOrNop(logger),
		rootDirectory: rootDirectory,
		realRoot:      realRoot,
	}, nil
}

// Root returns the absolute root directory.
func (walker *Walker) Root() string {
	return walker.rootDirectory
}

// Walk prepares a fresh traversal bound to ctx. Nothing is read until the
// traversal's node sequence is ranged over.
func (walker *Walker) Walk(ctx context.Context) *Traversal {
	return &Traversal{walker: walker, ctx: ctx}
}

// Collect runs a traversal to completion and materializes its nodes and
// warnings. The returned error is non-nil only when ctx ends the walk early.
func (walker *Walker) Collect(ctx context.Context) (types.WalkResult, error) {
	traversal := walker.Walk(ctx)
	result := types.WalkResult{Root: walker.rootDirectory}
	for node := range traversal.Nodes() {
		result.Nodes = append(result.Nodes, node)
	}
	result.Warnings = traversal.Warnings()
	return result, traversal.Err()
}

// Traversal is one pass over the tree. Warnings and Err describe the most
// recent iteration of Nodes.
type Traversal struct {
	walker   *Walker
	ctx      context.Context
	warnings []types.Warning
	err      error
}

// Nodes yields surviving entries depth-first in pre-order with the entries of
// each directory sorted by name. Excluded directories are never listed.
func (traversal *Traversal) Nodes() iter.Seq[types.Node] {
	return func(yield func(types.Node) bool) {
		traversal.warnings = nil
		traversal.err = nil
		state := &walkState{
			traversal: traversal,
			yield:     yield,
			ancestors: map[string]struct{}{traversal.walker.realRoot: {}},
		}
		state.walkDirectory(traversal.walker.rootDirectory, "", 0, false)
	}
}

// Warnings returns the problems recorded by the last iteration.
func (traversal *Traversal) Warnings() []types.Warning {
	return append([]types.Warning(nil), traversal.warnings...)
}

// Err reports a context error that stopped the last iteration.
func (traversal *Traversal) Err() error {
	return traversal.err
}

type walkState struct {
	traversal *Traversal
	yield     func(types.Node) bool
	// ancestors holds the real paths of the directories being descended when
	// symlinks are followed.
	ancestors map[string]struct{}
}

// walkDirectory returns false once the consumer stops or the context ends.
func (state *walkState) walkDirectory(absoluteDirectory string, relativeDirectory string, depth int, ancestorExcluded bool) bool {
	walker := state.traversal.walker
	entries, readError := os.ReadDir(absoluteDirectory)
	if readError != nil {
		state.warn(relativeOrRoot(relativeDirectory), types.WarningUnreadableDirectory, readError)
		return true
	}

	for _, entry := range entries {
		if contextError := state.traversal.ctx.Err(); contextError != nil {
			state.traversal.err = contextError
			return false
		}

		if walker.config.MaxDepth > 0 && depth >= walker.config.MaxDepth {
			continue
		}
		relativePath := path.Join(relativeDirectory, entry.Name())
		absolutePath := filepath.Join(absoluteDirectory, entry.Name())
		isSymlink := entry.Type()&fs.ModeSymlink != 0
		if !isSymlink && walker.rules.IsExcluded(relativePath, entry.IsDir(), ancestorExcluded) {
			continue
		}
		described := state.describe(entry, absolutePath, relativePath, depth)
		node := described.node
		if isSymlink && walker.rules.IsExcluded(relativePath, node.IsDir(), ancestorExcluded) {
			continue
		}
		if described.problem != nil {
			state.warn(relativePath, described.problem.kind, described.problem.err)
		}
		if described.skip {
			continue
		}
		if !state.yield(node) {
			return false
		}
		if !node.IsDir() {
			continue
		}
		if walker.config.MaxDepth > 0 && depth+1 >= walker.config.MaxDepth {
			continue
		}
		if described.realDirectory != "" {
			state.ancestors[described.realDirectory] = struct{}{}
		}
		keepGoing := state.walkDirectory(absolutePath, relativePath, depth+1, false)
		if described.realDirectory != "" {
			delete(state.ancestors, described.realDirectory)
		}
		if !keepGoing {
			return false
		}
	}
	return true
}

// entryProblem is a warning raised while describing an entry. It is recorded
// only when the entry survives the ignore rules.
type entryProblem struct {
	kind types.WarningKind
	err  error
}

// entryDescription is the outcome of describe. A skipped entry is not yielded.
type entryDescription struct {
	node          types.Node
	realDirectory string
	problem       *entryProblem
	skip          bool
}

// describe builds the node for entry. Directories reached through a followed
// symlink also report their real path for cycle tracking.
func (state *walkState) describe(entry fs.DirEntry, absolutePath string, relativePath string, depth int) entryDescription {
	walker := state.traversal.walker
	node := types.Node{RelativePath: relativePath, AbsolutePath: absolutePath, Depth: depth}
	isSymlink := entry.Type()&fs.ModeSymlink != 0

	if isSymlink && walker.config.FollowSymlinks {
		targetInfo, statError := os.Stat(absolutePath)
		if statError != nil {
			node.Kind = types.NodeKindSymlink
			return entryDescription{node: node, problem: &entryProblem{types.WarningBrokenSymlink, statError}, skip: true}
		}
		node.ModifiedAt = targetInfo.ModTime()
		if !targetInfo.IsDir() {
			node.Kind = types.NodeKindFile
			node.Size = targetInfo.Size()
			return entryDescription{node: node}
		}
		node.Kind = types.NodeKindDirectory
		realDirectory, realError := filepath.EvalSymlinks(absolutePath)
		if realError != nil {
			return entryDescription{node: node, problem: &entryProblem{types.WarningBrokenSymlink, realError}, skip: true}
		}
		if _, seen := state.ancestors[realDirectory]; seen {
			return entryDescription{node: node, problem: &entryProblem{types.WarningSymlinkCycle, fmt.Errorf(errorSymlinkCycle, realDirectory)}, skip: true}
		}
		return entryDescription{node: node, realDirectory: realDirectory}
	}

	info, infoError := entry.Info()
	if infoError != nil {
		return entryDescription{node: node, problem: &entryProblem{types.WarningStatFailed, infoError}, skip: true}
	}
	node.ModifiedAt = info.ModTime()
	switch {
	case isSymlink:
		node.Kind = types.NodeKindSymlink
		if _, statError := os.Stat(absolutePath); statError != nil {
			return entryDescription{node: node, problem: &entryProblem{types.WarningBrokenSymlink, statError}}
		}
	case entry.IsDir():
		node.Kind = types.NodeKindDirectory
		if walker.config.FollowSymlinks {
			if realDirectory, realError := filepath.EvalSymlinks(absolutePath); realError == nil {
				return entryDescription{node: node, realDirectory: realDirectory}
			}
		}
	default:
		node.Kind = types.NodeKindFile
		node.Size = info.Size()
	}
	return entryDescription{node: node}
}

func (state *walkState) warn(relativePath string, kind types.WarningKind, err error) {
	warning := types.NewWarning(relativePath, kind, err)
	state.traversal.warnings = append(state.traversal.warnings, warning)
	state.traversal.walker.logger.Warn(warningLogMessage,
		zap.String("path", relativePath),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
}

func relativeOrRoot(relativePath string) string {
	if relativePath == "" {
		return types.RootDirectoryKey
	}
	return relativePath
}
