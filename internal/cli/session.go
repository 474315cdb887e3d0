package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/summarize/internal/config"
	"github.com/temirov/summarize/internal/content"
	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/stats"
	"github.com/temirov/summarize/internal/tokenizer"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/walker"
)

// resolvedPath is a validated command argument.
type resolvedPath struct {
	label        string
	absolutePath string
	isDirectory  bool
}

// commandRun holds the merged configuration shared by one command invocation.
type commandRun struct {
	configuration    config.ApplicationConfiguration
	workingDirectory string
	targets          []resolvedPath
}

// prepareRun loads configuration, overlays walk flags and validates paths.
func (app *application) prepareRun(command *cobra.Command, arguments []string, walk walkFlags) (commandRun, error) {
	workingDirectory, err := app.resolveWorkingDirectory()
	if err != nil {
		return commandRun{}, err
	}
	configuration, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: app.configPath,
		HomeDirectory:    app.homeDirectory,
	})
	if err != nil {
		return commandRun{}, err
	}
	configuration.Walk = walk.apply(command.Flags(), configuration.Walk)
	if len(arguments) == 0 {
		arguments = []string{defaultPath}
	}
	targets, err := resolveAndValidatePaths(workingDirectory, arguments)
	if err != nil {
		return commandRun{}, err
	}
	return commandRun{configuration: configuration, workingDirectory: workingDirectory, targets: targets}, nil
}

// walkSession binds one target to its traversal settings and ignore sources.
type walkSession struct {
	target    resolvedPath
	traversal types.TraversalConfig
	sources   config.LoadedSources
	logger    *zap.Logger
}

// openSession loads the ignore sources for target. A file target is walked
// from its containing directory.
func (run commandRun) openSession(target resolvedPath, logger *zap.Logger) (*walkSession, error) {
	root := target.absolutePath
	if !target.isDirectory {
		root = filepath.Dir(target.absolutePath)
	}
	traversal := run.configuration.TraversalConfig(root, run.workingDirectory)
	sourceOptions := run.configuration.SourceOptions(traversal)
	sourceOptions.Logger = logger
	sources, err := config.LoadIgnoreSources(root, sourceOptions)
	if err != nil {
		return nil, err
	}
	return &walkSession{target: target, traversal: traversal, sources: sources, logger: logger}, nil
}

// collect walks the target with rules. A nil rule set lists everything.
func (session *walkSession) collect(ctx context.Context, rules *ignore.RuleSet) (types.WalkResult, error) {
	if !session.target.isDirectory {
		return session.fileResult()
	}
	treeWalker, err := walker.New(session.traversal, rules, session.logger)
	if err != nil {
		return types.WalkResult{}, err
	}
	traversal := treeWalker.Walk(ctx)
	result := types.WalkResult{Root: treeWalker.Root()}

	producer := func(streamCtx context.Context, nodes chan<- types.Node) error {
		for node := range traversal.Nodes() {
			select {
			case nodes <- node:
			case <-streamCtx.Done():
				return streamCtx.Err()
			}
		}
		return traversal.Err()
	}
	consumer := func(node types.Node) error {
		result.Nodes = append(result.Nodes, node)
		return nil
	}
	if err := dispatchStream(ctx, producer, consumer); err != nil {
		return types.WalkResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.WalkResult{}, err
	}
	result.Warnings = traversal.Warnings()
	return result, nil
}

// view returns the node set named by view.
func (session *walkSession) view(ctx context.Context, view types.View) (types.WalkResult, error) {
	effective, err := session.collect(ctx, session.sources.RuleSet())
	if err != nil || view == types.ViewEffective {
		return effective, err
	}
	all, err := session.collect(ctx, nil)
	if err != nil {
		return types.WalkResult{}, err
	}
	if view == types.ViewRemoved {
		all.Nodes = stats.Removed(all.Nodes, effective.Nodes)
	}
	return all, nil
}

// viewWalks holds the partitioned nodes of a target and the traversal
// warnings behind each view.
type viewWalks struct {
	views    stats.ViewSet
	warnings map[types.View][]types.Warning
}

// viewSet walks the target with and without rules. The effective view reports
// the warnings of the filtered walk; the other views report those of the
// unfiltered walk.
func (session *walkSession) viewSet(ctx context.Context) (viewWalks, error) {
	effective, err := session.collect(ctx, session.sources.RuleSet())
	if err != nil {
		return viewWalks{}, err
	}
	all, err := session.collect(ctx, nil)
	if err != nil {
		return viewWalks{}, err
	}
	return viewWalks{
		views: stats.Views(all.Nodes, effective.Nodes),
		warnings: map[types.View][]types.Warning{
			types.ViewEffective: effective.Warnings,
			types.ViewAll:       all.Warnings,
			types.ViewRemoved:   all.Warnings,
		},
	}, nil
}

func (session *walkSession) reader() *content.Reader {
	return content.NewReader(content.Options{
		MaxFileSize: session.traversal.EffectiveMaxFileSize(),
		BinaryRules: session.sources.BinaryRuleSet(),
		Logger:      session.logger,
	})
}

// fileResult describes a single file named on the command line. Ignore rules
// do not apply to files named explicitly.
func (session *walkSession) fileResult() (types.WalkResult, error) {
	info, err := os.Stat(session.target.absolutePath)
	if err != nil {
		return types.WalkResult{}, fmt.Errorf(errorStatFormat, session.target.label, err)
	}
	node := types.Node{
		RelativePath: filepath.Base(session.target.absolutePath),
		AbsolutePath: session.target.absolutePath,
		Kind:         types.NodeKindFile,
		Size:         info.Size(),
		ModifiedAt:   info.ModTime(),
	}
	return types.WalkResult{Root: filepath.Dir(session.target.absolutePath), Nodes: []types.Node{node}}, nil
}

// readContent reads nodes in parallel keeping walk order.
func (session *walkSession) readContent(ctx context.Context, nodes []types.Node) ([]content.Result, error) {
	return session.reader().ReadAll(ctx, nodes, content.DefaultConcurrency)
}

// contentFunc adapts the reader to the statistics aggregator.
func (session *walkSession) contentFunc() stats.ContentFunc {
	reader := session.reader()
	return func(node types.Node) (string, error) {
		result, err := reader.Read(node)
		if err != nil {
			return "", err
		}
		return result.Content, nil
	}
}

// countTokens totals tokens per model across readable results.
func countTokens(registry *tokenizer.Registry, results []content.Result, logger *zap.Logger) map[string]int {
	if registry == nil {
		return nil
	}
	totals := make(map[string]int, len(registry.Models()))
	for _, model := range registry.Models() {
		totals[model] = 0
		for _, result := range results {
			if !result.HasContent() {
				continue
			}
			count, err := registry.CountTokens(result.Content, model)
			if err != nil {
				logger.Warn(warningTokenMessage, zap.String("path", result.Node.RelativePath), zap.String("model", model), zap.Error(err))
				continue
			}
			totals[model] += count
		}
	}
	return totals
}

// dispatchStream runs produce and consume concurrently over a channel. The
// first error cancels both sides; cancellation itself is not an error.
func dispatchStream[T any](
	ctx context.Context,
	produce func(context.Context, chan<- T) error,
	consume func(T) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	items := make(chan T)

	group.Go(func() error {
		defer close(items)
		return produce(streamCtx, items)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case item, ok := <-items:
				if !ok {
					return nil
				}
				if err := consume(item); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolveAndValidatePaths converts input paths to absolute form and validates their existence.
func resolveAndValidatePaths(workingDirectory string, inputs []string) ([]resolvedPath, error) {
	seen := make(map[string]struct{})
	var result []resolvedPath
	for _, inputPath := range inputs {
		candidate := inputPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(workingDirectory, candidate)
		}
		absolutePath, absolutePathError := filepath.Abs(candidate)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, resolvedPath{label: inputPath, absolutePath: cleanPath, isDirectory: info.IsDir()})
	}
	if len(result) == 0 {
		return nil, errors.New(errorNoValidPaths)
	}
	return result, nil
}
