package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/summarize/internal/config"
	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/output"
	"github.com/temirov/summarize/internal/stats"
	"github.com/temirov/summarize/internal/tokenizer"
	"github.com/temirov/summarize/internal/types"
)

const (
	explainExcludedFormat = "%s: excluded by %q%s\n"
	explainIncludedFormat = "%s: included by %q%s\n"
	explainAncestorFormat = "%s: excluded because %s/ is excluded by %q%s\n"
	explainNoMatchFormat  = "%s: included (no pattern matches)\n"
	explainScopeFormat    = " (scope %s/)"
)

// createTreeCommand returns the tree subcommand.
func createTreeCommand(app *application) *cobra.Command {
	var walkConfiguration walkFlags
	var outputConfiguration outputFlags
	viewName := viewIncluded

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			view, err := parseView(viewName)
			if err != nil {
				return err
			}
			run, err := app.prepareRun(command, arguments, walkConfiguration)
			if err != nil {
				return err
			}
			resolvedOutput, err := outputConfiguration.resolve(command.Flags(), run.configuration.Output)
			if err != nil {
				return err
			}
			treeOptions := output.TreeOptions{
				Color:   app.colorize(command.Flags(), run.configuration.Output, command.OutOrStdout(), resolvedOutput.copyToClipboard),
				Summary: resolvedOutput.summary,
			}

			var rendered strings.Builder
			var documents []output.WalkDocument
			for index, target := range run.targets {
				session, err := run.openSession(target, app.logger)
				if err != nil {
					return err
				}
				result, err := session.view(command.Context(), view)
				if err != nil {
					return err
				}
				if resolvedOutput.format != types.FormatRaw {
					documents = append(documents, output.NewWalkDocument(result.Root, view, result.Nodes, nil, result.Warnings))
					continue
				}
				if index > 0 {
					rendered.WriteString("\n")
				}
				if err := output.WriteTree(&rendered, target.label, result.Nodes, treeOptions); err != nil {
					return err
				}
			}
			if resolvedOutput.format != types.FormatRaw {
				text, err := renderDocuments(resolvedOutput.format, documents)
				if err != nil {
					return err
				}
				rendered.WriteString(text)
			}
			return app.emit(command.OutOrStdout(), rendered.String(), resolvedOutput.copyToClipboard)
		},
	}

	addWalkFlags(treeCommand, &walkConfiguration)
	addOutputFlags(treeCommand, &outputConfiguration, true)
	treeCommand.Flags().StringVar(&viewName, viewFlagName, viewIncluded, viewFlagDescription)
	return treeCommand
}

// createContentCommand returns the content subcommand.
func createContentCommand(app *application) *cobra.Command {
	var walkConfiguration walkFlags
	var outputConfiguration outputFlags
	var tokenConfiguration tokenFlags

	contentCommand := &cobra.Command{
		Use:     contentUse,
		Aliases: []string{contentAlias},
		Short:   contentShortDescription,
		Long:    contentLongDescription,
		Example: contentUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			run, err := app.prepareRun(command, arguments, walkConfiguration)
			if err != nil {
				return err
			}
			resolvedOutput, err := outputConfiguration.resolve(command.Flags(), run.configuration.Output)
			if err != nil {
				return err
			}
			registry, err := tokenConfiguration.registry(command.Flags(), run.configuration.Tokens)
			if err != nil {
				return err
			}

			var rendered strings.Builder
			var documents []output.WalkDocument
			for _, target := range run.targets {
				session, err := run.openSession(target, app.logger)
				if err != nil {
					return err
				}
				result, err := session.collect(command.Context(), session.sources.RuleSet())
				if err != nil {
					return err
				}
				results, err := session.readContent(command.Context(), result.Nodes)
				if err != nil {
					return err
				}
				tokens := countTokens(registry, results, app.logger)
				if resolvedOutput.format != types.FormatRaw {
					document := output.NewWalkDocument(result.Root, types.ViewEffective, result.Nodes, results, result.Warnings)
					document.Summary.Tokens = tokens
					documents = append(documents, document)
					continue
				}
				if err := output.WriteContent(&rendered, results, session.traversal.EffectiveMaxFileSize()); err != nil {
					return err
				}
				if resolvedOutput.summary {
					fmt.Fprintf(&rendered, "%s\n", output.FormatSummaryLine(result.FileCount(), result.TotalSize(), tokens))
				}
			}
			if resolvedOutput.format != types.FormatRaw {
				text, err := renderDocuments(resolvedOutput.format, documents)
				if err != nil {
					return err
				}
				rendered.WriteString(text)
			}
			return app.emit(command.OutOrStdout(), rendered.String(), resolvedOutput.copyToClipboard)
		},
	}

	addWalkFlags(contentCommand, &walkConfiguration)
	addOutputFlags(contentCommand, &outputConfiguration, true)
	addTokenFlags(contentCommand, &tokenConfiguration)
	return contentCommand
}

// createStatsCommand returns the stats subcommand.
func createStatsCommand(app *application) *cobra.Command {
	var walkConfiguration walkFlags
	var outputConfiguration outputFlags
	var tokenConfiguration tokenFlags
	var recursive bool
	viewName := viewIncluded
	groupBy := string(types.GroupByExtension)

	statsCommand := &cobra.Command{
		Use:     statsUse,
		Aliases: []string{statsAlias},
		Short:   statsShortDescription,
		Long:    statsLongDescription,
		Example: statsUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			view, err := parseView(viewName)
			if err != nil {
				return err
			}
			run, err := app.prepareRun(command, arguments, walkConfiguration)
			if err != nil {
				return err
			}
			resolvedOutput, err := outputConfiguration.resolve(command.Flags(), run.configuration.Output)
			if err != nil {
				return err
			}
			registry, err := tokenConfiguration.registry(command.Flags(), run.configuration.Tokens)
			if err != nil {
				return err
			}
			grouping := types.Grouping(strings.ToLower(groupBy))

			var rendered strings.Builder
			var documents []output.StatisticsDocument
			for index, target := range run.targets {
				session, err := run.openSession(target, app.logger)
				if err != nil {
					return err
				}
				aggregated, err := aggregateTarget(command.Context(), session, grouping, recursive, registry)
				if err != nil {
					return err
				}
				record := aggregated.records[view]
				if resolvedOutput.format != types.FormatRaw {
					documents = append(documents, output.NewStatisticsDocument(aggregated.root, view, record, aggregated.warnings[view]))
					continue
				}
				if index > 0 {
					rendered.WriteString("\n")
				}
				fmt.Fprintf(&rendered, "%s (%s)\n", target.label, statsViewLabel(view))
				if err := output.WriteStatisticsTable(&rendered, record, registry.Models()); err != nil {
					return err
				}
				if view == types.ViewEffective && resolvedOutput.summary {
					removed := aggregated.records[types.ViewRemoved]
					fmt.Fprintf(&rendered, "removed by ignore rules: %s\n", output.FormatSummaryLine(removed.Total.FileCount, removed.Total.TotalSizeBytes, nil))
				}
			}
			if resolvedOutput.format != types.FormatRaw {
				text, err := renderDocuments(resolvedOutput.format, documents)
				if err != nil {
					return err
				}
				rendered.WriteString(text)
			}
			return app.emit(command.OutOrStdout(), rendered.String(), resolvedOutput.copyToClipboard)
		},
	}

	addWalkFlags(statsCommand, &walkConfiguration)
	addOutputFlags(statsCommand, &outputConfiguration, true)
	addTokenFlags(statsCommand, &tokenConfiguration)
	statsCommand.Flags().StringVar(&viewName, viewFlagName, viewIncluded, viewFlagDescription)
	statsCommand.Flags().StringVar(&groupBy, groupByFlagName, string(types.GroupByExtension), groupByFlagDescription)
	registerBooleanFlag(statsCommand.Flags(), &recursive, recursiveFlagName, false, recursiveFlagDescription)
	return statsCommand
}

// targetStatistics is the per-view statistics of one target.
type targetStatistics struct {
	records  map[types.View]types.StatisticsRecord
	warnings map[types.View][]types.Warning
	root     string
}

// aggregateTarget computes the statistics of every view for one target.
func aggregateTarget(ctx context.Context, session *walkSession, grouping types.Grouping, recursive bool, registry *tokenizer.Registry) (targetStatistics, error) {
	walks, err := session.viewSet(ctx)
	if err != nil {
		return targetStatistics{}, err
	}
	options := stats.Options{Recursive: recursive}
	if registry != nil {
		options.Models = registry.Models()
		options.TokenCounter = registry
		options.Content = session.contentFunc()
	}
	records, err := stats.AggregateViews(walks.views, grouping, options)
	if err != nil {
		return targetStatistics{}, err
	}
	root := session.target.absolutePath
	if !session.target.isDirectory {
		root = filepath.Dir(root)
	}
	return targetStatistics{records: records, warnings: walks.warnings, root: root}, nil
}

func statsViewLabel(view types.View) string {
	if view == types.ViewEffective {
		return viewIncluded
	}
	return string(view)
}

// createExplainCommand returns the explain subcommand.
func createExplainCommand(app *application) *cobra.Command {
	var walkConfiguration walkFlags
	rootPath := defaultPath

	explainCommand := &cobra.Command{
		Use:     explainUse,
		Aliases: []string{explainAlias},
		Short:   explainShortDescription,
		Example: explainUsageExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			run, err := app.prepareRun(command, []string{rootPath}, walkConfiguration)
			if err != nil {
				return err
			}
			target := run.targets[0]
			session, err := run.openSession(target, app.logger)
			if err != nil {
				return err
			}
			ruleSet := session.sources.RuleSet()
			var rendered strings.Builder
			for _, argument := range arguments {
				relativePath, isDirectory, err := relativeToRoot(run.workingDirectory, target.absolutePath, argument)
				if err != nil {
					return err
				}
				writeExplanation(&rendered, ruleSet, argument, relativePath, isDirectory)
			}
			return app.emit(command.OutOrStdout(), rendered.String(), false)
		},
	}

	addWalkFlags(explainCommand, &walkConfiguration)
	explainCommand.Flags().StringVar(&rootPath, rootFlagName, defaultPath, rootFlagDescription)
	return explainCommand
}

// relativeToRoot converts a command line path into a slash-separated path
// relative to root. Paths that do not exist are treated as files unless they
// end with a separator.
func relativeToRoot(workingDirectory string, root string, argument string) (string, bool, error) {
	candidate := argument
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(workingDirectory, candidate)
	}
	relativePath, err := filepath.Rel(root, candidate)
	if err != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", false, fmt.Errorf(errorOutsideRoot, argument, root)
	}
	isDirectory := strings.HasSuffix(argument, "/") || strings.HasSuffix(argument, string(filepath.Separator))
	if info, statErr := os.Lstat(candidate); statErr == nil {
		isDirectory = info.IsDir()
	}
	return filepath.ToSlash(relativePath), isDirectory, nil
}

func writeExplanation(writer *strings.Builder, ruleSet *ignore.RuleSet, label string, relativePath string, isDirectory bool) {
	segments := strings.Split(relativePath, "/")
	for index := 1; index < len(segments); index++ {
		parent := strings.Join(segments[:index], "/")
		if !ruleSet.IsExcluded(parent, true, false) {
			continue
		}
		pattern, _ := ruleSet.Explain(parent, true)
		fmt.Fprintf(writer, explainAncestorFormat, label, parent, pattern.Raw(), patternScope(pattern))
		return
	}
	pattern, matched := ruleSet.Explain(relativePath, isDirectory)
	switch {
	case !matched:
		fmt.Fprintf(writer, explainNoMatchFormat, label)
	case pattern.Negated():
		fmt.Fprintf(writer, explainIncludedFormat, label, pattern.Raw(), patternScope(pattern))
	default:
		fmt.Fprintf(writer, explainExcludedFormat, label, pattern.Raw(), patternScope(pattern))
	}
}

func patternScope(pattern ignore.Pattern) string {
	if pattern.Base() == "" {
		return ""
	}
	return fmt.Sprintf(explainScopeFormat, pattern.Base())
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, err := app.resolveWorkingDirectory()
			if err != nil {
				return err
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Global:           global,
				Force:            force,
				WorkingDirectory: workingDirectory,
				HomeDirectory:    app.homeDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), initSuccessFormat, path)
			return err
		},
	}

	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// renderDocuments renders a single document as-is and several as a list.
func renderDocuments[T any](format string, documents []T) (string, error) {
	if len(documents) == 1 {
		return output.RenderDocument(format, documents[0])
	}
	return output.RenderDocument(format, documents)
}
