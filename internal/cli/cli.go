// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/summarize/internal/services/clipboard"
	"github.com/temirov/summarize/internal/utils"
)

const (
	exclusionFlagName      = "e"
	ignoreFileFlagName     = "ignore-file"
	noGitignoreFlagName    = "no-gitignore"
	noDockerignoreFlagName = "no-dockerignore"
	noIgnoreFlagName       = "no-ignore"
	noDefaultsFlagName     = "no-defaults"
	noNestedFlagName       = "no-nested"
	includeGitFlagName     = "git"
	followSymlinksFlagName = "follow-symlinks"
	levelFlagName          = "level"
	levelFlagShorthand     = "L"
	maxSizeFlagName        = "max-size"
	formatFlagName         = "format"
	summaryFlagName        = "summary"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	viewFlagName           = "view"
	groupByFlagName        = "group-by"
	recursiveFlagName      = "recursive"
	rootFlagName           = "root"
	globalFlagName         = "global"
	forceFlagName          = "force"
	configFlagName         = "config"
	colorFlagName          = "color"
	copyFlagName           = "copy"
	versionFlagName        = "version"

	versionTemplate      = "summarize version: %s\n"
	defaultPath          = "."
	rootUse              = "summarize"
	rootShortDescription = "summarize command line interface"
	rootLongDescription  = `summarize walks a project while honoring .gitignore, .dockerignore and .ignore files.
It renders directory trees, concatenates file content, and reports size and token statistics.
Use --format to select raw, json, or yaml output, --config to point at a configuration file, and --version to print the application version.`

	treeUse                 = "tree [paths...]"
	contentUse              = "content [paths...]"
	statsUse                = "stats [paths...]"
	initUse                 = "init"
	explainUse              = "explain <paths...>"
	treeAlias               = "t"
	contentAlias            = "c"
	statsAlias              = "s"
	explainAlias            = "x"
	treeShortDescription    = "display directory tree (" + treeAlias + ")"
	contentShortDescription = "show file contents (" + contentAlias + ")"
	statsShortDescription   = "report size and token statistics (" + statsAlias + ")"
	initShortDescription    = "write a default configuration file"
	explainShortDescription = "show which ignore pattern decides a path (" + explainAlias + ")"

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `List directories and files that survive the ignore rules.
Use --view removed to list only what the rules exclude, or --view all to list everything.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Render the tree of the current project
  summarize tree

  # Show what the ignore files remove, as YAML
  summarize tree --view removed --format yaml .`

	// contentLongDescription provides detailed help for the content command.
	contentLongDescription = `Concatenate the text of every included file.
Binary files and files above --max-size are listed without content. Notebook files are reduced to their cells.`
	// contentUsageExample demonstrates content command usage.
	contentUsageExample = `  # Dump the project and copy it to the clipboard
  summarize content --copy

  # Count tokens for two models while dumping
  summarize content --tokens --model gpt-4o --model chars-4 ./src`

	// statsLongDescription provides detailed help for the stats command.
	statsLongDescription = `Aggregate file counts, sizes and optional token counts by extension or directory.
Use --view to compare the included files against the removed ones.`
	// statsUsageExample demonstrates stats command usage.
	statsUsageExample = `  # Sizes per extension
  summarize stats

  # Rolled-up directory totals with token counts, as JSON
  summarize stats --group-by directory --recursive --tokens --format json`

	// explainUsageExample demonstrates explain command usage.
	explainUsageExample = `  # Why is this file missing from the tree?
  summarize explain build/output.js`

	exclusionFlagDescription      = "exclude path pattern"
	ignoreFileFlagDescription     = "load an additional ignore file"
	noGitignoreFlagDescription    = "do not use .gitignore"
	noDockerignoreFlagDescription = "do not use .dockerignore"
	noIgnoreFlagDescription       = "do not use .ignore"
	noDefaultsFlagDescription     = "do not apply the built-in ignore patterns"
	noNestedFlagDescription       = "only read ignore files in the root directory"
	includeGitFlagDescription     = "include git directory"
	followSymlinksFlagDescription = "follow symbolic links"
	levelFlagDescription          = "limit the number of directory levels (0 means unlimited)"
	maxSizeFlagDescription        = "skip content of files larger than this many bytes"
	formatFlagDescription         = "output format (raw, json, yaml)"
	summaryFlagDescription        = "include summary of resulting files"
	tokensFlagDescription         = "include token counts"
	modelFlagDescription          = "tokenizer model to use for token counting (repeatable)"
	viewFlagDescription           = "node set to show (included, removed, all)"
	groupByFlagDescription        = "statistics grouping (extension, directory)"
	recursiveFlagDescription      = "roll directory totals up into every ancestor"
	rootFlagDescription           = "traversal root the paths are evaluated against"
	globalFlagDescription         = "write the configuration into the global directory"
	forceFlagDescription          = "overwrite an existing configuration file"
	configFlagDescription         = "path to a configuration file"
	colorFlagDescription          = "colorize raw output (defaults to terminal detection)"
	copyFlagDescription           = "copy the output to the system clipboard"
	versionFlagDescription        = "display application version"

	initSuccessFormat           = "configuration written to %s\n"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorClipboardFormat        = "copy to clipboard: %w"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNoValidPaths indicates that all paths are invalid.
	errorNoValidPaths   = "no valid paths"
	errorUnknownView    = "unknown view %q"
	errorOutsideRoot    = "path '%s' is outside the root %s"
	warningTokenMessage = "token count failed"
)

// application carries the collaborators shared by every command.
type application struct {
	logger           *zap.Logger
	copier           clipboard.Copier
	workingDirectory string
	homeDirectory    string
	configPath       string
	colorEnabled     bool
}

// Execute runs the summarize application.
func Execute(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCommand := createRootCommand(&application{logger: logger, copier: clipboard.NewService()})
	rootCommand.SetArgs(normalizeArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool
	app.logger = utils.LoggerOrNop(app.logger)
	if app.copier == nil {
		app.copier = clipboard.NewService()
	}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.colorEnabled, colorFlagName, false, colorFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(app),
		createContentCommand(app),
		createStatsCommand(app),
		createExplainCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// resolveWorkingDirectory returns the configured working directory or the
// process working directory.
func (app *application) resolveWorkingDirectory() (string, error) {
	if app.workingDirectory != "" {
		return app.workingDirectory, nil
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, err)
	}
	return workingDirectory, nil
}

// emit writes rendered output and optionally mirrors it to the clipboard.
func (app *application) emit(writer io.Writer, rendered string, copyToClipboard bool) error {
	if _, err := io.WriteString(writer, rendered); err != nil {
		return err
	}
	if !copyToClipboard {
		return nil
	}
	if err := app.copier.Copy(rendered); err != nil {
		return fmt.Errorf(errorClipboardFormat, err)
	}
	return nil
}
