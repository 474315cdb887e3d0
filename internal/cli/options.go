package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/summarize/internal/config"
	"github.com/temirov/summarize/internal/output"
	"github.com/temirov/summarize/internal/tokenizer"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

const (
	viewIncluded = "included"
)

// walkFlags stores configuration for traversal-related flags.
type walkFlags struct {
	exclusionPatterns   []string
	ignoreSources       []string
	disableGitignore    bool
	disableDockerignore bool
	disableIgnoreFile   bool
	disableDefaults     bool
	disableNested       bool
	includeGit          bool
	followSymlinks      bool
	maxDepth            int
	maxFileSize         int64
}

// addWalkFlags registers traversal-related flags on the command.
func addWalkFlags(command *cobra.Command, flags *walkFlags) {
	flagSet := command.Flags()
	flagSet.StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	flagSet.StringArrayVar(&flags.ignoreSources, ignoreFileFlagName, nil, ignoreFileFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableDockerignore, noDockerignoreFlagName, false, noDockerignoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableDefaults, noDefaultsFlagName, false, noDefaultsFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableNested, noNestedFlagName, false, noNestedFlagDescription)
	registerBooleanFlag(flagSet, &flags.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	registerBooleanFlag(flagSet, &flags.followSymlinks, followSymlinksFlagName, false, followSymlinksFlagDescription)
	flagSet.IntVarP(&flags.maxDepth, levelFlagName, levelFlagShorthand, 0, levelFlagDescription)
	flagSet.Int64Var(&flags.maxFileSize, maxSizeFlagName, types.DefaultMaxFileSize, maxSizeFlagDescription)
}

// apply overlays the flags the user set onto the walk configuration.
func (flags walkFlags) apply(flagSet *pflag.FlagSet, walk config.WalkConfiguration) config.WalkConfiguration {
	resolved := walk
	resolved.Exclude = utils.DeduplicatePatterns(append(append([]string{}, walk.Exclude...), flags.exclusionPatterns...))
	resolved.IgnoreSources = append(append([]string{}, walk.IgnoreSources...), flags.ignoreSources...)

	fileNames := walk.IgnoreFiles
	if fileNames == nil {
		fileNames = utils.DefaultIgnoreFileNames
	}
	disabled := map[string]bool{
		utils.GitIgnoreFileName:    flags.disableGitignore,
		utils.DockerIgnoreFileName: flags.disableDockerignore,
		utils.IgnoreFileName:       flags.disableIgnoreFile,
	}
	resolved.IgnoreFiles = make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		if !disabled[fileName] {
			resolved.IgnoreFiles = append(resolved.IgnoreFiles, fileName)
		}
	}

	if flagSet.Changed(noDefaultsFlagName) {
		resolved.UseDefaults = pointerTo(!flags.disableDefaults)
	}
	if flagSet.Changed(noNestedFlagName) {
		resolved.NestedIgnoreFiles = pointerTo(!flags.disableNested)
	}
	if flagSet.Changed(includeGitFlagName) {
		resolved.IncludeGit = pointerTo(flags.includeGit)
	}
	if flagSet.Changed(followSymlinksFlagName) {
		resolved.FollowSymlinks = pointerTo(flags.followSymlinks)
	}
	if flagSet.Changed(levelFlagName) {
		resolved.MaxDepth = pointerTo(flags.maxDepth)
	}
	if flagSet.Changed(maxSizeFlagName) {
		resolved.MaxFileSize = pointerTo(flags.maxFileSize)
	}
	return resolved
}

// outputFlags stores configuration for rendering flags.
type outputFlags struct {
	format          string
	summary         bool
	copyToClipboard bool
}

func addOutputFlags(command *cobra.Command, flags *outputFlags, withSummary bool) {
	command.Flags().StringVar(&flags.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	if withSummary {
		registerBooleanFlag(command.Flags(), &flags.summary, summaryFlagName, true, summaryFlagDescription)
	}
	registerBooleanFlag(command.Flags(), &flags.copyToClipboard, copyFlagName, false, copyFlagDescription)
}

// resolve applies configured output defaults to flags the user left unset.
func (flags outputFlags) resolve(flagSet *pflag.FlagSet, configured config.OutputConfiguration) (outputFlags, error) {
	resolved := flags
	if !flagSet.Changed(formatFlagName) && configured.Format != "" {
		resolved.format = configured.Format
	}
	resolved.format = strings.ToLower(resolved.format)
	if err := output.ValidateFormat(resolved.format); err != nil {
		return outputFlags{}, err
	}
	if !flagSet.Changed(copyFlagName) && configured.Clipboard != nil {
		resolved.copyToClipboard = *configured.Clipboard
	}
	return resolved, nil
}

// tokenFlags stores configuration for token counting flags.
type tokenFlags struct {
	enabled bool
	models  []string
}

func addTokenFlags(command *cobra.Command, flags *tokenFlags) {
	registerBooleanFlag(command.Flags(), &flags.enabled, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringArrayVar(&flags.models, modelFlagName, nil, modelFlagDescription)
}

// registry builds a token registry for the resolved models, or nil when
// token counting is disabled. Naming a model enables counting.
func (flags tokenFlags) registry(flagSet *pflag.FlagSet, configured config.TokenConfiguration) (*tokenizer.Registry, error) {
	enabled := configured.Enabled != nil && *configured.Enabled
	if flagSet.Changed(tokensFlagName) {
		enabled = flags.enabled
	}
	models := configured.Models
	if flagSet.Changed(modelFlagName) {
		models = flags.models
		enabled = true
	}
	if !enabled {
		return nil, nil
	}
	if len(models) == 0 {
		models = []string{tokenizer.DefaultModel}
	}
	return tokenizer.NewRegistry(models)
}

// parseView maps a --view value onto a node set.
func parseView(value string) (types.View, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case viewIncluded, string(types.ViewEffective), "":
		return types.ViewEffective, nil
	case string(types.ViewRemoved):
		return types.ViewRemoved, nil
	case string(types.ViewAll):
		return types.ViewAll, nil
	default:
		return "", fmt.Errorf(errorUnknownView, value)
	}
}

// colorize decides whether raw output written to writer is colored. An
// explicit flag wins, then configuration, then terminal detection.
func (app *application) colorize(flagSet *pflag.FlagSet, configured config.OutputConfiguration, writer io.Writer, copyToClipboard bool) bool {
	if copyToClipboard {
		return false
	}
	if flagSet.Changed(colorFlagName) {
		return app.colorEnabled
	}
	if configured.Color != nil {
		return *configured.Color
	}
	file, isFile := writer.(*os.File)
	if !isFile || color.NoColor {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func pointerTo[T any](value T) *T {
	return &value
}
