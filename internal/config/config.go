// Package config loads ignore sources and application configuration.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	// gitDirectoryOrigin labels the synthetic source excluding the Git directory.
	gitDirectoryOrigin = "(git directory)"
	// binarySectionHeader identifies the section listing binary content patterns.
	binarySectionHeader = "[binary]"
	// ignoreSectionHeader identifies the section listing ignore patterns.
	ignoreSectionHeader = "[ignore]"

	errorOpenIgnoreFileFormat  = "open ignore file: %w"
	errorReadIgnoreFileFormat  = "read ignore file: %w"
	errorIgnoreFileIsDirectory = "ignore source is a directory"
	warningSkipDirectoryFormat = "skipping directory while collecting ignore files"
)

// SourceOptions controls which ignore sources are collected for a root.
type SourceOptions struct {
	// FileNames are the ignore files looked up in every directory, in load order.
	FileNames []string
	// ExplicitFiles are ignore files named by the caller; they must be readable.
	ExplicitFiles []string
	// ExtraPatterns are user-supplied patterns; they prune ignore-file discovery
	// but are not returned as a source.
	ExtraPatterns []string
	UseDefaults   bool
	Recursive     bool
	IncludeGit    bool
	Logger        *zap.Logger
}

// LoadedSources holds the ignore sources for a root in load order and the
// patterns from [binary] sections of .ignore files.
type LoadedSources struct {
	Sources        []ignore.Source
	BinarySources  []ignore.Source
	ExtraPatterns  []string
	loadedFilePath map[string]struct{}
}

// RuleSet compiles the ignore sources followed by the extra patterns.
func (loaded LoadedSources) RuleSet() *ignore.RuleSet {
	return ignore.Build(loaded.Sources, loaded.ExtraPatterns)
}

// BinaryRuleSet compiles the [binary] patterns.
func (loaded LoadedSources) BinaryRuleSet() *ignore.RuleSet {
	return ignore.Build(loaded.BinarySources, nil)
}

// LoadIgnoreFile reads one ignore file whose patterns are scoped to base, a
// slash-separated directory relative to the traversal root. Only .ignore files
// recognize the [ignore] and [binary] section headers. A missing file yields
// empty sources and no error.
//
// #nosec G304
func LoadIgnoreFile(ignoreFilePath string, base string) (ignore.Source, ignore.Source, error) {
	patterns := ignore.Source{Origin: ignoreFilePath, Base: base}
	binaryPatterns := ignore.Source{Origin: ignoreFilePath, Base: base}

	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return patterns, binaryPatterns, nil
		}
		return patterns, binaryPatterns, &types.ConfigError{Path: ignoreFilePath, Err: fmt.Errorf(errorOpenIgnoreFileFormat, openFileError)}
	}
	defer fileHandle.Close()

	if info, statError := fileHandle.Stat(); statError == nil && info.IsDir() {
		return patterns, binaryPatterns, &types.ConfigError{Path: ignoreFilePath, Err: errors.New(errorIgnoreFileIsDirectory)}
	}

	recognizeSections := filepath.Base(ignoreFilePath) == utils.IgnoreFileName
	currentSectionHeader := ignoreSectionHeader
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		if recognizeSections && strings.EqualFold(trimmedLine, binarySectionHeader) {
			currentSectionHeader = binarySectionHeader
			continue
		}
		if recognizeSections && strings.EqualFold(trimmedLine, ignoreSectionHeader) {
			currentSectionHeader = ignoreSectionHeader
			continue
		}
		if currentSectionHeader == binarySectionHeader {
			binaryPatterns.Patterns = append(binaryPatterns.Patterns, line)
			continue
		}
		patterns.Patterns = append(patterns.Patterns, line)
	}
	if scanError := scanner.Err(); scanError != nil {
		return patterns, binaryPatterns, &types.ConfigError{Path: ignoreFilePath, Err: fmt.Errorf(errorReadIgnoreFileFormat, scanError)}
	}
	return patterns, binaryPatterns, nil
}

// LoadIgnoreSources collects the ignore sources for rootDirectoryPath in
// precedence order: built-in defaults, explicit files, ignore files in the
// root, then ignore files in nested directories in walk order, and finally the
// Git directory exclusion unless options.IncludeGit is set. Nested patterns are
// scoped to their directory. Directories excluded by the rules gathered so far
// are not searched for further ignore files.
func LoadIgnoreSources(rootDirectoryPath string, options SourceOptions) (LoadedSources, error) {
	logger := utils.LoggerOrNop(options.Logger)
	loaded := LoadedSources{
		ExtraPatterns:  utils.DeduplicatePatterns(trimPatterns(options.ExtraPatterns)),
		loadedFilePath: make(map[string]struct{}),
	}

	absoluteRoot, absoluteError := filepath.Abs(rootDirectoryPath)
	if absoluteError != nil {
		return LoadedSources{}, &types.ConfigError{Path: rootDirectoryPath, Err: absoluteError}
	}

	if options.UseDefaults {
		loaded.Sources = append(loaded.Sources, ignore.DefaultSource())
	}

	for _, explicitFile := range options.ExplicitFiles {
		absoluteFile, fileError := filepath.Abs(explicitFile)
		if fileError != nil {
			return LoadedSources{}, &types.ConfigError{Path: explicitFile, Err: fileError}
		}
		if _, statError := os.Stat(absoluteFile); statError != nil {
			return LoadedSources{}, &types.ConfigError{Path: explicitFile, Err: statError}
		}
		if loadError := loaded.addFile(absoluteFile, explicitBase(absoluteRoot, absoluteFile)); loadError != nil {
			return LoadedSources{}, loadError
		}
	}

	if len(options.FileNames) == 0 {
		loaded.finish(options.IncludeGit)
		return loaded, nil
	}

	if !options.Recursive {
		for _, fileName := range options.FileNames {
			if loadError := loaded.addFile(filepath.Join(absoluteRoot, fileName), ""); loadError != nil {
				return LoadedSources{}, loadError
			}
		}
		loaded.finish(options.IncludeGit)
		return loaded, nil
	}

	discoveryRules := loaded.discoveryRules(options.IncludeGit)
	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			logger.Warn(warningSkipDirectoryFormat, zap.String("path", currentDirectoryPath), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() && currentDirectoryPath != absoluteRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, absoluteRoot)
		base := ""
		if relativeDirectory != "." {
			if discoveryRules.IsExcluded(relativeDirectory, true, false) {
				return filepath.SkipDir
			}
			base = relativeDirectory
		}

		sourceCount := len(loaded.Sources)
		for _, fileName := range options.FileNames {
			if loadError := loaded.addFile(filepath.Join(currentDirectoryPath, fileName), base); loadError != nil {
				return loadError
			}
		}
		if len(loaded.Sources) != sourceCount {
			discoveryRules = loaded.discoveryRules(options.IncludeGit)
		}
		return nil
	}

	if walkError := filepath.WalkDir(absoluteRoot, walkFunction); walkError != nil {
		var configError *types.ConfigError
		if errors.As(walkError, &configError) {
			return LoadedSources{}, configError
		}
		return LoadedSources{}, &types.ConfigError{Path: absoluteRoot, Err: walkError}
	}

	loaded.finish(options.IncludeGit)
	return loaded, nil
}

func (loaded *LoadedSources) addFile(ignoreFilePath string, base string) error {
	if _, seen := loaded.loadedFilePath[ignoreFilePath]; seen {
		return nil
	}
	loaded.loadedFilePath[ignoreFilePath] = struct{}{}

	patterns, binaryPatterns, loadError := LoadIgnoreFile(ignoreFilePath, base)
	if loadError != nil {
		return loadError
	}
	if len(patterns.Patterns) > 0 {
		loaded.Sources = append(loaded.Sources, patterns)
	}
	if len(binaryPatterns.Patterns) > 0 {
		loaded.BinarySources = append(loaded.BinarySources, binaryPatterns)
	}
	return nil
}

func (loaded *LoadedSources) finish(includeGit bool) {
	if !includeGit {
		loaded.Sources = append(loaded.Sources, gitDirectorySource())
	}
}

func (loaded *LoadedSources) discoveryRules(includeGit bool) *ignore.RuleSet {
	sources := loaded.Sources
	if !includeGit {
		sources = append(append([]ignore.Source(nil), sources...), gitDirectorySource())
	}
	return ignore.Build(sources, loaded.ExtraPatterns)
}

func gitDirectorySource() ignore.Source {
	return ignore.Source{Origin: gitDirectoryOrigin, Patterns: []string{gitDirectoryPattern}}
}

// explicitBase scopes an explicit ignore file to its directory when it lives
// inside the root and to the root otherwise.
func explicitBase(absoluteRoot string, absoluteFile string) string {
	relativeDirectory := utils.RelativePathOrSelf(filepath.Dir(absoluteFile), absoluteRoot)
	if relativeDirectory == "." || filepath.IsAbs(relativeDirectory) || strings.HasPrefix(relativeDirectory, "..") {
		return ""
	}
	return relativeDirectory
}

func trimPatterns(patterns []string) []string {
	trimmed := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		value := strings.TrimSpace(pattern)
		if value == "" {
			continue
		}
		trimmed = append(trimmed, value)
	}
	return trimmed
}
