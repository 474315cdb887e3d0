package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/summarize/internal/config"
	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

func writeTestFile(testingInstance *testing.T, filePath string, content string) {
	testingInstance.Helper()
	require.NoError(testingInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testingInstance, os.WriteFile(filePath, []byte(content), 0o600))
}

func sourcePatterns(sources []ignore.Source) map[string][]string {
	collected := make(map[string][]string)
	for _, source := range sources {
		collected[source.Base] = append(collected[source.Base], source.Patterns...)
	}
	return collected
}

// TestLoadIgnoreFileSections verifies that .ignore files split ignore and binary sections.
func TestLoadIgnoreFileSections(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	ignorePath := filepath.Join(rootDirectory, utils.IgnoreFileName)
	writeTestFile(testingInstance, ignorePath, "# comment\n*.tmp\n\n[binary]\n*.min.js\n[ignore]\nbuild/\n")

	patterns, binaryPatterns, loadError := config.LoadIgnoreFile(ignorePath, "")
	require.NoError(testingInstance, loadError)
	assert.Equal(testingInstance, []string{"*.tmp", "build/"}, patterns.Patterns)
	assert.Equal(testingInstance, []string{"*.min.js"}, binaryPatterns.Patterns)
	assert.Equal(testingInstance, ignorePath, patterns.Origin)
}

// TestLoadIgnoreFileGitignoreHasNoSections verifies that section headers are patterns outside .ignore files.
func TestLoadIgnoreFileGitignoreHasNoSections(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	gitignorePath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
	writeTestFile(testingInstance, gitignorePath, "[binary]\n*.log\n")

	patterns, binaryPatterns, loadError := config.LoadIgnoreFile(gitignorePath, "sub")
	require.NoError(testingInstance, loadError)
	assert.Equal(testingInstance, []string{"[binary]", "*.log"}, patterns.Patterns)
	assert.Empty(testingInstance, binaryPatterns.Patterns)
	assert.Equal(testingInstance, "sub", patterns.Base)
}

// TestLoadIgnoreFileMissingAndUnreadable verifies missing files are skipped and directories are rejected.
func TestLoadIgnoreFileMissingAndUnreadable(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()

	patterns, _, missingError := config.LoadIgnoreFile(filepath.Join(rootDirectory, "absent"), "")
	require.NoError(testingInstance, missingError)
	assert.Empty(testingInstance, patterns.Patterns)

	directoryPath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
	require.NoError(testingInstance, os.Mkdir(directoryPath, 0o755))
	_, _, directoryError := config.LoadIgnoreFile(directoryPath, "")
	var configError *types.ConfigError
	require.True(testingInstance, errors.As(directoryError, &configError))
	assert.Equal(testingInstance, directoryPath, configError.Path)
}

// TestLoadIgnoreSourcesRecursive verifies nested ignore files are scoped to their directories.
func TestLoadIgnoreSourcesRecursive(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, utils.IgnoreFileName), "root.txt\n")
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "nested", utils.GitIgnoreFileName), "*.tmp\n!keep.tmp\n")
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "nested", "deeper", utils.IgnoreFileName), "/local.txt\n")

	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		FileNames: utils.DefaultIgnoreFileNames,
		Recursive: true,
	})
	require.NoError(testingInstance, loadError)

	patterns := sourcePatterns(loaded.Sources)
	assert.Equal(testingInstance, []string{"root.txt", ".git/"}, patterns[""])
	assert.Equal(testingInstance, []string{"*.tmp", "!keep.tmp"}, patterns["nested"])
	assert.Equal(testingInstance, []string{"/local.txt"}, patterns["nested/deeper"])

	rules := loaded.RuleSet()
	testCases := []struct {
		testName string
		path     string
		expected bool
	}{
		{testName: "root pattern", path: "root.txt", expected: true},
		{testName: "nested pattern in scope", path: "nested/a.tmp", expected: true},
		{testName: "nested pattern out of scope", path: "a.tmp", expected: false},
		{testName: "nested negation", path: "nested/keep.tmp", expected: false},
		{testName: "anchored nested pattern", path: "nested/deeper/local.txt", expected: true},
		{testName: "anchored nested pattern below scope", path: "nested/deeper/more/local.txt", expected: false},
		{testName: "git directory", path: ".git", expected: true},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(subTest *testing.T) {
			isDirectory := testCase.path == ".git"
			assert.Equal(subTest, testCase.expected, rules.Excludes(testCase.path, isDirectory))
		})
	}
}

// TestLoadIgnoreSourcesOrder verifies defaults load first and the Git exclusion loads last.
func TestLoadIgnoreSourcesOrder(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, utils.GitIgnoreFileName), "!.env\n")

	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		FileNames:   utils.DefaultIgnoreFileNames,
		UseDefaults: true,
	})
	require.NoError(testingInstance, loadError)
	require.Len(testingInstance, loaded.Sources, 3)
	assert.Equal(testingInstance, ignore.DefaultOrigin, loaded.Sources[0].Origin)
	assert.Equal(testingInstance, []string{".git/"}, loaded.Sources[2].Patterns)

	rules := loaded.RuleSet()
	assert.False(testingInstance, rules.Excludes(".env", false))
	assert.True(testingInstance, rules.Excludes("node_modules", true))
}

// TestLoadIgnoreSourcesIncludeGit verifies the Git directory is kept when requested.
func TestLoadIgnoreSourcesIncludeGit(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{IncludeGit: true})
	require.NoError(testingInstance, loadError)
	assert.Empty(testingInstance, loaded.Sources)
	assert.False(testingInstance, loaded.RuleSet().Excludes(".git", true))
}

// TestLoadIgnoreSourcesPrunesDiscovery verifies ignore files inside excluded directories are not loaded.
func TestLoadIgnoreSourcesPrunesDiscovery(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, utils.GitIgnoreFileName), "vendor/\n")
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "vendor", utils.GitIgnoreFileName), "!*\n")
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "generated", utils.GitIgnoreFileName), "*.go\n")

	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		FileNames:     []string{utils.GitIgnoreFileName},
		ExtraPatterns: []string{" generated ", ""},
		Recursive:     true,
	})
	require.NoError(testingInstance, loadError)

	patterns := sourcePatterns(loaded.Sources)
	assert.NotContains(testingInstance, patterns, "vendor")
	assert.NotContains(testingInstance, patterns, "generated")
	assert.Equal(testingInstance, []string{"generated"}, loaded.ExtraPatterns)
}

// TestLoadIgnoreSourcesExtraPatternsKeepOrder verifies a repeated extra pattern
// still overrides a negation that precedes its last copy.
func TestLoadIgnoreSourcesExtraPatternsKeepOrder(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		ExtraPatterns: []string{"*.log", "!keep.log", "*.log"},
	})
	require.NoError(testingInstance, loadError)

	assert.Equal(testingInstance, []string{"!keep.log", "*.log"}, loaded.ExtraPatterns)
	ruleSet := loaded.RuleSet()
	assert.True(testingInstance, ruleSet.IsExcluded("keep.log", false, false))
	assert.True(testingInstance, ruleSet.IsExcluded("other.log", false, false))
}

// TestLoadIgnoreSourcesExplicitFiles verifies explicit files are required and scoped by location.
func TestLoadIgnoreSourcesExplicitFiles(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	outsideDirectory := testingInstance.TempDir()
	outsidePath := filepath.Join(outsideDirectory, "shared.ignore")
	insidePath := filepath.Join(rootDirectory, "docs", "extra.ignore")
	writeTestFile(testingInstance, outsidePath, "*.bak\n")
	writeTestFile(testingInstance, insidePath, "drafts/\n")

	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		ExplicitFiles: []string{outsidePath, insidePath},
		IncludeGit:    true,
	})
	require.NoError(testingInstance, loadError)
	require.Len(testingInstance, loaded.Sources, 2)
	assert.Equal(testingInstance, "", loaded.Sources[0].Base)
	assert.Equal(testingInstance, "docs", loaded.Sources[1].Base)

	_, missingError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		ExplicitFiles: []string{filepath.Join(outsideDirectory, "missing.ignore")},
	})
	var configError *types.ConfigError
	assert.True(testingInstance, errors.As(missingError, &configError))
}

// TestLoadIgnoreSourcesBinarySections verifies binary patterns are collected per directory.
func TestLoadIgnoreSourcesBinarySections(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "web", utils.IgnoreFileName), "[binary]\n*.min.js\n")

	loaded, loadError := config.LoadIgnoreSources(rootDirectory, config.SourceOptions{
		FileNames: utils.DefaultIgnoreFileNames,
		Recursive: true,
	})
	require.NoError(testingInstance, loadError)

	binaryRules := loaded.BinaryRuleSet()
	assert.True(testingInstance, binaryRules.Excludes("web/app.min.js", false))
	assert.False(testingInstance, binaryRules.Excludes("app.min.js", false))
}
