// Package utils contains general helper functions used across the summarize tool.
package utils

import (
	"path/filepath"
)

// Ignore and configuration file names used across the project.
const (
	// IgnoreFileName is the name of the tool-neutral ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// DockerIgnoreFileName is the name of the container build ignore file.
	DockerIgnoreFileName = ".dockerignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = ".summarize.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding global configuration.
	GlobalConfigDirectoryName = ".summarize"
)

// DefaultIgnoreFileNames lists the ignore files consulted in load order.
var DefaultIgnoreFileNames = []string{GitIgnoreFileName, DockerIgnoreFileName, IgnoreFileName}

// DeduplicatePatterns removes repeated patterns, keeping the last occurrence
// of each. Ignore rules resolve by the last matching pattern, so dropping
// earlier copies leaves every verdict unchanged.
func DeduplicatePatterns(patterns []string) []string {
	lastIndex := make(map[string]int, len(patterns))
	for index, pattern := range patterns {
		lastIndex[pattern] = index
	}
	result := make([]string, 0, len(lastIndex))
	for index, pattern := range patterns {
		if lastIndex[pattern] == index {
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the slash-separated relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}
