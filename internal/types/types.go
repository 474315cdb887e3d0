// Package types defines every cross‑package data structure used by the summarize CLI.
package types

import (
	"path"
	"strings"
	"time"
)

// NodeKind classifies a filesystem entry.
type NodeKind string

const (
	NodeKindFile      NodeKind = "file"
	NodeKindDirectory NodeKind = "directory"
	NodeKindSymlink   NodeKind = "symlink"

	CommandTree    = "tree"
	CommandContent = "content"
	CommandStats   = "stats"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatYAML = "yaml"

	// RootDirectoryKey groups files that sit directly in the traversal root.
	RootDirectoryKey = "."
	// NoExtensionKey groups files without an extension.
	NoExtensionKey = ""
)

// Node is one surviving file, directory or symlink. Nodes are created by the
// walker and never modified afterwards.
type Node struct {
	// RelativePath is slash-separated and relative to the traversal root.
	RelativePath string    `json:"path" yaml:"path"`
	AbsolutePath string    `json:"absolutePath" yaml:"absolutePath"`
	Kind         NodeKind  `json:"type" yaml:"type"`
	Size         int64     `json:"size" yaml:"size"`
	Depth        int       `json:"depth" yaml:"depth"`
	ModifiedAt   time.Time `json:"modifiedAt,omitempty" yaml:"modifiedAt,omitempty"`
}

// IsDir reports whether the node is a directory.
func (node Node) IsDir() bool {
	return node.Kind == NodeKindDirectory
}

// Name returns the last path segment.
func (node Node) Name() string {
	return path.Base(node.RelativePath)
}

// ParentDirectory returns the relative path of the containing directory, or
// RootDirectoryKey for entries in the traversal root.
func (node Node) ParentDirectory() string {
	return path.Dir(node.RelativePath)
}

// Extension returns the lower-case extension without its dot. Dotfiles with
// no further dot, such as ".gitignore", use the name after the dot.
func (node Node) Extension() string {
	name := node.Name()
	if strings.HasPrefix(name, ".") && strings.Count(name, ".") == 1 {
		return strings.ToLower(name[1:])
	}
	extension := path.Ext(name)
	return strings.ToLower(strings.TrimPrefix(extension, "."))
}

// TraversalConfig describes one walk.
type TraversalConfig struct {
	RootDirectory string
	// IgnoreSources lists ignore-file paths loaded in order.
	IgnoreSources []string
	// ExtraPatterns are appended after every ignore source.
	ExtraPatterns []string
	// MaxFileSize is the byte cutoff for content reads. Zero selects DefaultMaxFileSize.
	MaxFileSize    int64
	FollowSymlinks bool
	// MaxDepth limits how many directory levels are yielded; entries of the
	// root have depth 0. Zero disables the limit.
	MaxDepth int
}

// DefaultMaxFileSize is the content cutoff used when none is configured.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// EffectiveMaxFileSize returns MaxFileSize or the default when unset.
func (config TraversalConfig) EffectiveMaxFileSize() int64 {
	if config.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return config.MaxFileSize
}

// WalkResult is the materialized outcome of a walk.
type WalkResult struct {
	Root     string    `json:"root" yaml:"root"`
	Nodes    []Node    `json:"nodes" yaml:"nodes"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalSize sums the sizes of file nodes.
func (result WalkResult) TotalSize() int64 {
	var total int64
	for _, node := range result.Nodes {
		if node.Kind == NodeKindFile {
			total += node.Size
		}
	}
	return total
}

// FileCount returns the number of file nodes.
func (result WalkResult) FileCount() int {
	count := 0
	for _, node := range result.Nodes {
		if node.Kind == NodeKindFile {
			count++
		}
	}
	return count
}
