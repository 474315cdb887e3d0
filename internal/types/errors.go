package types

import (
	"errors"
	"fmt"
)

var (
	// ErrTooLarge marks content skipped because the file exceeds the size cutoff.
	ErrTooLarge = errors.New("file exceeds maximum content size")
	// ErrBinaryContent marks content skipped because it is not text.
	ErrBinaryContent = errors.New("binary content")
	// ErrNotFile marks content reads requested for directories or unresolved symlinks.
	ErrNotFile = errors.New("not a regular file")
)

// ConfigError reports a problem that prevents a walk from starting: an
// invalid root directory or an unreadable ignore source.
type ConfigError struct {
	Path string
	Err  error
}

func (configError *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %v", configError.Path, configError.Err)
}

func (configError *ConfigError) Unwrap() error {
	return configError.Err
}

// WarningKind classifies a recoverable traversal problem.
type WarningKind string

const (
	WarningUnreadableDirectory WarningKind = "unreadable_directory"
	WarningStatFailed          WarningKind = "stat_failed"
	WarningBrokenSymlink       WarningKind = "broken_symlink"
	WarningSymlinkCycle        WarningKind = "symlink_cycle"
)

// Warning is a TraversalWarning: the walk skipped something and continued.
type Warning struct {
	Path string      `json:"path" yaml:"path"`
	Kind WarningKind `json:"kind" yaml:"kind"`
	Err  error       `json:"-" yaml:"-"`
	// Message duplicates Err for serialized output.
	Message string `json:"message" yaml:"message"`
}

// NewWarning builds a Warning with its message filled in.
func NewWarning(path string, kind WarningKind, err error) Warning {
	message := string(kind)
	if err != nil {
		message = err.Error()
	}
	return Warning{Path: path, Kind: kind, Err: err, Message: message}
}

func (warning Warning) Error() string {
	return fmt.Sprintf("%s: %s: %s", warning.Kind, warning.Path, warning.Message)
}

func (warning Warning) Unwrap() error {
	return warning.Err
}

// ContentReason classifies why content was not produced for a node.
type ContentReason string

const (
	ContentTooLarge  ContentReason = "too_large"
	ContentBinary    ContentReason = "binary"
	ContentDecode    ContentReason = "decode"
	ContentRead      ContentReason = "read"
	ContentNotFile   ContentReason = "not_file"
	ContentTokenizer ContentReason = "tokens"
)

// ContentError is recorded per node and never aborts a walk.
type ContentError struct {
	Path   string
	Reason ContentReason
	Err    error
}

func (contentError *ContentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", contentError.Path, contentError.Reason, contentError.Err)
}

func (contentError *ContentError) Unwrap() error {
	return contentError.Err
}
