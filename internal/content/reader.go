// Package content reads the text of walked files.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/summarize/internal/ignore"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

// Status describes what Read produced for a node.
type Status string

const (
	StatusText     Status = "text"
	StatusNotebook Status = "notebook"
	StatusTooLarge Status = "too_large"
	StatusBinary   Status = "binary"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"

	notebookExtension = ".ipynb"

	errorOpenFileFormat = "open file: %w"
	errorReadFileFormat = "read file: %w"
	errorBinaryRule     = "matched a binary pattern"
	errorBinaryName     = "known binary extension"
	errorInvalidText    = "content is not valid UTF-8"

	// DefaultConcurrency bounds ReadAll when no positive concurrency is given.
	DefaultConcurrency = 8
)

// Options configures a Reader.
type Options struct {
	// MaxFileSize is the content cutoff. Zero selects types.DefaultMaxFileSize.
	MaxFileSize int64
	// BinaryRules marks paths whose content is never read as text.
	BinaryRules *ignore.RuleSet
	Logger      *zap.Logger
}

// Result is the content of one node. Err is set whenever Content is empty
// because of a problem; the node itself stays valid for structure output.
type Result struct {
	Node      types.Node          `json:"node" yaml:"node"`
	Content   string              `json:"content,omitempty" yaml:"content,omitempty"`
	Status    Status              `json:"status" yaml:"status"`
	Truncated bool                `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	MimeType  string              `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Err       *types.ContentError `json:"-" yaml:"-"`
}

// HasContent reports whether Content carries text.
func (result Result) HasContent() bool {
	return result.Status == StatusText || result.Status == StatusNotebook
}

// Reader reads file content with a size cutoff and binary detection. A
// Reader holds no mutable state and is safe for concurrent use.
type Reader struct {
	maxFileSize int64
	binaryRules *ignore.RuleSet
	logger      *zap.Logger
}

// NewReader constructs a Reader.
func NewReader(options Options) *Reader {
	maxFileSize := options.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = types.DefaultMaxFileSize
	}
	return &Reader{
		maxFileSize: maxFileSize,
		binaryRules: options.BinaryRules,
		logger:      utils.LoggerOrNop(options.Logger),
	}
}

// Read returns the text of node. Files larger than the cutoff, binary files,
// and files that cannot be read or decoded produce a Result without content
// and a *types.ContentError.
//
// #nosec G304
func (reader *Reader) Read(node types.Node) (Result, error) {
	result := Result{Node: node}
	if node.Kind != types.NodeKindFile {
		return reader.fail(result, StatusSkipped, types.ContentNotFile, types.ErrNotFile)
	}
	if node.Size > reader.maxFileSize {
		return reader.fail(result, StatusTooLarge, types.ContentTooLarge, types.ErrTooLarge)
	}
	if reader.binaryRules.Excludes(node.RelativePath, false) {
		return reader.fail(result, StatusBinary, types.ContentBinary, fmt.Errorf("%w: %s", types.ErrBinaryContent, errorBinaryRule))
	}
	if utils.HasBinaryExtension(node.RelativePath) {
		return reader.fail(result, StatusBinary, types.ContentBinary, fmt.Errorf("%w: %s", types.ErrBinaryContent, errorBinaryName))
	}

	fileHandle, openError := os.Open(node.AbsolutePath)
	if openError != nil {
		return reader.fail(result, StatusFailed, types.ContentRead, fmt.Errorf(errorOpenFileFormat, openError))
	}
	defer fileHandle.Close()

	data, readError := io.ReadAll(io.LimitReader(fileHandle, reader.maxFileSize+1))
	if readError != nil {
		return reader.fail(result, StatusFailed, types.ContentRead, fmt.Errorf(errorReadFileFormat, readError))
	}
	if int64(len(data)) > reader.maxFileSize {
		data = utils.TrimPartialRune(data[:reader.maxFileSize])
		result.Truncated = true
	}
	if utils.IsBinary(data) {
		return reader.fail(result, StatusBinary, types.ContentBinary, types.ErrBinaryContent)
	}
	if !utf8.Valid(data) {
		return reader.fail(result, StatusFailed, types.ContentDecode, errors.New(errorInvalidText))
	}
	result.MimeType = utils.DetectMimeTypeFromBytes(data)

	if strings.EqualFold(pathExtension(node.RelativePath), notebookExtension) && !result.Truncated {
		text, notebookError := ExtractNotebook(data)
		if notebookError != nil {
			return reader.fail(result, StatusFailed, types.ContentDecode, notebookError)
		}
		result.Content = text
		result.Status = StatusNotebook
		return result, nil
	}

	result.Content = string(data)
	result.Status = StatusText
	return result, nil
}

// ReadAll reads nodes with at most concurrency reads in flight and returns
// the results in the order of nodes. Per-node problems are reported through
// Result.Err; the returned error is non-nil only when ctx ends early.
func (reader *Reader) ReadAll(ctx context.Context, nodes []types.Node, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]Result, len(nodes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for index := range nodes {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if contextError := groupCtx.Err(); contextError != nil {
				return contextError
			}
			results[index], _ = reader.Read(nodes[index])
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	return results, nil
}

func (reader *Reader) fail(result Result, status Status, reason types.ContentReason, err error) (Result, error) {
	contentError := &types.ContentError{Path: result.Node.RelativePath, Reason: reason, Err: err}
	result.Status = status
	result.Err = contentError
	if !errors.Is(err, types.ErrNotFile) {
		reader.logger.Debug("content skipped",
			zap.String("path", result.Node.RelativePath),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
	}
	return result, contentError
}

func pathExtension(relativePath string) string {
	lastSlash := strings.LastIndex(relativePath, "/")
	name := relativePath[lastSlash+1:]
	lastDot := strings.LastIndex(name, ".")
	if lastDot < 0 {
		return ""
	}
	return name[lastDot:]
}
