package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/summarize/internal/content"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

// NodeDocument is the serialized form of one node, optionally with content.
type NodeDocument struct {
	Path         string `json:"path" yaml:"path"`
	Type         string `json:"type" yaml:"type"`
	Size         int64  `json:"size" yaml:"size"`
	Depth        int    `json:"depth" yaml:"depth"`
	LastModified string `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	MimeType     string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Truncated    bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Content      string `json:"content,omitempty" yaml:"content,omitempty"`
	Problem      string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// SummaryDocument totals a document.
type SummaryDocument struct {
	Files  int            `json:"files" yaml:"files"`
	Bytes  int64          `json:"bytes" yaml:"bytes"`
	Size   string         `json:"size" yaml:"size"`
	Tokens map[string]int `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// WarningDocument is the serialized form of a traversal warning.
type WarningDocument struct {
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// WalkDocument is the result of the tree and content commands.
type WalkDocument struct {
	Root     string            `json:"root" yaml:"root"`
	View     string            `json:"view,omitempty" yaml:"view,omitempty"`
	Nodes    []NodeDocument    `json:"nodes" yaml:"nodes"`
	Summary  SummaryDocument   `json:"summary" yaml:"summary"`
	Warnings []WarningDocument `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// BucketDocument is one row of a statistics document.
type BucketDocument struct {
	Key    string         `json:"key" yaml:"key"`
	Files  int            `json:"files" yaml:"files"`
	Bytes  int64          `json:"bytes" yaml:"bytes"`
	Tokens map[string]int `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// ProblemDocument reports a file whose content could not be measured.
type ProblemDocument struct {
	Path    string `json:"path" yaml:"path"`
	Reason  string `json:"reason" yaml:"reason"`
	Message string `json:"message" yaml:"message"`
}

// StatisticsDocument is the result of the stats command.
type StatisticsDocument struct {
	Root     string            `json:"root" yaml:"root"`
	View     string            `json:"view" yaml:"view"`
	Grouping string            `json:"grouping" yaml:"grouping"`
	Buckets  []BucketDocument  `json:"buckets" yaml:"buckets"`
	Total    BucketDocument    `json:"total" yaml:"total"`
	Problems []ProblemDocument `json:"problems,omitempty" yaml:"problems,omitempty"`
	Warnings []WarningDocument `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewWalkDocument builds a document from walked nodes. Results, when not nil,
// must be aligned with nodes and add content to file entries.
func NewWalkDocument(root string, view types.View, nodes []types.Node, results []content.Result, warnings []types.Warning) WalkDocument {
	document := WalkDocument{Root: root, View: string(view), Nodes: make([]NodeDocument, 0, len(nodes))}
	for index, node := range nodes {
		entry := NodeDocument{
			Path:         node.RelativePath,
			Type:         string(node.Kind),
			Size:         node.Size,
			Depth:        node.Depth,
			LastModified: utils.FormatTimestamp(node.ModifiedAt),
		}
		if results != nil && index < len(results) && node.Kind == types.NodeKindFile {
			result := results[index]
			entry.Status = string(result.Status)
			entry.MimeType = result.MimeType
			entry.Truncated = result.Truncated
			entry.Content = result.Content
			if result.Err != nil {
				entry.Problem = result.Err.Error()
			}
		}
		if node.Kind == types.NodeKindFile {
			document.Summary.Files++
			document.Summary.Bytes += node.Size
		}
		document.Nodes = append(document.Nodes, entry)
	}
	document.Summary.Size = utils.FormatFileSize(document.Summary.Bytes)
	document.Warnings = warningDocuments(warnings)
	return document
}

func warningDocuments(warnings []types.Warning) []WarningDocument {
	var documents []WarningDocument
	for _, warning := range warnings {
		documents = append(documents, WarningDocument{Path: warning.Path, Kind: string(warning.Kind), Message: warning.Message})
	}
	return documents
}

// NewStatisticsDocument flattens a record into rows ordered by key and lists
// the traversal warnings of the walk behind it.
func NewStatisticsDocument(root string, view types.View, record types.StatisticsRecord, warnings []types.Warning) StatisticsDocument {
	document := StatisticsDocument{
		Root:     root,
		View:     string(view),
		Grouping: string(record.Grouping),
		Buckets:  make([]BucketDocument, 0, len(record.Buckets)),
		Total:    bucketDocument("total", record.Total),
	}
	for _, key := range record.Keys() {
		bucket, _ := record.Bucket(key)
		document.Buckets = append(document.Buckets, bucketDocument(key, bucket))
	}
	for _, problem := range record.Problems {
		message := string(problem.Reason)
		if problem.Err != nil {
			message = problem.Err.Error()
		}
		document.Problems = append(document.Problems, ProblemDocument{Path: problem.Path, Reason: string(problem.Reason), Message: message})
	}
	document.Warnings = warningDocuments(warnings)
	return document
}

func bucketDocument(key string, bucket types.Bucket) BucketDocument {
	return BucketDocument{Key: key, Files: bucket.FileCount, Bytes: bucket.TotalSizeBytes, Tokens: bucket.Tokens}
}

// RenderDocument serializes document as JSON or YAML.
func RenderDocument(format string, document any) (string, error) {
	switch strings.ToLower(format) {
	case types.FormatJSON:
		encoded, err := json.MarshalIndent(document, indentPrefix, indentSpacer)
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(encoded) + "\n", nil
	case types.FormatYAML:
		var buffer bytes.Buffer
		encoder := yaml.NewEncoder(&buffer)
		encoder.SetIndent(yamlIndent)
		if err := encoder.Encode(document); err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return buffer.String(), nil
	default:
		return "", fmt.Errorf(errorUnsupportedFormat, format)
	}
}
