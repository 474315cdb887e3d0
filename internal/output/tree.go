package output

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

// TreeOptions controls the raw tree renderer.
type TreeOptions struct {
	Color   bool
	Summary bool
}

type treeEntry struct {
	node     types.Node
	label    string
	children []*treeEntry
}

type palette struct {
	directory *color.Color
	symlink   *color.Color
	size      *color.Color
}

func newPalette(enabled bool) palette {
	colors := palette{
		directory: color.New(color.FgBlue, color.Bold),
		symlink:   color.New(color.FgCyan),
		size:      color.New(color.FgHiBlack),
	}
	for _, entry := range []*color.Color{colors.directory, colors.symlink, colors.size} {
		if enabled {
			entry.EnableColor()
		} else {
			entry.DisableColor()
		}
	}
	return colors
}

// WriteTree renders nodes in walk order as an indented tree under rootLabel.
// A node whose parent directory is not among nodes is attached to its
// nearest listed ancestor and labelled with the remaining path.
func WriteTree(writer io.Writer, rootLabel string, nodes []types.Node, options TreeOptions) error {
	colors := newPalette(options.Color)
	root := &treeEntry{}
	entries := map[string]*treeEntry{"": root}
	var files int
	var bytes int64

	for _, node := range nodes {
		parent, parentPath := nearestAncestor(entries, node.RelativePath)
		label := strings.TrimPrefix(node.RelativePath, parentPath)
		label = strings.TrimPrefix(label, "/")
		entry := &treeEntry{node: node, label: label}
		parent.children = append(parent.children, entry)
		if node.IsDir() {
			entries[node.RelativePath] = entry
		}
		if node.Kind == types.NodeKindFile {
			files++
			bytes += node.Size
		}
	}

	if _, err := fmt.Fprintln(writer, colors.directory.Sprint(rootLabel)); err != nil {
		return err
	}
	if err := writeTreeChildren(writer, root, "", colors); err != nil {
		return err
	}
	if options.Summary {
		if _, err := fmt.Fprintf(writer, "\n%s\n", FormatSummaryLine(files, bytes, nil)); err != nil {
			return err
		}
	}
	return nil
}

func nearestAncestor(entries map[string]*treeEntry, relativePath string) (*treeEntry, string) {
	directory := path.Dir(relativePath)
	for directory != "." && directory != "/" {
		if entry, found := entries[directory]; found {
			return entry, directory
		}
		directory = path.Dir(directory)
	}
	return entries[""], ""
}

func writeTreeChildren(writer io.Writer, parent *treeEntry, prefix string, colors palette) error {
	for index, child := range parent.children {
		isLast := index == len(parent.children)-1
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		if _, err := fmt.Fprintf(writer, "%s%s%s\n", prefix, connector, formatTreeLabel(child, colors)); err != nil {
			return err
		}
		if err := writeTreeChildren(writer, child, childPrefix, colors); err != nil {
			return err
		}
	}
	return nil
}

func formatTreeLabel(entry *treeEntry, colors palette) string {
	switch entry.node.Kind {
	case types.NodeKindDirectory:
		return colors.directory.Sprint(entry.label + "/")
	case types.NodeKindSymlink:
		return colors.symlink.Sprint(entry.label + "@")
	default:
		return entry.label + " " + colors.size.Sprintf("(%s)", utils.FormatFileSize(entry.node.Size))
	}
}
