package stats

import (
	"fmt"

	"github.com/temirov/summarize/internal/types"
)

// ViewSet holds the three node sets statistics can be computed over. Removed
// is the part of All that is absent from Effective.
type ViewSet struct {
	All       []types.Node
	Effective []types.Node
	Removed   []types.Node
}

// Views pairs an unfiltered walk with a filtered walk of the same root.
func Views(all []types.Node, effective []types.Node) ViewSet {
	return ViewSet{All: all, Effective: effective, Removed: Removed(all, effective)}
}

// Removed returns the nodes of all whose relative path does not occur in
// effective, in the order of all.
func Removed(all []types.Node, effective []types.Node) []types.Node {
	kept := make(map[string]struct{}, len(effective))
	for _, node := range effective {
		kept[node.RelativePath] = struct{}{}
	}
	removed := make([]types.Node, 0, len(all)-min(len(all), len(kept)))
	for _, node := range all {
		if _, found := kept[node.RelativePath]; !found {
			removed = append(removed, node)
		}
	}
	return removed
}

// Nodes returns the node set named by view.
func (viewSet ViewSet) Nodes(view types.View) ([]types.Node, error) {
	switch view {
	case types.ViewAll:
		return viewSet.All, nil
	case types.ViewEffective, "":
		return viewSet.Effective, nil
	case types.ViewRemoved:
		return viewSet.Removed, nil
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
}

// AggregateViews aggregates each view with the same grouping and options.
func AggregateViews(viewSet ViewSet, grouping types.Grouping, options Options) (map[types.View]types.StatisticsRecord, error) {
	records := make(map[types.View]types.StatisticsRecord, 3)
	for _, view := range []types.View{types.ViewAll, types.ViewEffective, types.ViewRemoved} {
		nodes, _ := viewSet.Nodes(view)
		record, err := Aggregate(nodes, grouping, options)
		if err != nil {
			return nil, err
		}
		records[view] = record
	}
	return records, nil
}
