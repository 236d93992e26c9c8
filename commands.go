package main

import (
	"context"
	"fmt"
)

// Action is a toolbar mutation command. Which actions are offered is a pure
// function of the selection's composition.
type Action int

const (
	ActionCreateCluster Action = iota
	ActionUngroup
	ActionAddToCenter
	ActionRemoveFromCenter
	ActionRemoveClusters
)

func (a Action) String() string {
	switch a {
	case ActionCreateCluster:
		return "create cluster"
	case ActionUngroup:
		return "ungroup"
	case ActionAddToCenter:
		return "add to center"
	case ActionRemoveFromCenter:
		return "remove from center"
	case ActionRemoveClusters:
		return "remove cluster(s)"
	default:
		return "unknown"
	}
}

// selectionShape tallies the selection by node kind.
type selectionShape struct {
	clusters []*Node
	centers  []*Node
	members  []*Node
}

func shapeOf(sel []*Node) selectionShape {
	var s selectionShape
	for _, n := range sel {
		switch n.Kind {
		case KindCluster:
			s.clusters = append(s.clusters, n)
		case KindCenter:
			s.centers = append(s.centers, n)
		default:
			s.members = append(s.members, n)
		}
	}
	return s
}

// availableActions maps a selection onto the actions it enables:
// pure members create a cluster; members plus exactly one cluster can be
// ungrouped from it or promoted to centers; pure centers can be demoted or
// ungrouped; pure clusters can be removed.
func availableActions(sel []*Node) []Action {
	s := shapeOf(sel)
	var out []Action
	switch {
	case len(s.members) > 0 && len(s.clusters) == 0 && len(s.centers) == 0:
		out = append(out, ActionCreateCluster)
	case len(s.members) > 0 && len(s.clusters) == 1 && len(s.centers) == 0:
		out = append(out, ActionUngroup, ActionAddToCenter)
	case len(s.centers) > 0 && len(s.clusters) == 0 && len(s.members) == 0:
		out = append(out, ActionRemoveFromCenter, ActionUngroup)
	case len(s.clusters) > 0 && len(s.centers) == 0 && len(s.members) == 0:
		out = append(out, ActionRemoveClusters)
	}
	return out
}

func actionEnabled(sel []*Node, a Action) bool {
	for _, e := range availableActions(sel) {
		if e == a {
			return true
		}
	}
	return false
}

// Dispatch runs one mutation against the cluster source. It never touches
// the in-memory graph: the caller re-fetches the snapshot and rebuilds on
// success, and keeps the pre-action view on failure.
func Dispatch(ctx context.Context, source ClusterSource, a Action, sel []*Node) error {
	if !actionEnabled(sel, a) {
		return fmt.Errorf("%s: not applicable to the current selection", a)
	}
	s := shapeOf(sel)
	switch a {
	case ActionCreateCluster:
		centers := make(map[string]float64, len(s.members))
		for _, n := range s.members {
			centers[n.Key] = 1
		}
		if _, err := source.CreateCluster(ctx, centers); err != nil {
			return fmt.Errorf("create cluster: %w", err)
		}
	case ActionUngroup:
		if len(s.centers) > 0 {
			// Center selection: demote and detach from the owning cluster.
			for _, byCluster := range groupByParent(s.centers) {
				cluster := byCluster.cluster
				if err := source.RemoveCenters(ctx, cluster, byCluster.items); err != nil {
					return fmt.Errorf("ungroup centers: %w", err)
				}
				if err := source.RemoveMembers(ctx, cluster, byCluster.items); err != nil {
					return fmt.Errorf("ungroup centers: %w", err)
				}
			}
			break
		}
		cluster := s.clusters[0].Key
		if err := source.RemoveMembers(ctx, cluster, nodeKeys(s.members)); err != nil {
			return fmt.Errorf("ungroup: %w", err)
		}
	case ActionAddToCenter:
		cluster := s.clusters[0].Key
		if err := source.AddCenters(ctx, cluster, nodeKeys(s.members)); err != nil {
			return fmt.Errorf("add to center: %w", err)
		}
	case ActionRemoveFromCenter:
		for _, byCluster := range groupByParent(s.centers) {
			if err := source.RemoveCenters(ctx, byCluster.cluster, byCluster.items); err != nil {
				return fmt.Errorf("remove from center: %w", err)
			}
		}
	case ActionRemoveClusters:
		if err := source.RemoveClusters(ctx, nodeKeys(s.clusters)); err != nil {
			return fmt.Errorf("remove clusters: %w", err)
		}
	}
	return nil
}

type parentGroup struct {
	cluster string
	items   []string
}

func groupByParent(centers []*Node) []parentGroup {
	byKey := make(map[string]*parentGroup)
	var order []string
	for _, n := range centers {
		g, ok := byKey[n.ParentKey]
		if !ok {
			g = &parentGroup{cluster: n.ParentKey}
			byKey[n.ParentKey] = g
			order = append(order, n.ParentKey)
		}
		g.items = append(g.items, n.Key)
	}
	out := make([]parentGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

func nodeKeys(nodes []*Node) []string {
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key
	}
	return keys
}
