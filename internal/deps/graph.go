package deps

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CycleError reports targets that participate in a dependency cycle.
type CycleError struct {
	Targets []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Targets, " -> ")
}

type node struct {
	id   int64
	name string
}

func (n *node) ID() int64 { return n.id }

// BuildOrder lifts the persisted graph into a directed graph and returns all
// known targets and dependencies in an order where every dependency precedes
// its dependents. A cycle is reported as *CycleError rather than broken: in a
// redo graph a cycle is a user error, not a bootstrap condition.
func (s *Store) BuildOrder() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := simple.NewDirectedGraph()
	byName := make(map[string]*node)
	mk := func(name string) *node {
		if n, ok := byName[name]; ok {
			return n
		}
		n := &node{id: int64(len(byName)), name: name}
		byName[name] = n
		g.AddNode(n)
		return n
	}
	// Insert in sorted order so node ids, and with them the order of
	// unconstrained siblings, are stable across runs.
	names := make([]string, 0, len(s.targets))
	for target := range s.targets {
		names = append(names, target)
	}
	sort.Strings(names)
	for _, target := range names {
		n := mk(target)
		for dep := range s.targets[target] {
			if dep == target {
				continue // self edges are meaningless here
			}
			g.SetEdge(g.NewEdge(n, mk(dep)))
		}
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		uo, ok := err.(topo.Unorderable)
		if !ok {
			return nil, err
		}
		cycle := &CycleError{}
		for _, component := range uo {
			for _, n := range component {
				cycle.Targets = append(cycle.Targets, n.(*node).name)
			}
		}
		sort.Strings(cycle.Targets)
		return nil, cycle
	}

	// topo.Sort on target→dep edges puts dependents first; build order is
	// the reverse.
	order := make([]string, len(sorted))
	for i, n := range sorted {
		order[len(sorted)-1-i] = n.(*node).name
	}
	return order, nil
}
