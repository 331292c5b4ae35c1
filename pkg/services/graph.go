package services

import (
	"sort"

	"github.com/yourbasic/graph"

	"github.com/docuflow-io/docuflow-engine/pkg/models"
)

// ReferenceGraph is a directed graph of tables connected by resolved foreign
// key edges. It answers the fan-in/fan-out questions the classifier needs and
// surfaces circular FK chains for the compatibility report.
type ReferenceGraph struct {
	tables   []string
	index    map[string]int
	incoming map[string]int
	outgoing map[string]int
	deps     *graph.Mutable
}

// NewReferenceGraph builds the graph from the table snapshot and the analyzed
// edges. Table order is preserved from the snapshot so traversals stay
// deterministic.
func NewReferenceGraph(tables []models.Table, edges []models.RelationshipEdge) *ReferenceGraph {
	g := &ReferenceGraph{
		tables:   make([]string, 0, len(tables)),
		index:    make(map[string]int, len(tables)),
		incoming: make(map[string]int, len(tables)),
		outgoing: make(map[string]int, len(tables)),
	}
	for i := range tables {
		g.index[tables[i].Name] = len(g.tables)
		g.tables = append(g.tables, tables[i].Name)
	}

	g.deps = graph.New(len(g.tables))
	for i := range edges {
		e := &edges[i]
		g.outgoing[e.SourceTable]++
		g.incoming[e.TargetTable]++

		src, srcOK := g.index[e.SourceTable]
		dst, dstOK := g.index[e.TargetTable]
		if srcOK && dstOK && src != dst {
			g.deps.Add(src, dst)
		}
	}
	return g
}

// IncomingRefs returns the number of edges targeting the table (fan-in).
func (g *ReferenceGraph) IncomingRefs(table string) int {
	return g.incoming[table]
}

// OutgoingRefs returns the number of edges the table owns (fan-out).
func (g *ReferenceGraph) OutgoingRefs(table string) int {
	return g.outgoing[table]
}

// CircularChains returns the groups of tables whose foreign keys form a
// cycle, each group sorted by name, groups sorted by first member. Cycles
// cannot be migrated by straightforward embedding and are reported as
// performance considerations.
func (g *ReferenceGraph) CircularChains() [][]string {
	var chains [][]string
	for _, component := range graph.StrongComponents(g.deps) {
		if len(component) < 2 {
			continue
		}
		names := make([]string, 0, len(component))
		for _, idx := range component {
			names = append(names, g.tables[idx])
		}
		sort.Strings(names)
		chains = append(chains, names)
	}
	sort.Slice(chains, func(i, j int) bool {
		return chains[i][0] < chains[j][0]
	})
	return chains
}
