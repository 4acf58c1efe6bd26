package depgraph

import (
	"sort"

	"github.com/depscope/depscope/pkg/models"
)

// assemble merges per-file results into one graph, preserving encounter
// order, then computes metadata in a single pass. Nothing is deduplicated:
// node identity is derived, repeated edges are preserved, and edges may
// reference ids that no node carries (external imports).
func assemble(results []fileResult) *models.DependencyGraph {
	graph := models.NewDependencyGraph()

	for _, r := range results {
		graph.Append(r.nodes, r.edges)
		if r.touched {
			graph.Metadata.TotalFiles++
		}
		if r.warning != nil {
			graph.Warnings = append(graph.Warnings, *r.warning)
		}
	}

	graph.Metadata.TotalNodes = len(graph.Nodes)
	graph.Metadata.TotalDependencies = len(graph.Edges)
	graph.Metadata.Languages = distinctLanguages(graph.Nodes)

	return graph
}

// distinctLanguages returns the sorted set of language tags present in the
// node list.
func distinctLanguages(nodes []models.CodeNode) []string {
	seen := make(map[string]bool)
	langs := make([]string, 0, 4)
	for _, n := range nodes {
		if !seen[n.Language] {
			seen[n.Language] = true
			langs = append(langs, n.Language)
		}
	}
	sort.Strings(langs)
	return langs
}
