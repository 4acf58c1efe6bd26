package depgraph

import (
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/depscope/depscope/pkg/models"
)

// NodeMetric holds computed metrics for a single graph node.
type NodeMetric struct {
	NodeID    string  `json:"node_id"`
	Name      string  `json:"name"`
	PageRank  float64 `json:"pagerank"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// MetricsSummary provides aggregate graph statistics.
type MetricsSummary struct {
	TotalNodes       int     `json:"total_nodes"`
	TotalEdges       int     `json:"total_edges"`
	AvgDegree        float64 `json:"avg_degree"`
	Density          float64 `json:"density"`
	Components       int     `json:"components"`
	LargestComponent int     `json:"largest_component"`
}

// Metrics is the optional post-pass result over an assembled graph.
type Metrics struct {
	NodeMetrics []NodeMetric   `json:"node_metrics"`
	Summary     MetricsSummary `json:"summary"`
}

// CalculateMetrics computes degree, PageRank, and component statistics
// over an assembled graph. Dangling edges (targets with no node) count
// toward degrees but are excluded from the gonum projection, matching the
// assembler's no-validation stance.
func CalculateMetrics(graph *models.DependencyGraph) *Metrics {
	metrics := &Metrics{
		NodeMetrics: make([]NodeMetric, 0, len(graph.Nodes)),
		Summary: MetricsSummary{
			TotalNodes: len(graph.Nodes),
			TotalEdges: len(graph.Edges),
		},
	}

	if len(graph.Nodes) == 0 {
		return metrics
	}

	inDegree := make(map[string]int, len(graph.Nodes))
	outDegree := make(map[string]int, len(graph.Nodes))
	for _, node := range graph.Nodes {
		inDegree[node.ID] = 0
		outDegree[node.ID] = 0
	}
	for _, edge := range graph.Edges {
		inDegree[edge.Target]++
		outDegree[edge.Source]++
	}

	directed := simple.NewDirectedGraph()
	undirected := simple.NewUndirectedGraph()
	nodeIDs := make(map[string]int64, len(graph.Nodes))
	for i, node := range graph.Nodes {
		// Later duplicates share the first occurrence's slot; ids are
		// derived, not merged.
		if _, ok := nodeIDs[node.ID]; ok {
			continue
		}
		id := int64(i)
		nodeIDs[node.ID] = id
		directed.AddNode(simple.Node(id))
		undirected.AddNode(simple.Node(id))
	}
	for _, edge := range graph.Edges {
		from, fromOK := nodeIDs[edge.Source]
		to, toOK := nodeIDs[edge.Target]
		if !fromOK || !toOK || from == to {
			continue
		}
		directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		if !undirected.HasEdgeBetween(from, to) {
			undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	pageRank := network.PageRank(directed, 0.85, 1e-6)

	seen := make(map[string]bool, len(graph.Nodes))
	for _, node := range graph.Nodes {
		if seen[node.ID] {
			continue
		}
		seen[node.ID] = true
		metrics.NodeMetrics = append(metrics.NodeMetrics, NodeMetric{
			NodeID:    node.ID,
			Name:      node.Name,
			PageRank:  pageRank[nodeIDs[node.ID]],
			InDegree:  inDegree[node.ID],
			OutDegree: outDegree[node.ID],
		})
	}

	totalDegree := 0
	for id := range nodeIDs {
		totalDegree += inDegree[id] + outDegree[id]
	}
	metrics.Summary.AvgDegree = float64(totalDegree) / float64(len(nodeIDs))

	if len(nodeIDs) > 1 {
		maxEdges := len(nodeIDs) * (len(nodeIDs) - 1)
		metrics.Summary.Density = float64(len(graph.Edges)) / float64(maxEdges)
	}

	components := topo.ConnectedComponents(undirected)
	metrics.Summary.Components = len(components)
	for _, comp := range components {
		if len(comp) > metrics.Summary.LargestComponent {
			metrics.Summary.LargestComponent = len(comp)
		}
	}

	return metrics
}
