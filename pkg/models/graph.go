package models

import "io"

// CodeNode represents a syntactic unit discovered in a source file.
type CodeNode struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Kind           NodeKind `json:"kind"` // module, class, function, variable
	Language       string   `json:"language"`
	Path           string   `json:"path"`
	Line           uint32   `json:"line,omitempty"`
	Complexity     float64  `json:"complexity"`
	LinesOfCode    int      `json:"lines_of_code"`
	DependencyRefs []string `json:"dependency_refs,omitempty"`
}

// NodeKind classifies a code node.
type NodeKind string

const (
	NodeModule   NodeKind = "module"
	NodeClass    NodeKind = "class"
	NodeFunction NodeKind = "function"
	NodeVariable NodeKind = "variable"
)

// CodeDependency represents a directed relation between two code elements.
// Target may name an element that was never discovered (an external import);
// such dangling edges are valid.
type CodeDependency struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Weight float64  `json:"weight,omitempty"`
	Line   uint32   `json:"line,omitempty"`
}

// EdgeKind classifies a dependency.
type EdgeKind string

const (
	EdgeImports  EdgeKind = "imports"
	EdgeCalls    EdgeKind = "calls"
	EdgeInherits EdgeKind = "inherits"
	EdgeUses     EdgeKind = "uses"
)

// DefaultEdgeWeight is the weight assigned to edges when no coupling
// strength is computed.
const DefaultEdgeWeight = 1.0

// Metadata summarizes an assembled graph. Computed once after all files
// are processed.
type Metadata struct {
	TotalFiles        int      `json:"total_files"`
	TotalNodes        int      `json:"total_nodes"`
	TotalDependencies int      `json:"total_dependencies"`
	Languages         []string `json:"languages"`
	Partial           bool     `json:"partial,omitempty"`
}

// Warning records a soft per-file failure that did not abort the scan.
type Warning struct {
	Path  string `json:"path"`
	Stage string `json:"stage"` // read, parse
	Cause string `json:"cause"`
}

// DependencyGraph is the full project-level analysis result. Node and edge
// order follows file enumeration order, then per-file discovery order.
type DependencyGraph struct {
	Nodes    []CodeNode       `json:"nodes"`
	Edges    []CodeDependency `json:"edges"`
	Metadata Metadata         `json:"metadata"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make([]CodeNode, 0),
		Edges: make([]CodeDependency, 0),
	}
}

// Append adds a file's nodes and edges in discovery order.
func (g *DependencyGraph) Append(nodes []CodeNode, edges []CodeDependency) {
	g.Nodes = append(g.Nodes, nodes...)
	g.Edges = append(g.Edges, edges...)
}

// ToMermaid generates Mermaid diagram syntax from the graph.
func (g *DependencyGraph) ToMermaid() string {
	var result string
	result = "graph TD\n"

	for _, node := range g.Nodes {
		label := node.Name
		if label == "" {
			label = node.ID
		}
		result += "    " + sanitizeMermaidID(node.ID) + "[\"" + label + "\"]\n"
	}

	for _, edge := range g.Edges {
		arrow := "-->"
		switch edge.Kind {
		case EdgeInherits:
			arrow = "-.->|inherits|"
		case EdgeCalls:
			arrow = "-->|calls|"
		case EdgeUses:
			arrow = "-->|uses|"
		}
		result += "    " + sanitizeMermaidID(edge.Source) + " " + arrow + " " + sanitizeMermaidID(edge.Target) + "\n"
	}

	return result
}

// RenderMermaid writes the Mermaid diagram to w.
func (g *DependencyGraph) RenderMermaid(w io.Writer) error {
	_, err := io.WriteString(w, g.ToMermaid())
	return err
}

// sanitizeMermaidID makes an ID safe for Mermaid.
func sanitizeMermaidID(id string) string {
	result := ""
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result += string(c)
		} else {
			result += "_"
		}
	}
	return result
}
