// Package complexity estimates cyclomatic-style complexity from syntax
// trees. The score is a structural branch count, not a control-flow-graph
// computation: it starts at 1.0 and adds 1.0 per branch-introducing
// construct, recursively.
package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/depscope/depscope/pkg/parser"
)

// Count returns the complexity estimate for a syntactic unit. The walk
// deliberately does not stop at nested unit boundaries, so a class's score
// includes all complexity of its methods and a function's score includes
// its nested functions.
func Count(node *sitter.Node, source []byte, lang parser.Language) float64 {
	if node == nil {
		return 1.0
	}

	branchTypes := makeSet(branchNodeTypes(lang))
	score := 1.0

	parser.Walk(node, source, func(n *sitter.Node, src []byte) bool {
		nodeType := n.Type()
		if branchTypes[nodeType] {
			score++
		}
		// A boolean chain of N operands parses as N-1 operator nodes,
		// each adding one path.
		if isBooleanOperator(n, nodeType, src, lang) {
			score++
		}
		return true
	})

	return score
}

// LineCount returns the source line span of a unit, or 1 when the end
// position is unknown.
func LineCount(node *sitter.Node) int {
	if node == nil {
		return 1
	}
	return int(node.EndPoint().Row-node.StartPoint().Row) + 1
}

// branchNodeTypes returns the AST node types counted as branches.
// An elif clause is a separate node in the tree and counts on its own,
// exactly as a chained if would.
func branchNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		return []string{
			"if_statement",
			"elif_clause",
			"while_statement",
			"for_statement", // covers async for
			"except_clause",
			"with_statement",
			"assert_statement",
		}
	case parser.LangGo:
		return []string{
			"if_statement",
			"for_statement",
			"expression_case",
			"type_case",
			"communication_case",
		}
	default:
		return []string{
			"if_statement",
			"while_statement",
			"for_statement",
			"case_statement",
			"catch_clause",
		}
	}
}

// isBooleanOperator reports whether a node is an and/or combination.
func isBooleanOperator(n *sitter.Node, nodeType string, source []byte, lang parser.Language) bool {
	switch lang {
	case parser.LangPython:
		return nodeType == "boolean_operator"
	default:
		if nodeType != "binary_expression" {
			return false
		}
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op := parser.GetNodeText(opNode, source)
			return op == "&&" || op == "||"
		}
		return false
	}
}

// makeSet converts a slice to a map for O(1) lookups.
func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
