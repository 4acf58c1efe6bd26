package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/depscope/depscope/pkg/analyzer"
	"github.com/depscope/depscope/pkg/analyzer/complexity"
	"github.com/depscope/depscope/pkg/models"
	"github.com/depscope/depscope/pkg/parser"
)

var _ analyzer.FileAnalyzer = (*GoAnalyzer)(nil)

// GoAnalyzer extracts nodes and dependencies from Go source. Import specs
// become edges from the file stem, struct and interface declarations
// become class nodes, and func/method declarations become function nodes.
type GoAnalyzer struct{}

// NewGo creates a Go analyzer.
func NewGo() *GoAnalyzer {
	return &GoAnalyzer{}
}

// Language implements analyzer.FileAnalyzer.
func (a *GoAnalyzer) Language() parser.Language {
	return parser.LangGo
}

// Analyze implements analyzer.FileAnalyzer.
func (a *GoAnalyzer) Analyze(src []byte, path string) ([]models.CodeNode, []models.CodeDependency, error) {
	psr := parser.New()
	defer psr.Close()

	result, err := psr.Parse(src, parser.LangGo, path)
	if err != nil {
		return []models.CodeNode{}, []models.CodeDependency{}, err
	}

	nodes := make([]models.CodeNode, 0)
	edges := make([]models.CodeDependency, 0)
	stem := parser.FileStem(path)
	root := result.Tree.RootNode()

	var imports []string

	parser.Walk(root, src, func(n *sitter.Node, source []byte) bool {
		switch n.Type() {
		case "import_spec":
			if pathNode := n.ChildByFieldName("path"); pathNode != nil {
				imports = append(imports, unquote(parser.GetNodeText(pathNode, source)))
			}
		case "type_spec":
			if node := extractGoType(n, source, stem, path); node != nil {
				nodes = append(nodes, *node)
			}
		case "function_declaration", "method_declaration":
			if node := extractGoFunction(n, source, stem, path); node != nil {
				nodes = append(nodes, *node)
			}
		}
		return true
	})

	for _, imp := range imports {
		edges = append(edges, models.CodeDependency{
			Source: stem,
			Target: imp,
			Kind:   models.EdgeImports,
			Weight: models.DefaultEdgeWeight,
		})
	}

	if result.HasError() {
		return nodes, edges, &ParseError{Path: path}
	}
	return nodes, edges, nil
}

// extractGoType builds a class node for struct and interface declarations.
// Type aliases and other specs carry no unit body and are skipped.
func extractGoType(n *sitter.Node, src []byte, stem, path string) *models.CodeNode {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	switch typeNode.Type() {
	case "struct_type", "interface_type":
	default:
		return nil
	}

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := parser.GetNodeText(nameNode, src)

	return &models.CodeNode{
		ID:          stem + "." + name,
		Name:        name,
		Kind:        models.NodeClass,
		Language:    string(parser.LangGo),
		Path:        path,
		Line:        n.StartPoint().Row + 1,
		Complexity:  complexity.Count(n, src, parser.LangGo),
		LinesOfCode: complexity.LineCount(n),
	}
}

// extractGoFunction builds a function node for func and method declarations.
func extractGoFunction(n *sitter.Node, src []byte, stem, path string) *models.CodeNode {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := parser.GetNodeText(nameNode, src)

	return &models.CodeNode{
		ID:          stem + "." + name,
		Name:        name,
		Kind:        models.NodeFunction,
		Language:    string(parser.LangGo),
		Path:        path,
		Line:        n.StartPoint().Row + 1,
		Complexity:  complexity.Count(n, src, parser.LangGo),
		LinesOfCode: complexity.LineCount(n),
	}
}
