package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/depscope/depscope/pkg/analyzer"
	"github.com/depscope/depscope/pkg/analyzer/complexity"
	"github.com/depscope/depscope/pkg/models"
	"github.com/depscope/depscope/pkg/parser"
)

// Ensure PythonAnalyzer implements the analyzer capability.
var _ analyzer.FileAnalyzer = (*PythonAnalyzer)(nil)

// PythonAnalyzer extracts nodes and dependencies from Python source using
// a full syntax-tree parse. It is the reference tree-based analyzer:
// imports become edges from the file stem, class definitions become class
// nodes with one inherits edge per simple-name base, and function
// definitions (nested and async included) become function nodes with
// complexity and line metrics.
type PythonAnalyzer struct{}

// NewPython creates a Python analyzer.
func NewPython() *PythonAnalyzer {
	return &PythonAnalyzer{}
}

// Language implements analyzer.FileAnalyzer.
func (a *PythonAnalyzer) Language() parser.Language {
	return parser.LangPython
}

// Analyze implements analyzer.FileAnalyzer. Syntax errors never abort the
// file: every construct that parsed is extracted and a soft ParseError
// reports that the result may be partial.
func (a *PythonAnalyzer) Analyze(src []byte, path string) ([]models.CodeNode, []models.CodeDependency, error) {
	psr := parser.New()
	defer psr.Close()

	result, err := psr.Parse(src, parser.LangPython, path)
	if err != nil {
		return []models.CodeNode{}, []models.CodeDependency{}, err
	}

	nodes := make([]models.CodeNode, 0)
	edges := make([]models.CodeDependency, 0)
	stem := parser.FileStem(path)
	root := result.Tree.RootNode()

	imports := collectPythonImports(root, src)

	parser.Walk(root, src, func(n *sitter.Node, source []byte) bool {
		switch n.Type() {
		case "class_definition":
			node, inherits := extractPythonClass(n, source, stem, path)
			if node != nil {
				nodes = append(nodes, *node)
				edges = append(edges, inherits...)
			}
		case "function_definition":
			if node := extractPythonFunction(n, source, stem, path); node != nil {
				nodes = append(nodes, *node)
			}
		}
		return true
	})

	// Import edges come last, matching the per-file discovery order of
	// inherits edges before imports.
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

// collectPythonImports gathers statically literal import targets.
// "import a.b" yields "a.b"; "from X import a, b" yields "X.a" and "X.b",
// one entry per bound name in source order. Aliases are resolved to the
// imported name, computed imports are ignored.
func collectPythonImports(root *sitter.Node, src []byte) []string {
	var imports []string

	parser.Walk(root, src, func(n *sitter.Node, source []byte) bool {
		switch n.Type() {
		case "import_statement":
			for i := range int(n.ChildCount()) {
				child := n.Child(i)
				switch child.Type() {
				case "dotted_name":
					imports = append(imports, parser.GetNodeText(child, source))
				case "aliased_import":
					if nameNode := child.ChildByFieldName("name"); nameNode != nil {
						imports = append(imports, parser.GetNodeText(nameNode, source))
					}
				}
			}
			return false

		case "import_from_statement":
			module := ""
			if modNode := n.ChildByFieldName("module_name"); modNode != nil {
				module = trimRelativeDots(parser.GetNodeText(modNode, src))
			}
			// The module name is itself a dotted_name; bound names only
			// start after the "import" keyword.
			seenImportKeyword := false
			for i := range int(n.ChildCount()) {
				child := n.Child(i)
				if !seenImportKeyword {
					if child.Type() == "import" {
						seenImportKeyword = true
					}
					continue
				}
				switch child.Type() {
				case "dotted_name":
					imports = append(imports, module+"."+parser.GetNodeText(child, src))
				case "aliased_import":
					if nameNode := child.ChildByFieldName("name"); nameNode != nil {
						imports = append(imports, module+"."+parser.GetNodeText(nameNode, src))
					}
				case "wildcard_import":
					imports = append(imports, module+".*")
				}
			}
			return false
		}
		return true
	})

	return imports
}

// extractPythonClass builds a class node and one inherits edge per direct
// simple-name base, in base-declaration order. Attribute bases
// (module.Class) and keyword arguments (metaclass=...) are skipped.
func extractPythonClass(n *sitter.Node, src []byte, stem, path string) (*models.CodeNode, []models.CodeDependency) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	name := parser.GetNodeText(nameNode, src)
	line := n.StartPoint().Row + 1

	node := &models.CodeNode{
		ID:          stem + "." + name,
		Name:        name,
		Kind:        models.NodeClass,
		Language:    string(parser.LangPython),
		Path:        path,
		Line:        line,
		Complexity:  complexity.Count(n, src, parser.LangPython),
		LinesOfCode: complexity.LineCount(n),
	}

	var inherits []models.CodeDependency
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		for i := range int(bases.ChildCount()) {
			base := bases.Child(i)
			if base.Type() != "identifier" {
				continue
			}
			inherits = append(inherits, models.CodeDependency{
				Source: node.ID,
				Target: parser.GetNodeText(base, src),
				Kind:   models.EdgeInherits,
				Weight: models.DefaultEdgeWeight,
				Line:   line,
			})
		}
	}

	return node, inherits
}

// extractPythonFunction builds a function node. Nested and async
// definitions are discovered by the same walk.
func extractPythonFunction(n *sitter.Node, src []byte, stem, path string) *models.CodeNode {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := parser.GetNodeText(nameNode, src)

	return &models.CodeNode{
		ID:          stem + "." + name,
		Name:        name,
		Kind:        models.NodeFunction,
		Language:    string(parser.LangPython),
		Path:        path,
		Line:        n.StartPoint().Row + 1,
		Complexity:  complexity.Count(n, src, parser.LangPython),
		LinesOfCode: complexity.LineCount(n),
	}
}
