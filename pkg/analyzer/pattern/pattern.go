// Package pattern implements regex-based analyzers for languages without a
// tree-sitter grammar in the build. This tier trades fidelity for
// robustness: a missed construct is acceptable, a crash is not.
package pattern

import (
	"regexp"

	"github.com/depscope/depscope/pkg/analyzer"
	"github.com/depscope/depscope/pkg/models"
	"github.com/depscope/depscope/pkg/parser"
)

var _ analyzer.FileAnalyzer = (*Analyzer)(nil)

// Fixed per-construct expressions. Only statically literal import targets
// are matched; re-exports, aliasing, and computed imports are out of scope.
var (
	importRe  = regexp.MustCompile("import\\s+(?:\\{[^}]*\\}|\\*\\s+as\\s+\\w+|\\w+)\\s+from\\s+['\"`]([^'\"`]+)['\"`]")
	requireRe = regexp.MustCompile("require\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]")
	funcRe    = regexp.MustCompile(`function\s+(\w+)\s*\(`)
	classRe   = regexp.MustCompile(`class\s+(\w+)`)
)

// Analyzer extracts imports, functions, and classes by pattern matching.
// Line numbers are not recovered (line = 0), complexity defaults to 1.0,
// and lines_of_code stays 0.
type Analyzer struct {
	lang parser.Language
}

// New creates a pattern analyzer emitting nodes tagged with lang.
func New(lang parser.Language) *Analyzer {
	return &Analyzer{lang: lang}
}

// Language implements analyzer.FileAnalyzer.
func (a *Analyzer) Language() parser.Language {
	return a.lang
}

// Analyze implements analyzer.FileAnalyzer. Pattern matching cannot fail;
// the error is always nil.
func (a *Analyzer) Analyze(src []byte, path string) ([]models.CodeNode, []models.CodeDependency, error) {
	nodes := make([]models.CodeNode, 0)
	edges := make([]models.CodeDependency, 0)
	stem := parser.FileStem(path)

	for _, m := range funcRe.FindAllSubmatch(src, -1) {
		nodes = append(nodes, a.newNode(stem, string(m[1]), models.NodeFunction, path))
	}
	for _, m := range classRe.FindAllSubmatch(src, -1) {
		nodes = append(nodes, a.newNode(stem, string(m[1]), models.NodeClass, path))
	}

	for _, re := range []*regexp.Regexp{importRe, requireRe} {
		for _, m := range re.FindAllSubmatch(src, -1) {
			edges = append(edges, models.CodeDependency{
				Source: stem,
				Target: string(m[1]),
				Kind:   models.EdgeImports,
				Weight: models.DefaultEdgeWeight,
			})
		}
	}

	return nodes, edges, nil
}

func (a *Analyzer) newNode(stem, name string, kind models.NodeKind, path string) models.CodeNode {
	return models.CodeNode{
		ID:         stem + "." + name,
		Name:       name,
		Kind:       kind,
		Language:   string(a.lang),
		Path:       path,
		Complexity: 1.0,
	}
}
