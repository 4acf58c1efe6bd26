package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// Language identifies a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJSX        Language = "jsx"
	LangTSX        Language = "tsx"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangPHP        Language = "php"
	LangRuby       Language = "ruby"
	LangRust       Language = "rust"
	LangUnknown    Language = "unknown"
)

// ExtensionTable maps a file extension (with leading dot) to a language.
// It is the single configuration point for file-type recognition: the
// scanner filters against it and the registry dispatches on its output.
type ExtensionTable map[string]Language

// DefaultExtensions returns the standard extension mapping.
func DefaultExtensions() ExtensionTable {
	return ExtensionTable{
		".py":   LangPython,
		".js":   LangJavaScript,
		".ts":   LangTypeScript,
		".jsx":  LangJSX,
		".tsx":  LangTSX,
		".go":   LangGo,
		".java": LangJava,
		".cpp":  LangCPP,
		".c":    LangC,
		".cs":   LangCSharp,
		".php":  LangPHP,
		".rb":   LangRuby,
		".rs":   LangRust,
	}
}

// Detect returns the language for a file path, or LangUnknown when the
// extension has no table entry.
func (t ExtensionTable) Detect(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := t[ext]; ok {
		return lang
	}
	return LangUnknown
}

// DetectLanguage determines the language from a file path using the
// default extension table.
func DetectLanguage(path string) Language {
	return DefaultExtensions().Detect(path)
}

// Parser wraps tree-sitter for syntax-tree parsing.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and its inputs.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance. Parsers are not safe for concurrent
// use; create one per worker.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := TreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// TreeSitterLanguage returns the tree-sitter grammar for a language.
// Only languages with a tree-based analyzer carry a grammar; everything
// else is handled by pattern or null analyzers.
func TreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangGo:
		return golang.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("no grammar for language: %s", lang)
	}
}

// HasError reports whether the parse tree contains any syntax errors.
func (r *ParseResult) HasError() bool {
	root := r.Tree.RootNode()
	return root.HasError()
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the AST calling visitor for each node. Returning false
// from the visitor prunes that subtree.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of a specific type.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(n *sitter.Node, _ []byte) bool {
		if n.Type() == nodeType {
			results = append(results, n)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FileStem returns the file name without directory or extension. Node IDs
// are namespaced by stem, matching the id scheme of the rest of the system.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
