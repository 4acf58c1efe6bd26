// Package syntax implements tree-based analyzers: full syntax-tree parses
// via tree-sitter with exact construct extraction. Pattern-based fallbacks
// for languages without a grammar live in the pattern package.
package syntax

import (
	"fmt"
	"strings"
)

// ParseError is the soft failure reported when a file's syntax tree
// contains error nodes. Extraction still returns every construct that
// parsed; the error only signals that the result may be partial.
type ParseError struct {
	Path string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax errors in %s: partial result", e.Path)
}

// unquote strips a single layer of surrounding quotes from a literal.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// trimRelativeDots removes the leading dots of a relative module path, so
// "from .mod import x" targets "mod.x" just as an absolute import would.
func trimRelativeDots(module string) string {
	return strings.TrimLeft(module, ".")
}
