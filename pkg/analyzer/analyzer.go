// Package analyzer defines the per-language analysis capability and the
// registry that dispatches on language.
package analyzer

import (
	"github.com/depscope/depscope/pkg/models"
	"github.com/depscope/depscope/pkg/parser"
)

// FileAnalyzer turns file text into code nodes and dependencies for one
// language. Implementations must be total: an internal parse failure is
// reported through the returned error together with whatever partial
// results were extracted, and must never panic or abort the scan.
// Implementations must be safe for concurrent use across files.
type FileAnalyzer interface {
	// Analyze extracts nodes and edges from decoded file content.
	Analyze(src []byte, path string) ([]models.CodeNode, []models.CodeDependency, error)

	// Language returns the tag stamped on every node this analyzer emits.
	Language() parser.Language
}

// NullAnalyzer recognizes a file type without extracting anything. It is
// distinct from an unregistered language: files it handles still count
// toward scan totals.
type NullAnalyzer struct {
	lang parser.Language
}

// NewNull creates a null analyzer for a language.
func NewNull(lang parser.Language) *NullAnalyzer {
	return &NullAnalyzer{lang: lang}
}

// Analyze implements FileAnalyzer.
func (a *NullAnalyzer) Analyze(_ []byte, _ string) ([]models.CodeNode, []models.CodeDependency, error) {
	return []models.CodeNode{}, []models.CodeDependency{}, nil
}

// Language implements FileAnalyzer.
func (a *NullAnalyzer) Language() parser.Language {
	return a.lang
}
