// Package depgraph drives the scan pipeline: catalog, load, per-language
// analysis, and graph assembly.
package depgraph

import (
	"context"
	"errors"

	"github.com/depscope/depscope/internal/fileproc"
	"github.com/depscope/depscope/internal/scanner"
	"github.com/depscope/depscope/pkg/analyzer"
	"github.com/depscope/depscope/pkg/analyzer/pattern"
	"github.com/depscope/depscope/pkg/analyzer/syntax"
	"github.com/depscope/depscope/pkg/config"
	"github.com/depscope/depscope/pkg/models"
	"github.com/depscope/depscope/pkg/parser"
	"github.com/depscope/depscope/pkg/source"
)

// ErrRootNotFound is the single fatal error AnalyzeProject can return:
// the project root itself is invalid. Everything below it is a soft
// failure recorded as a warning.
var ErrRootNotFound = scanner.ErrRootNotFound

// Analyzer extracts a project-wide dependency graph. Per-file failures
// are isolated: one corrupt file never aborts a scan.
type Analyzer struct {
	cfg      *config.Config
	registry *analyzer.Registry
	src      source.ContentSource
	table    parser.ExtensionTable
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		a.cfg = cfg
	}
}

// WithRegistry substitutes the analyzer registry. Tests use this to
// inject fakes.
func WithRegistry(r *analyzer.Registry) Option {
	return func(a *Analyzer) {
		a.registry = r
	}
}

// WithContentSource substitutes the file content source.
func WithContentSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.src = src
	}
}

// New creates a project analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg: config.DefaultConfig(),
		src: source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = DefaultRegistry()
	}
	a.table = a.cfg.ExtensionTable()
	return a
}

// DefaultRegistry wires the standard per-language analyzers: tree-based
// for Python and Go, pattern-based for the JavaScript family, and null
// analyzers for languages recognized but not yet analyzed.
func DefaultRegistry() *analyzer.Registry {
	r := analyzer.NewRegistry()
	r.Register(parser.LangPython, syntax.NewPython())
	r.Register(parser.LangGo, syntax.NewGo())

	for _, lang := range []parser.Language{
		parser.LangJavaScript,
		parser.LangTypeScript,
		parser.LangJSX,
		parser.LangTSX,
	} {
		r.Register(lang, pattern.New(lang))
	}

	for _, lang := range []parser.Language{
		parser.LangJava,
		parser.LangC,
		parser.LangCPP,
		parser.LangCSharp,
		parser.LangPHP,
		parser.LangRuby,
		parser.LangRust,
	} {
		r.Register(lang, analyzer.NewNull(lang))
	}
	return r
}

// fileResult is the outcome of one file's pipeline. Soft failures travel
// as values, not errors, so isolation is enforced by the type rather than
// by catch discipline.
type fileResult struct {
	nodes   []models.CodeNode
	edges   []models.CodeDependency
	warning *models.Warning
	touched bool
}

// AnalyzeProject scans root and assembles the full dependency graph.
// It fails fast only when root itself is invalid. On context cancellation
// in-flight files finish, no new files are dispatched, and the partial
// graph is returned with metadata.partial set.
func (a *Analyzer) AnalyzeProject(ctx context.Context, root string) (*models.DependencyGraph, error) {
	items, err := a.Catalog(root)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}

	if tracker := analyzer.TrackerFromContext(ctx); tracker != nil {
		tracker.SetTotal(len(paths))
	}

	workers := a.cfg.Analysis.Workers
	fn := func(_ context.Context, path string) (fileResult, error) {
		return a.analyzeOne(path), nil
	}

	var results []fileResult
	var errs *fileproc.ProcessingErrors
	if a.cfg.Analysis.Deterministic {
		results, errs = fileproc.MapOrdered(ctx, paths, workers, fn)
	} else {
		results, errs = fileproc.Map(ctx, paths, workers, fn)
	}

	graph := assemble(results)
	if errs != nil {
		for _, pe := range errs.Errors {
			if errors.Is(pe.Err, context.Canceled) || errors.Is(pe.Err, context.DeadlineExceeded) {
				graph.Metadata.Partial = true
				break
			}
		}
	}
	return graph, nil
}

// AnalyzeFile analyzes a single file standalone with the same soft-failure
// contract as a project scan: any recoverable failure yields empty
// results, never an error.
func (a *Analyzer) AnalyzeFile(path string) ([]models.CodeNode, []models.CodeDependency) {
	result := a.analyzeOne(path)
	return result.nodes, result.edges
}

// Catalog enumerates candidate files under root in stable order, applying
// the size limit. Exposed so callers can count and report before a scan.
func (a *Analyzer) Catalog(root string) ([]scanner.Item, error) {
	items, err := scanner.New(a.cfg).ScanDir(root)
	if err != nil {
		return nil, err
	}
	items, _ = scanner.FilterBySize(items, a.cfg.Analysis.MaxFileSize)
	return items, nil
}

// analyzeOne runs the load-and-analyze pipeline for one file. It is total:
// every failure mode maps to an empty result, optionally with a warning.
func (a *Analyzer) analyzeOne(path string) fileResult {
	lang := a.table.Detect(path)
	if lang == parser.LangUnknown {
		return fileResult{nodes: []models.CodeNode{}, edges: []models.CodeDependency{}}
	}

	fa := a.registry.AnalyzerFor(lang)
	if fa == nil {
		// Recognized extension without a registered analyzer: skipped,
		// not errored, and not counted as touched.
		return fileResult{nodes: []models.CodeNode{}, edges: []models.CodeDependency{}}
	}

	text, err := source.ReadText(a.src, path)
	if err != nil {
		return fileResult{
			nodes: []models.CodeNode{},
			edges: []models.CodeDependency{},
			warning: &models.Warning{
				Path:  path,
				Stage: "read",
				Cause: err.Error(),
			},
		}
	}

	nodes, edges, err := fa.Analyze(text, path)
	if nodes == nil {
		nodes = []models.CodeNode{}
	}
	if edges == nil {
		edges = []models.CodeDependency{}
	}

	result := fileResult{nodes: nodes, edges: edges, touched: true}
	if err != nil {
		result.warning = &models.Warning{
			Path:  path,
			Stage: "parse",
			Cause: err.Error(),
		}
	}
	return result
}
