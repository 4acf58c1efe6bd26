package analyzer

import "github.com/depscope/depscope/pkg/parser"

// Registry maps language ids to analyzers. It is built once at startup and
// passed to the orchestrator explicitly, so tests can substitute fakes.
// After construction it is read-only and safe for concurrent use.
type Registry struct {
	analyzers map[parser.Language]FileAnalyzer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[parser.Language]FileAnalyzer)}
}

// Register binds an analyzer to a language, replacing any previous binding.
// Adding a language means one analyzer implementation and one Register
// call; dispatch never changes.
func (r *Registry) Register(lang parser.Language, a FileAnalyzer) *Registry {
	r.analyzers[lang] = a
	return r
}

// AnalyzerFor returns the analyzer for a language, or nil when the
// language is unsupported. Unsupported files are skipped, not errored.
func (r *Registry) AnalyzerFor(lang parser.Language) FileAnalyzer {
	return r.analyzers[lang]
}

// Languages returns the registered language ids, in no particular order.
func (r *Registry) Languages() []parser.Language {
	langs := make([]parser.Language, 0, len(r.analyzers))
	for lang := range r.analyzers {
		langs = append(langs, lang)
	}
	return langs
}
