// Package scanner finds candidate source files under a project root.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/depscope/depscope/pkg/config"
	"github.com/depscope/depscope/pkg/parser"
)

// ErrRootNotFound indicates the scan root does not exist. This is the only
// fatal condition a scan can produce.
var ErrRootNotFound = errors.New("root path does not exist")

// Item is one catalog entry: a regular file whose extension matched the
// language table.
type Item struct {
	Path     string
	Language parser.Language
}

// Scanner walks a directory tree and yields (path, language) candidates.
// Traversal uses filepath.WalkDir, so enumeration order is lexical and
// stable across runs over an unchanged tree.
type Scanner struct {
	config   *config.Config
	table    parser.ExtensionTable
	matchers []gitignore.Matcher
}

// New creates a file scanner from configuration.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{
		config: cfg,
		table:  cfg.ExtensionTable(),
	}
}

// findGitRoot finds the root of the git repository by looking for a .git
// directory. Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from config and .gitignore
// files. Config patterns are parsed as gitignore syntax.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}

	pathParts := strings.Split(path, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for source files whose extension
// matches the configured language table. Files with unmatched extensions
// are silently excluded. A missing root fails with ErrRootNotFound before
// any walking starts; unreadable subtrees are skipped, not fatal.
func (s *Scanner) ScanDir(root string) ([]Item, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	s.loadExcludePatterns(root)

	items := make([]Item, 0, 256)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.isExcluded(relPath, false) {
			return nil
		}

		if lang := s.table.Detect(path); lang != parser.LangUnknown {
			items = append(items, Item{Path: path, Language: lang})
		}
		return nil
	})

	return items, walkErr
}

// ScanFile checks a single file against the exclusion rules and language
// table, returning its language or LangUnknown.
func (s *Scanner) ScanFile(path string) (parser.Language, error) {
	info, err := os.Stat(path)
	if err != nil {
		return parser.LangUnknown, err
	}
	if info.IsDir() {
		return parser.LangUnknown, nil
	}

	if len(s.matchers) == 0 {
		s.loadExcludePatterns(filepath.Dir(path))
	}
	if s.isExcluded(filepath.Base(path), false) {
		return parser.LangUnknown, nil
	}

	return s.table.Detect(path), nil
}

// FilterBySize drops files larger than maxSize bytes. Returns the filtered
// list and the count of files skipped. A zero maxSize disables the limit.
func FilterBySize(items []Item, maxSize int64) ([]Item, int) {
	if maxSize <= 0 {
		return items, 0
	}

	filtered := make([]Item, 0, len(items))
	skipped := 0
	for _, it := range items {
		info, err := os.Stat(it.Path)
		if err != nil {
			skipped++
			continue
		}
		if info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, it)
	}
	return filtered, skipped
}
