package depgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscope/depscope/pkg/config"
	"github.com/depscope/depscope/pkg/models"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	cfg.Cache.Enabled = false
	return cfg
}

func TestAnalyzeProject_MixedLanguages(t *testing.T) {
	root := writeProject(t, map[string]string{
		"app.py": `import os
from models import User

class Service(Base):
    def handle(self, req):
        if req:
            return User()
        return None
`,
		"models.py": `class User:
    pass
`,
		"web.js": `import React from 'react';

function render() {
  return null;
}
`,
		"main.go": `package main

import "fmt"

func main() {
	fmt.Println("hi")
}
`,
		"notes.txt": "not code",
	})

	a := New(WithConfig(testConfig()))
	graph, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 4, graph.Metadata.TotalFiles)
	assert.Equal(t, len(graph.Nodes), graph.Metadata.TotalNodes)
	assert.Equal(t, len(graph.Edges), graph.Metadata.TotalDependencies)
	assert.False(t, graph.Metadata.Partial)
	assert.Empty(t, graph.Warnings)

	ids := make(map[string]models.CodeNode)
	for _, n := range graph.Nodes {
		ids[n.ID] = n
	}
	assert.Contains(t, ids, "app.Service")
	assert.Contains(t, ids, "app.handle")
	assert.Contains(t, ids, "models.User")
	assert.Contains(t, ids, "web.render")
	assert.Contains(t, ids, "main.main")

	// Languages are distinct and sorted.
	assert.Equal(t, []string{"go", "javascript", "python"}, graph.Metadata.Languages)

	var importTargets []string
	for _, e := range graph.Edges {
		if e.Kind == models.EdgeImports && e.Source == "app" {
			importTargets = append(importTargets, e.Target)
		}
	}
	assert.Equal(t, []string{"os", "models.User"}, importTargets)
}

func TestAnalyzeProject_Idempotent(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.py": "import os\ndef f():\n    pass\n",
		"b.py": "import sys\ndef g():\n    pass\n",
		"c.py": "class C:\n    pass\n",
	})

	a := New(WithConfig(testConfig()))
	first, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)
	second, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Metadata, second.Metadata)
}

func TestAnalyzeProject_MalformedFileIsIsolated(t *testing.T) {
	root := writeProject(t, map[string]string{
		"good.py":   "def fine():\n    pass\n",
		"broken.py": "def broken(:\n",
		"also.py":   "class Ok:\n    pass\n",
	})

	a := New(WithConfig(testConfig()))
	graph, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	// The malformed file is marked, the rest of the scan is unaffected.
	assert.Equal(t, 3, graph.Metadata.TotalFiles)
	require.Len(t, graph.Warnings, 1)
	assert.Equal(t, "parse", graph.Warnings[0].Stage)
	assert.Contains(t, graph.Warnings[0].Path, "broken.py")

	ids := make(map[string]bool)
	for _, n := range graph.Nodes {
		ids[n.ID] = true
	}
	assert.True(t, ids["good.fine"])
	assert.True(t, ids["also.Ok"])
}

func TestAnalyzeProject_NullLanguageCounted(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Main.java": "public class Main {}\n",
		"app.py":    "x = 1\n",
	})

	a := New(WithConfig(testConfig()))
	graph, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	// Java has a null analyzer: the file counts, contributes nothing.
	assert.Equal(t, 2, graph.Metadata.TotalFiles)
	for _, n := range graph.Nodes {
		assert.NotEqual(t, "java", n.Language)
	}
}

func TestAnalyzeProject_DanglingEdgesKept(t *testing.T) {
	root := writeProject(t, map[string]string{
		"app.py": "import missing_module\n",
	})

	a := New(WithConfig(testConfig()))
	graph, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	// No node validation: the import edge survives with no matching node.
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "missing_module", graph.Edges[0].Target)
	assert.Empty(t, graph.Nodes)
}

func TestAnalyzeProject_MissingRoot(t *testing.T) {
	a := New(WithConfig(testConfig()))
	_, err := a.AnalyzeProject(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestAnalyzeProject_EmptyTree(t *testing.T) {
	a := New(WithConfig(testConfig()))
	graph, err := a.AnalyzeProject(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, graph.Metadata.TotalFiles)
	assert.Empty(t, graph.Nodes)
	assert.Empty(t, graph.Edges)
}

func TestAnalyzeProject_Cancellation(t *testing.T) {
	files := make(map[string]string, 200)
	for i := 0; i < 200; i++ {
		files[filepath.Join("pkg", string(rune('a'+i%26))+string(rune('a'+(i/26)%26)), "mod"+string(rune('0'+i%10))+".py")] =
			"def f():\n    pass\n"
	}
	root := writeProject(t, files)

	cfg := testConfig()
	cfg.Analysis.Workers = 1
	a := New(WithConfig(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	graph, err := a.AnalyzeProject(ctx, root)
	require.NoError(t, err)
	assert.True(t, graph.Metadata.Partial)
	assert.Empty(t, graph.Nodes)
}

func TestAnalyzeProject_NonDeterministicMode(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.py": "def fa():\n    pass\n",
		"b.py": "def fb():\n    pass\n",
	})

	cfg := testConfig()
	cfg.Analysis.Deterministic = false
	a := New(WithConfig(cfg))

	graph, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, graph.Metadata.TotalFiles)
	assert.Len(t, graph.Nodes, 2)
}

func TestAnalyzeFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"svc.py": "import os\n\nclass Svc:\n    pass\n",
	})

	a := New(WithConfig(testConfig()))
	nodes, edges := a.AnalyzeFile(filepath.Join(root, "svc.py"))

	require.Len(t, nodes, 1)
	assert.Equal(t, "svc.Svc", nodes[0].ID)
	require.Len(t, edges, 1)
	assert.Equal(t, "os", edges[0].Target)
}

func TestAnalyzeFile_UnreadableIsEmpty(t *testing.T) {
	a := New(WithConfig(testConfig()))
	nodes, edges := a.AnalyzeFile(filepath.Join(t.TempDir(), "gone.py"))
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestCatalog(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.py":      "",
		"b.go":      "",
		"README.md": "",
	})

	a := New(WithConfig(testConfig()))
	items, err := a.Catalog(root)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	langs := r.Languages()
	// Tree, pattern, and null tiers all registered.
	assert.GreaterOrEqual(t, len(langs), 13)
}
