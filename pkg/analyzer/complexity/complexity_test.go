package complexity

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscope/depscope/pkg/parser"
)

func parsePythonUnit(t *testing.T, src string, nodeType string) (*sitter.Node, []byte) {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)

	source := []byte(src)
	result, err := p.Parse(source, parser.LangPython, "test.py")
	require.NoError(t, err)
	t.Cleanup(func() { result.Tree.Close() })

	nodes := parser.FindNodesByType(result.Tree.RootNode(), source, nodeType)
	require.NotEmpty(t, nodes, "no %s found in source", nodeType)
	return nodes[0], source
}

func TestCount_Python(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected float64
	}{
		{
			name:     "straight-line function",
			code:     "def f():\n    return 1\n",
			expected: 1.0,
		},
		{
			name:     "single if",
			code:     "def f(x):\n    if x:\n        return 1\n    return 0\n",
			expected: 2.0,
		},
		{
			name: "if elif else",
			code: `def f(x):
    if x > 10:
        return "big"
    elif x > 5:
        return "mid"
    else:
        return "small"
`,
			expected: 3.0,
		},
		{
			name: "boolean chain",
			code: `def f(a, b, c):
    if a and b or c:
        return 1
    return 0
`,
			// if + two operator nodes for the three-operand chain
			expected: 4.0,
		},
		{
			name: "loops and handlers",
			code: `def f(items):
    total = 0
    for i in items:
        while i > 0:
            i -= 1
    try:
        total += 1
    except ValueError:
        pass
    with open("x") as fh:
        assert fh
    return total
`,
			// for + while + except + with + assert
			expected: 6.0,
		},
		{
			name: "nested function counts toward parent",
			code: `def outer(x):
    def inner(y):
        if y:
            return 1
        return 0
    return inner(x)
`,
			expected: 2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, source := parsePythonUnit(t, tt.code, "function_definition")
			assert.Equal(t, tt.expected, Count(node, source, parser.LangPython))
		})
	}
}

func TestCount_PythonClassIncludesMethods(t *testing.T) {
	code := `class Svc:
    def a(self, x):
        if x:
            return 1
        return 0

    def b(self, y):
        if y:
            return 2
        return 0
`
	node, source := parsePythonUnit(t, code, "class_definition")
	assert.Equal(t, 3.0, Count(node, source, parser.LangPython))
}

func TestCount_Go(t *testing.T) {
	p := parser.New()
	defer p.Close()

	source := []byte(`package main

func f(a, b bool, items []int) int {
	total := 0
	if a && b {
		total++
	}
	for range items {
		total++
	}
	return total
}
`)
	result, err := p.Parse(source, parser.LangGo, "main.go")
	require.NoError(t, err)
	defer result.Tree.Close()

	funcs := parser.FindNodesByType(result.Tree.RootNode(), source, "function_declaration")
	require.Len(t, funcs, 1)

	// if + && + for
	assert.Equal(t, 4.0, Count(funcs[0], source, parser.LangGo))
}

func TestCount_NilNode(t *testing.T) {
	assert.Equal(t, 1.0, Count(nil, nil, parser.LangPython))
}

func TestLineCount(t *testing.T) {
	code := `def f():
    a = 1
    b = 2
    return a + b
`
	node, _ := parsePythonUnit(t, code, "function_definition")
	assert.Equal(t, 4, LineCount(node))

	assert.Equal(t, 1, LineCount(nil))
}
