package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/depscope/depscope/internal/output"
	"github.com/depscope/depscope/internal/scanner"
	"github.com/depscope/depscope/pkg/analyzer/depgraph"
	"github.com/depscope/depscope/pkg/models"
	"github.com/depscope/depscope/pkg/parser"
)

func fileCmd() *cli.Command {
	return &cli.Command{
		Name:      "file",
		Usage:     "Extract units and dependencies from a single file",
		ArgsUsage: "<path>",
		Action:    runFile,
	}
}

func runFile(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("file path required")
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	lang, err := scanner.New(cfg).ScanFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if lang == parser.LangUnknown {
		color.Yellow("Skipped %s: excluded by configuration or unrecognized file type", path)
		return nil
	}

	eng := depgraph.New(depgraph.WithConfig(cfg))
	nodes, edges := eng.AnalyzeFile(path)

	format := output.ParseFormat(c.String("format"))
	formatter, err := output.NewFormatter(format, c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	result := struct {
		Nodes []models.CodeNode       `json:"nodes" toon:"nodes"`
		Edges []models.CodeDependency `json:"edges" toon:"edges"`
	}{nodes, edges}

	switch format {
	case output.FormatJSON, output.FormatToon:
		return formatter.Output(result)
	case output.FormatMermaid:
		graph := models.NewDependencyGraph()
		graph.Append(nodes, edges)
		return formatter.Output(graph)
	}

	nodeRows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		nodeRows = append(nodeRows, []string{
			n.ID,
			string(n.Kind),
			fmt.Sprintf("%d", n.Line),
			fmt.Sprintf("%.1f", n.Complexity),
			fmt.Sprintf("%d", n.LinesOfCode),
		})
	}
	edgeRows := make([][]string, 0, len(edges))
	for _, e := range edges {
		edgeRows = append(edgeRows, []string{
			e.Source,
			string(e.Kind),
			e.Target,
			fmt.Sprintf("%d", e.Line),
		})
	}

	report := &output.Report{
		Sections: []output.Renderable{
			output.NewTable(
				fmt.Sprintf("Units in %s", path),
				[]string{"ID", "Kind", "Line", "Complexity", "Lines"},
				nodeRows,
				nil,
				nodes,
			),
			output.NewTable(
				"Dependencies",
				[]string{"Source", "Kind", "Target", "Line"},
				edgeRows,
				nil,
				edges,
			),
		},
		Data: result,
	}
	return formatter.Output(report)
}
