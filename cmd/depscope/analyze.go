package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/depscope/depscope/internal/cache"
	"github.com/depscope/depscope/internal/output"
	"github.com/depscope/depscope/internal/progress"
	"github.com/depscope/depscope/internal/scanner"
	"github.com/depscope/depscope/pkg/analyzer"
	"github.com/depscope/depscope/pkg/analyzer/depgraph"
	"github.com/depscope/depscope/pkg/config"
	"github.com/depscope/depscope/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"scan"},
		Usage:     "Build the dependency graph for a source tree",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Include PageRank and centrality metrics",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent file analyses (0 = 2x CPU count)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
		},
		Action: runAnalyze,
	}
}

// loadConfig resolves the effective config from --config or the standard
// search locations, then applies CLI overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

func runAnalyze(c *cli.Context) error {
	absPath, err := filepath.Abs(getPath(c))
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", getPath(c), err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := depgraph.New(depgraph.WithConfig(cfg))

	items, err := eng.Catalog(absPath)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	store, err := cache.New(filepath.Join(absPath, cfg.Cache.Dir), cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	manifest := catalogHash(items)
	cacheKey := "graph:" + absPath

	var graph *models.DependencyGraph
	if data, ok := store.Get(cacheKey, manifest); ok {
		var cached models.DependencyGraph
		if err := json.Unmarshal(data, &cached); err == nil {
			graph = &cached
		}
	}

	if graph == nil {
		graph, err = analyzeWithProgress(ctx, c, eng, absPath, len(items))
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		// Partial graphs are not worth caching.
		if !graph.Metadata.Partial {
			if data, err := json.Marshal(graph); err == nil {
				store.Set(cacheKey, manifest, data)
			}
		}
	}

	var metrics *depgraph.Metrics
	if c.Bool("metrics") {
		metrics = depgraph.CalculateMetrics(graph)
	}

	return writeGraph(c, cfg, graph, metrics)
}

// analyzeWithProgress runs the project scan with a terminal progress bar
// wired through the context, unless output is redirected or --no-progress
// is set.
func analyzeWithProgress(ctx context.Context, c *cli.Context, eng *depgraph.Analyzer, root string, total int) (*models.DependencyGraph, error) {
	showProgress := !c.Bool("no-progress") && c.String("output") == "" && isTerminal()
	if showProgress {
		bar := progress.NewTracker("Analyzing dependencies...", total)
		tracker := analyzer.NewTracker(func(_, _ int, _ string) {
			bar.Tick()
		})
		ctx = analyzer.WithTracker(ctx, tracker)
		defer bar.Finish()
	}
	return eng.AnalyzeProject(ctx, root)
}

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// catalogHash fingerprints the file set so cached graphs invalidate when
// any file changes path, size, or mtime.
func catalogHash(items []scanner.Item) string {
	var buf []byte
	for _, it := range items {
		buf = append(buf, it.Path...)
		if fi, err := os.Stat(it.Path); err == nil {
			buf = append(buf, fmt.Sprintf("|%d|%d\n", fi.Size(), fi.ModTime().UnixNano())...)
		} else {
			buf = append(buf, '\n')
		}
	}
	return cache.HashBytes(buf)
}

// writeGraph emits the graph in the requested format.
func writeGraph(c *cli.Context, cfg *config.Config, graph *models.DependencyGraph, metrics *depgraph.Metrics) error {
	format := output.ParseFormat(c.String("format"))
	formatter, err := output.NewFormatter(format, c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	switch format {
	case output.FormatJSON, output.FormatToon:
		if metrics != nil {
			return formatter.Output(struct {
				Graph   *models.DependencyGraph `json:"graph" toon:"graph"`
				Metrics *depgraph.Metrics       `json:"metrics" toon:"metrics"`
			}{graph, metrics})
		}
		return formatter.Output(graph)
	case output.FormatMermaid:
		return formatter.Output(graph)
	}

	if err := writeGraphReport(formatter, graph); err != nil {
		return err
	}
	if metrics != nil {
		writeMetrics(formatter, metrics)
	}
	if cfg.Output.Verbose {
		writeWarnings(formatter, graph.Warnings)
	}
	return nil
}

func writeGraphReport(formatter *output.Formatter, graph *models.DependencyGraph) error {
	summary := &output.Section{
		Title: "Dependency Graph",
		Content: fmt.Sprintf("Files: %d  Nodes: %d  Edges: %d  Languages: %v",
			graph.Metadata.TotalFiles,
			graph.Metadata.TotalNodes,
			graph.Metadata.TotalDependencies,
			graph.Metadata.Languages),
	}
	if graph.Metadata.Partial {
		summary.Content += "\n(partial: scan was interrupted)"
	}
	if len(graph.Warnings) > 0 {
		summary.Content += fmt.Sprintf("\nWarnings: %d file(s) skipped or partially analyzed", len(graph.Warnings))
	}

	nodes := topComplexNodes(graph.Nodes, 20)
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID,
			string(n.Kind),
			string(n.Language),
			fmt.Sprintf("%d", n.Line),
			fmt.Sprintf("%.1f", n.Complexity),
			fmt.Sprintf("%d", n.LinesOfCode),
		})
	}

	report := &output.Report{
		Title: "",
		Sections: []output.Renderable{
			summary,
			output.NewTable(
				"Top Units by Complexity",
				[]string{"ID", "Kind", "Language", "Line", "Complexity", "Lines"},
				rows,
				nil,
				graph,
			),
		},
		Data: graph,
	}
	return formatter.Output(report)
}

func topComplexNodes(nodes []models.CodeNode, limit int) []models.CodeNode {
	ranked := make([]models.CodeNode, len(nodes))
	copy(ranked, nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Complexity > ranked[j].Complexity
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func writeMetrics(formatter *output.Formatter, metrics *depgraph.Metrics) {
	w := formatter.Writer()
	fmt.Fprintln(w)
	formatter.Info("Graph Metrics:")
	fmt.Fprintf(w, "  Nodes: %d\n", metrics.Summary.TotalNodes)
	fmt.Fprintf(w, "  Edges: %d\n", metrics.Summary.TotalEdges)
	fmt.Fprintf(w, "  Avg Degree: %.2f\n", metrics.Summary.AvgDegree)
	fmt.Fprintf(w, "  Density: %.4f\n", metrics.Summary.Density)
	fmt.Fprintf(w, "  Components: %d (largest: %d)\n", metrics.Summary.Components, metrics.Summary.LargestComponent)

	if len(metrics.NodeMetrics) == 0 {
		return
	}
	fmt.Fprintln(w)
	formatter.Info("Top Nodes by PageRank:")
	ranked := make([]depgraph.NodeMetric, len(metrics.NodeMetrics))
	copy(ranked, metrics.NodeMetrics)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].PageRank > ranked[j].PageRank
	})
	for i, nm := range ranked {
		if i >= 5 {
			break
		}
		fmt.Fprintf(w, "  %s: %.4f (in: %d, out: %d)\n",
			nm.Name, nm.PageRank, nm.InDegree, nm.OutDegree)
	}
}

func writeWarnings(formatter *output.Formatter, warnings []models.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(formatter.Writer())
	for _, w := range warnings {
		formatter.Warning("%s (%s): %s", w.Path, w.Stage, w.Cause)
	}
}
