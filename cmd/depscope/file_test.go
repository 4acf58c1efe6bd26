package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// newFileTestApp mirrors the global flags the file command reads.
func newFileTestApp() *cli.App {
	return &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}},
			&cli.BoolFlag{Name: "no-cache"},
			&cli.BoolFlag{Name: "verbose"},
		},
		Commands: []*cli.Command{fileCmd()},
	}
}

func TestRunFile_RequiresPath(t *testing.T) {
	err := newFileTestApp().Run([]string{"depscope", "file"})
	if err == nil {
		t.Fatal("expected an error when no path is given")
	}
}

func TestRunFile_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.py")
	err := newFileTestApp().Run([]string{"depscope", "file", path})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

// Exclusion rules apply to single-file analysis the same way they apply
// to tree scans.
func TestRunFile_SkipsExcludedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.min.js")
	if err := os.WriteFile(path, []byte("var a=1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.json")

	err := newFileTestApp().Run([]string{"depscope", "-f", "json", "-o", out, "file", path})
	if err != nil {
		t.Fatalf("file command failed: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("excluded files should be skipped before any output is written")
	}
}

func TestRunFile_AnalyzesRecognizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	source := "import os\n\ndef main():\n    pass\n"
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.json")

	err := newFileTestApp().Run([]string{"depscope", "-f", "json", "-o", out, "file", path})
	if err != nil {
		t.Fatalf("file command failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "app.main") {
		t.Errorf("output should contain the discovered function, got:\n%s", data)
	}
}
