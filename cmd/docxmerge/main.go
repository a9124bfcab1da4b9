package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/dgallion1/docxmerge/internal/docx"
	"github.com/dgallion1/docxmerge/internal/merge"
)

// ErrNoFiles is returned when no pattern matched any file.
var ErrNoFiles = errors.New("no files found matching the specified patterns")

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	StripHyperlinks bool     `short:"s" help:"Remove hyperlink field instructions from the output"`
	Output          string   `short:"o" default:"merged.txt" help:"File to write the merged text to"`
	Jobs            int      `short:"j" default:"1" help:"Documents extracted concurrently"`
	Verbose         bool     `short:"v" help:"Log each extracted document"`
	Patterns        []string `arg:"" name:"pattern" help:"Glob patterns of .docx files, merged in the order given"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docxmerge"),
		kong.Description("Merges plain text extracted from DOCX files into a single output."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "-?") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	paths := expandPatterns(cli.Patterns, log)
	if len(paths) == 0 {
		return ErrNoFiles
	}

	extractFile := func(_ context.Context, path string, strip bool) (string, error) {
		text, err := docx.ExtractFile(path, strip)
		if err != nil {
			return "", err
		}
		log.Debug("extracted", "path", path, "chars", len(text))
		return text, nil
	}

	var merged string
	if cli.Jobs > 1 {
		merged, err = merge.MergeConcurrent(ctx, paths, extractFile, cli.StripHyperlinks, cli.Jobs)
	} else {
		merged, err = merge.Merge(ctx, paths, extractFile, cli.StripHyperlinks)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(cli.Output, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cli.Output, err)
	}
	fmt.Fprintf(stdout, "Merged text written to %s\n", cli.Output)
	return nil
}

// expandPatterns expands each pattern in order. Matches of one pattern come
// back sorted; a path matched twice is merged twice.
func expandPatterns(patterns []string, log *slog.Logger) []string {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Warn("error processing pattern", "pattern", pattern, "error", err)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}
