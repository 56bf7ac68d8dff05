package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/eykd/fixdocs-go/internal/mermaid"
	"github.com/eykd/fixdocs-go/internal/pipeline"
)

// sanitizePath replaces control characters (runes < 0x20 or == 0x7F) with '?'
// before including path values in human-readable output, preventing ANSI injection.
func sanitizePath(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '?'
		}
		return r
	}, s)
}

// printFinding writes a finding as "CODE severity path:line message".
func printFinding(w io.Writer, path string, f mermaid.Finding) {
	fmt.Fprintf(w, "%s %s %s:%d %s\n", f.Code, f.Severity, sanitizePath(path), f.Line, sanitizePath(f.Message))
}

func printFileFindings(w io.Writer, findings []pipeline.FileFinding) {
	for _, f := range findings {
		printFinding(w, f.Path, f.Finding)
	}
}

// printFailures writes each failed document to w.
func printFailures(w io.Writer, failed []pipeline.Failure) {
	for _, f := range failed {
		fmt.Fprintf(w, "error: %s: %s\n", sanitizePath(f.Path), sanitizePath(f.Err))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
