package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/fixdocs-go/internal/pipeline"
)

// FixIO handles I/O for the fix and check commands.
type FixIO interface {
	pipeline.Files
	IsDir(path string) bool
}

// NewFixCmd creates the fix subcommand.
func NewFixCmd(io FixIO, e *env) *cobra.Command {
	var (
		inPlace  bool
		dryRun   bool
		diffMode bool
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "fix <input-dir> [output-dir]",
		Short:        "Fix exported markdown links, boilerplate and diagrams in a directory tree",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := filepath.Clean(args[0])
			if !io.IsDir(input) {
				return fmt.Errorf("input directory %s does not exist", input)
			}

			output := e.cfg.OutputDir
			switch {
			case inPlace:
				output = input
			case len(args) == 2:
				output = args[1]
			}
			output = filepath.Clean(output)

			report, err := pipeline.Run(cmd.Context(), io, pipeline.Options{
				Input:   input,
				Output:  output,
				DryRun:  dryRun || diffMode,
				Workers: e.cfg.Workers,
				RunID:   e.runID,
				Fixer:   e.fixer(),
				Logger:  e.log,
			})
			if err != nil {
				return fmt.Errorf("fixing %s: %w", input, err)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonMode:
				if err := writeJSON(out, report); err != nil {
					return err
				}
			case diffMode:
				for _, d := range report.Diffs {
					text, err := unifiedDiff(d)
					if err != nil {
						return fmt.Errorf("diffing %s: %w", d.Path, err)
					}
					fmt.Fprint(out, text)
				}
			case dryRun:
				for _, p := range report.Changed {
					fmt.Fprintln(out, sanitizePath(p))
				}
			default:
				fmt.Fprintf(out, "Fixed %d file(s), renamed %d, copied %d into %s\n",
					len(report.Changed), len(report.Renamed), report.Copied, sanitizePath(output))
			}

			e.log.Info("fix complete",
				zap.String("input", input),
				zap.String("output", output),
				zap.Int("changed", len(report.Changed)),
				zap.Int("failed", len(report.Failed)))

			if len(report.Failed) > 0 {
				printFailures(cmd.ErrOrStderr(), report.Failed)
				return fmt.Errorf("%d document(s) could not be processed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&inPlace, "in-place", false, "rewrite files in place instead of writing to output-dir")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print files that would change without writing output")
	cmd.Flags().BoolVar(&diffMode, "diff", false, "print a unified diff per changed file (implies --dry-run)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "output the run report as JSON")

	return cmd
}

func unifiedDiff(d pipeline.FileDiff) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(d.Original),
		B:        difflib.SplitLines(d.Updated),
		FromFile: d.Path + " (original)",
		ToFile:   d.Path,
		Context:  3,
	})
}
