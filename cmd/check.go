package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/fixdocs-go/internal/mermaid"
	"github.com/eykd/fixdocs-go/internal/pipeline"
)

// NewCheckCmd creates the check subcommand. It runs the fix pipeline in
// place without writing and fails when any document would change.
func NewCheckCmd(io FixIO, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check <dir>",
		Short:        "Report documents and diagrams that fix would change",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			strict, _ := cmd.Flags().GetBool("strict")

			dir := filepath.Clean(args[0])
			if !io.IsDir(dir) {
				return fmt.Errorf("directory %s does not exist", dir)
			}

			report, err := pipeline.Run(cmd.Context(), io, pipeline.Options{
				Input:   dir,
				Output:  dir,
				DryRun:  true,
				Workers: e.cfg.Workers,
				RunID:   e.runID,
				Fixer:   e.fixer(),
				Logger:  e.log,
			})
			if err != nil {
				return fmt.Errorf("checking %s: %w", dir, err)
			}

			out := cmd.OutOrStdout()
			if jsonMode {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				printFileFindings(out, report.Findings)
				for _, p := range report.Changed {
					fmt.Fprintf(out, "would change: %s\n", sanitizePath(p))
				}
				for _, r := range report.Renamed {
					fmt.Fprintf(out, "would rename: %s -> %s\n", sanitizePath(r.From), sanitizePath(r.To))
				}
			}

			e.log.Debug("check complete",
				zap.String("dir", dir),
				zap.Int("changed", len(report.Changed)),
				zap.Int("findings", len(report.Findings)))

			if len(report.Failed) > 0 {
				printFailures(cmd.ErrOrStderr(), report.Failed)
				return fmt.Errorf("%d document(s) could not be processed", len(report.Failed))
			}
			if len(report.Changed) > 0 {
				return fmt.Errorf("%d document(s) need fixing", len(report.Changed))
			}
			if strict && hasWarning(report.Findings) {
				return fmt.Errorf("diagrams have warnings")
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "output the run report as JSON")
	cmd.Flags().Bool("strict", false, "also fail on diagram warnings")

	return cmd
}

func hasWarning(findings []pipeline.FileFinding) bool {
	for _, f := range findings {
		if f.Severity == mermaid.SeverityWarning {
			return true
		}
	}
	return false
}
