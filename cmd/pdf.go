package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/fixdocs-go/internal/pdf"
)

// PDFIO handles I/O for the pdf command.
type PDFIO interface {
	IsDir(path string) bool
}

// NewPDFCmd creates the pdf subcommand, which renders one PDF per project
// directory of a fixed export.
func NewPDFCmd(io PDFIO, runner pdf.Runner, e *env) *cobra.Command {
	var pdfDir string

	cmd := &cobra.Command{
		Use:          "pdf [output-dir]",
		Short:        "Render each project of a fixed export to PDF with pandoc",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir := e.cfg.OutputDir
			if len(args) == 1 {
				outputDir = args[0]
			}
			outputDir = filepath.Clean(outputDir)
			dest := pdfDir
			if dest == "" {
				dest = e.cfg.PDFDir
			}

			if !io.IsDir(outputDir) {
				return fmt.Errorf("output directory %s does not exist; run fix first", outputDir)
			}

			ctx := cmd.Context()
			exp := pdf.New(e.pdfOptions(), runner, e.log)
			if !exp.PandocAvailable(ctx) {
				return fmt.Errorf("pandoc is not installed or not on PATH")
			}
			errOut := cmd.ErrOrStderr()
			if !exp.MmdcAvailable(ctx) {
				fmt.Fprintln(errOut, "warning: mmdc not found; diagrams will be kept as code blocks")
			}

			summary, err := exp.ConvertAll(ctx, outputDir, dest)
			if err != nil {
				return fmt.Errorf("converting %s: %w", outputDir, err)
			}

			out := cmd.OutOrStdout()
			for _, p := range summary.Created {
				fmt.Fprintf(out, "Created %s\n", sanitizePath(p))
			}
			fmt.Fprintf(out, "%d PDF(s) written to %s\n", len(summary.Created), sanitizePath(dest))

			e.log.Info("pdf export complete",
				zap.String("output_dir", outputDir),
				zap.String("pdf_dir", dest),
				zap.Int("created", len(summary.Created)),
				zap.Int("failed", len(summary.Failed)))

			if len(summary.Failed) > 0 {
				for _, f := range summary.Failed {
					fmt.Fprintf(errOut, "error: %s: %s\n", sanitizePath(f.Project), sanitizePath(f.Err))
				}
				return fmt.Errorf("%d project(s) failed to convert", len(summary.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfDir, "pdf-dir", "", "directory for generated PDFs (default from config)")

	return cmd
}
