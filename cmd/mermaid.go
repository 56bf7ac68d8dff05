package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eykd/fixdocs-go/internal/mermaid"
)

// MermaidIO reads the document for the mermaid command.
type MermaidIO interface {
	ReadInput(path string) ([]byte, error)
}

// NewMermaidCmd creates the mermaid subcommand, which sanitizes the diagram
// blocks of a single document and writes the result to stdout.
func NewMermaidCmd(mio MermaidIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mermaid [file|-]",
		Short:        "Sanitize the mermaid blocks of one markdown document",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			quiet, _ := cmd.Flags().GetBool("quiet")

			hint, err := mermaid.ParseKind(kindFlag)
			if err != nil {
				return err
			}

			name := "-"
			if len(args) == 1 {
				name = args[0]
			}

			var data []byte
			if name == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = mio.ReadInput(name)
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", sanitizePath(name), err)
			}

			text, findings := mermaid.SanitizeDocument(string(data), hint)
			if _, err := io.WriteString(cmd.OutOrStdout(), text); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if !quiet {
				for _, f := range findings {
					printFinding(cmd.ErrOrStderr(), name, f)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("kind", "auto", "diagram kind: auto, flowchart, sequence or unknown")
	cmd.Flags().BoolP("quiet", "q", false, "do not report findings on stderr")

	return cmd
}
