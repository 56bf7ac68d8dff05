// Package cmd implements the fixdocs CLI commands.
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eykd/fixdocs-go/internal/config"
	"github.com/eykd/fixdocs-go/internal/pdf"
	"github.com/eykd/fixdocs-go/internal/textfix"
)

// env carries the settings every subcommand shares. The root command fills
// it in before a subcommand runs; subcommands built on their own see the
// defaults.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	runID string
}

func newEnv() *env {
	return &env{cfg: config.DefaultConfig(), log: zap.NewNop()}
}

// setup loads the .env file and the config, then builds the logger.
func (e *env) setup(configPath, envFile string, verbose bool) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	logCfg := zap.NewProductionConfig()
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating run id: %w", err)
	}
	e.cfg = cfg
	e.runID = id.String()
	e.log = logger.With(zap.String("run_id", e.runID))
	return nil
}

func (e *env) fixer() *textfix.Fixer {
	return textfix.New(textfix.Options{
		GitHubBase:     e.cfg.GitHubBase,
		SectionAnchors: e.cfg.SectionAnchors,
		Inline:         e.cfg.Boilerplate.Inline,
		LinePrefixes:   e.cfg.Boilerplate.LinePrefixes,
		ReflowTables:   e.cfg.ReflowTables,
	})
}

func (e *env) pdfOptions() pdf.Options {
	p := e.cfg.PDF
	return pdf.Options{
		Engine:    p.Engine,
		MainFont:  p.MainFont,
		MonoFont:  p.MonoFont,
		FontSize:  p.FontSize,
		Margin:    p.Margin,
		TOCDepth:  p.TOCDepth,
		WrapWidth: p.WrapWidth,
		Pandoc:    p.Pandoc,
		Mmdc:      p.Mmdc,
	}
}

// NewRootCmd creates the root fixdocs command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	e := newEnv()
	var (
		configPath string
		envFile    string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "fixdocs",
		Short:         "fixdocs - normalize exported wiki markdown and its diagrams",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return e.setup(configPath, envFile, verbose)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = e.log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before the config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	io := newDefaultFileIO()
	root.AddCommand(NewFixCmd(io, e))
	root.AddCommand(NewCheckCmd(io, e))
	root.AddCommand(NewMermaidCmd(io))
	root.AddCommand(NewPDFCmd(io, pdf.ExecRunner{}, e))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
