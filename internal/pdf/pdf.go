// Package pdf converts fixed documentation projects to one PDF each with
// pandoc, rendering diagrams to images with mermaid-cli when it is installed.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const sectionSeparator = "\n\n---\n\n"

// Options configures pandoc and mermaid-cli.
type Options struct {
	Engine    string
	MainFont  string
	MonoFont  string
	FontSize  string
	Margin    string
	TOCDepth  int
	WrapWidth int
	Pandoc    string
	Mmdc      string
}

// Failure is a project that could not be converted.
type Failure struct {
	Project string `json:"project"`
	Err     string `json:"error"`
}

// Summary lists the outcome of ConvertAll.
type Summary struct {
	Created []string  `json:"created"`
	Failed  []Failure `json:"failed,omitempty"`
}

// Exporter converts project directories to PDF.
type Exporter struct {
	opts   Options
	runner Runner
	log    *zap.Logger

	mmdcOnce sync.Once
	hasMmdc  bool
}

// New returns an Exporter. A nil logger discards output.
func New(opts Options, runner Runner, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{opts: opts, runner: runner, log: log}
}

// PandocAvailable reports whether the configured pandoc runs.
func (e *Exporter) PandocAvailable(ctx context.Context) bool {
	return Available(ctx, e.runner, e.opts.Pandoc)
}

// MmdcAvailable reports whether the configured mermaid-cli runs. The probe
// runs once per Exporter.
func (e *Exporter) MmdcAvailable(ctx context.Context) bool {
	e.mmdcOnce.Do(func() {
		e.hasMmdc = Available(ctx, e.runner, e.opts.Mmdc)
	})
	return e.hasMmdc
}

// RenderDiagram renders diagram source to a PNG with mermaid-cli.
func (e *Exporter) RenderDiagram(ctx context.Context, source, outPath string) error {
	dir, err := os.MkdirTemp("", "fixdocs-mmd-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "diagram.mmd")
	if err := os.WriteFile(input, []byte(source), 0o600); err != nil {
		return err
	}
	_, stderr, err := e.runner.Run(ctx, e.opts.Mmdc, "-i", input, "-o", outPath, "-b", "white", "-t", "default")
	if err != nil {
		return toolError(e.opts.Mmdc, stderr, err)
	}
	return nil
}

// Consolidate joins the project's README (without its title) and its other
// markdown files, in name order, into one document. Diagrams are rendered
// into imagesDir when mermaid-cli is available.
func (e *Exporter) Consolidate(ctx context.Context, projectDir, imagesDir string) (string, error) {
	var render RenderFunc
	if e.MmdcAvailable(ctx) {
		render = e.RenderDiagram
	}

	var b strings.Builder
	add := func(text, prefix string) {
		out, errs := ReplaceDiagrams(ctx, text, imagesDir, prefix, render)
		for _, err := range errs {
			e.log.Warn("diagram kept as code", zap.String("project", projectDir), zap.Error(err))
		}
		b.WriteString(out)
		b.WriteString(sectionSeparator)
	}

	readme, err := os.ReadFile(filepath.Join(projectDir, "README.md"))
	switch {
	case err == nil:
		add(dropTitle(string(readme)), "readme")
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	files, err := sectionFiles(projectDir)
	if err != nil {
		return "", err
	}
	for i, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		add(string(content), fmt.Sprintf("sec%d-%s", i+1, stem))
	}
	return b.String(), nil
}

// Convert writes <pdfDir>/<project>.pdf for projectDir and returns its path.
func (e *Exporter) Convert(ctx context.Context, projectDir, pdfDir string) (string, error) {
	name := filepath.Base(filepath.Clean(projectDir))
	tmp, err := os.MkdirTemp("", "fixdocs-pdf-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	consolidated, err := e.Consolidate(ctx, projectDir, tmp)
	if err != nil {
		return "", fmt.Errorf("consolidating %s: %w", name, err)
	}
	consolidated = WrapLongLines(consolidated, e.opts.WrapWidth)

	mdPath := filepath.Join(tmp, "consolidated.md")
	if err := os.WriteFile(mdPath, []byte(consolidated), 0o600); err != nil {
		return "", err
	}
	titlePath := filepath.Join(tmp, "title.tex")
	if err := os.WriteFile(titlePath, []byte(titlePage(name)), 0o600); err != nil {
		return "", err
	}

	pdfPath := filepath.Join(pdfDir, name+".pdf")
	_, stderr, err := e.runner.Run(ctx, e.opts.Pandoc, e.pandocArgs(mdPath, pdfPath, titlePath)...)
	if err != nil {
		return "", toolError(e.opts.Pandoc, stderr, err)
	}
	return pdfPath, nil
}

func (e *Exporter) pandocArgs(mdPath, pdfPath, titlePath string) []string {
	return []string{
		mdPath,
		"-o", pdfPath,
		"--pdf-engine=" + e.opts.Engine,
		"-V", "geometry:margin=" + e.opts.Margin,
		"-V", "mainfont:" + e.opts.MainFont,
		"-V", "monofont:" + e.opts.MonoFont,
		"-V", "fontsize=" + e.opts.FontSize,
		"-B", titlePath,
		"--toc",
		"--toc-depth=" + strconv.Itoa(e.opts.TOCDepth),
		"-f", "markdown+emoji",
	}
}

// ConvertAll converts every immediate subdirectory of outputDir that holds
// markdown files. A failed project is recorded and does not stop the others.
func (e *Exporter) ConvertAll(ctx context.Context, outputDir, pdfDir string) (*Summary, error) {
	if err := os.MkdirAll(pdfDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", pdfDir, err)
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", outputDir, err)
	}

	summary := &Summary{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !entry.IsDir() {
			continue
		}
		project := filepath.Join(outputDir, entry.Name())
		if !hasMarkdown(project) {
			continue
		}

		e.log.Info("converting project", zap.String("project", entry.Name()))
		pdfPath, err := e.Convert(ctx, project, pdfDir)
		if err != nil {
			e.log.Error("conversion failed", zap.String("project", entry.Name()), zap.Error(err))
			summary.Failed = append(summary.Failed, Failure{Project: entry.Name(), Err: err.Error()})
			continue
		}
		e.log.Info("created pdf", zap.String("path", pdfPath))
		summary.Created = append(summary.Created, pdfPath)
	}
	return summary, nil
}

// sectionFiles lists the markdown files of dir other than README.md, by name.
func sectionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == "README.md" || !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func hasMarkdown(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			return true
		}
	}
	return false
}

func titlePage(project string) string {
	return `\begin{titlepage}
\centering
\vspace*{3cm}
{\fontsize{32}{40}\selectfont\bfseries ` + latexEscape(project) + ` \par}
\vfill
\end{titlepage}
`
}

func toolError(tool string, stderr []byte, err error) error {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return fmt.Errorf("%s failed: %s: %w", tool, msg, err)
	}
	return fmt.Errorf("%s failed: %w", tool, err)
}
