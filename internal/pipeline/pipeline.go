// Package pipeline applies the text fixes to a directory tree of exported
// documents and numbers README-indexed pages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eykd/fixdocs-go/internal/mermaid"
	"github.com/eykd/fixdocs-go/internal/ordinal"
	"github.com/eykd/fixdocs-go/internal/textfix"
)

// Files is the file access Run needs.
type Files interface {
	ordinal.FS
	// ListFiles returns every regular file below root, in lexical order.
	ListFiles(root string) ([]string, error)
	// CopyFile copies src to dst, creating dst's parent directory.
	CopyFile(src, dst string) error
}

// Options configures Run.
type Options struct {
	Input   string
	Output  string // equal to Input for in-place runs
	DryRun  bool
	Workers int
	RunID   string
	Fixer   *textfix.Fixer
	Logger  *zap.Logger
}

// Failure is a document that could not be processed.
type Failure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// FileFinding is a diagram finding located in an output document.
type FileFinding struct {
	Path string `json:"path"`
	mermaid.Finding
}

// FileDiff holds the input and final text of a changed document.
type FileDiff struct {
	Path     string
	Original string
	Updated  string
}

// Report summarizes a run.
type Report struct {
	RunID    string           `json:"run_id"`
	DryRun   bool             `json:"dry_run"`
	Changed  []string         `json:"changed"`
	Renamed  []ordinal.Rename `json:"renamed,omitempty"`
	Copied   int              `json:"copied"`
	Failed   []Failure        `json:"failed,omitempty"`
	Findings []FileFinding    `json:"findings,omitempty"`
	Diffs    []FileDiff       `json:"-"`
}

type docState struct {
	FileDiff
	renamed bool
}

// Run processes every file below opts.Input into opts.Output. Markdown files
// are fixed, other files copied, and files whose name starts with "." are
// skipped. In dry-run mode nothing is written and the report describes what
// would change. Per-document failures are recorded in the report; the error
// is reserved for failures that stop the whole run.
func Run(ctx context.Context, files Files, opts Options) (*Report, error) {
	if opts.Fixer == nil {
		return nil, errors.New("pipeline: no fixer configured")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	fsys := files
	if opts.DryRun {
		fsys = newPlanFS(files)
	}

	paths, err := files.ListFiles(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", opts.Input, err)
	}

	report := &Report{RunID: opts.RunID, DryRun: opts.DryRun}
	docs := make(map[string]*docState)
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, src := range paths {
		src := src // per-iteration copy for the goroutines below (go < 1.22 loop semantics)
		if gCtx.Err() != nil {
			break
		}
		rel, skip := relPath(opts, src)
		if skip {
			continue
		}
		dst := filepath.Join(opts.Output, rel)

		if !isMarkdown(src) {
			if opts.DryRun {
				continue
			}
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				err := files.CopyFile(src, dst)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failed = append(report.Failed, Failure{Path: src, Err: err.Error()})
					return nil
				}
				report.Copied++
				return nil
			})
			continue
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			doc, findings, err := fixDocument(fsys, opts.Fixer, src, dst)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("document failed", zap.String("path", src), zap.Error(err))
				report.Failed = append(report.Failed, Failure{Path: src, Err: err.Error()})
				return nil
			}
			log.Debug("document processed",
				zap.String("path", dst),
				zap.Bool("changed", doc.Original != doc.Updated),
				zap.Int("findings", len(findings)))
			docs[dst] = doc
			for _, f := range findings {
				logFinding(log, dst, f)
				report.Findings = append(report.Findings, FileFinding{Path: dst, Finding: f})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extra, err := numberPages(fsys, opts, docs, report)
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		if d.renamed || d.Original != d.Updated {
			report.Changed = append(report.Changed, d.Path)
			report.Diffs = append(report.Diffs, d.FileDiff)
		}
	}
	report.Changed = append(report.Changed, extra...)

	sort.Strings(report.Changed)
	sort.Slice(report.Diffs, func(i, j int) bool { return report.Diffs[i].Path < report.Diffs[j].Path })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Path < report.Failed[j].Path })
	sort.SliceStable(report.Findings, func(i, j int) bool {
		if report.Findings[i].Path != report.Findings[j].Path {
			return report.Findings[i].Path < report.Findings[j].Path
		}
		return report.Findings[i].Line < report.Findings[j].Line
	})

	log.Debug("run complete",
		zap.String("run_id", opts.RunID),
		zap.Int("changed", len(report.Changed)),
		zap.Int("renamed", len(report.Renamed)),
		zap.Int("copied", report.Copied),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

func logFinding(log *zap.Logger, path string, f mermaid.Finding) {
	fields := []zap.Field{
		zap.String("path", path),
		zap.String("code", string(f.Code)),
		zap.Int("line", f.Line),
	}
	if f.Severity == mermaid.SeverityWarning {
		log.Warn(f.Message, fields...)
		return
	}
	log.Debug(f.Message, fields...)
}

func fixDocument(fsys Files, fixer *textfix.Fixer, src, dst string) (*docState, []mermaid.Finding, error) {
	original, err := fsys.ReadFile(src)
	if err != nil {
		return nil, nil, fmt.Errorf("reading: %w", err)
	}
	updated, findings := fixer.Process(original)
	if err := fsys.WriteFile(dst, updated); err != nil {
		return nil, nil, fmt.Errorf("writing %s: %w", dst, err)
	}
	return &docState{FileDiff: FileDiff{Path: dst, Original: original, Updated: updated}}, findings, nil
}

// numberPages runs the ordinal pass for every directory below the output
// root holding a README, updating docs in place. It returns rewritten paths
// that did not come from the input tree.
func numberPages(fsys Files, opts Options, docs map[string]*docState, report *Report) ([]string, error) {
	mdFiles, err := fsys.MarkdownFiles(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", opts.Output, err)
	}
	var dirs []string
	for _, p := range mdFiles {
		if filepath.Base(p) == ordinal.ReadmeName {
			dirs = append(dirs, filepath.Dir(p))
		}
	}
	sort.Strings(dirs)

	var extra []string
	for _, dir := range dirs {
		res, err := ordinal.Apply(dir, fsys, opts.Fixer.Clean)
		if err != nil {
			return nil, fmt.Errorf("numbering pages in %s: %w", dir, err)
		}
		for _, p := range res.Rewritten {
			d, ok := docs[p]
			if !ok {
				if !slices.Contains(extra, p) {
					extra = append(extra, p)
				}
				continue
			}
			text, err := fsys.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", p, err)
			}
			d.Updated = text
		}
		for _, r := range res.Renamed {
			report.Renamed = append(report.Renamed, r)
			if d, ok := docs[r.From]; ok {
				delete(docs, r.From)
				d.Path, d.renamed = r.To, true
				docs[r.To] = d
			}
			for i := range report.Findings {
				if report.Findings[i].Path == r.From {
					report.Findings[i].Path = r.To
				}
			}
		}
	}
	return extra, nil
}

// relPath returns src relative to the input root, or skip for dotfiles and
// files inside a distinct output directory nested in the input.
func relPath(opts Options, src string) (string, bool) {
	if strings.HasPrefix(filepath.Base(src), ".") {
		return "", true
	}
	if opts.Output != opts.Input && within(opts.Output, src) {
		return "", true
	}
	rel, err := filepath.Rel(opts.Input, src)
	if err != nil {
		return "", true
	}
	return rel, false
}

func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isMarkdown(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".md")
}
