package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eykd/fixdocs-go/internal/pipeline"
)

const (
	fixtureReadme = "# Proj\n- [Intro](intro.md)\n"
	fixtureIntro  = "# Intro\n```mermaid\nflowchart TD\nA[\"https://x.y\"]\n```\n"
	fixedIntro    = "# Intro\n```mermaid\nflowchart TD\nA[\"Unsupported markdown: link\"]\n```\n"
)

// writeTree creates files below root from a map of relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("reading %s: %v", p, err)
	}
	return string(data)
}

// newExport returns a temp dir holding an exported project under in/.
func newExport(t *testing.T) (dir, in string) {
	t.Helper()
	dir = t.TempDir()
	in = filepath.Join(dir, "in")
	writeTree(t, in, map[string]string{
		"README.md": fixtureReadme,
		"intro.md":  fixtureIntro,
		"img.png":   "PNG",
	})
	return dir, in
}

func runFix(t *testing.T, e *env, args ...string) (string, string, error) {
	t.Helper()
	c := NewFixCmd(newDefaultFileIO(), e)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), errOut.String(), err
}

func TestFixCmd_WritesFixedTree(t *testing.T) {
	dir, in := newExport(t)
	out := filepath.Join(dir, "out")

	stdout, _, err := runFix(t, newEnv(), in, out)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(stdout, "Fixed 2 file(s), renamed 1, copied 1") {
		t.Errorf("unexpected summary: %q", stdout)
	}
	if got := readFile(t, filepath.Join(out, "README.md")); got != "# Proj\n- [Intro](01-intro.md)\n" {
		t.Errorf("README = %q", got)
	}
	if got := readFile(t, filepath.Join(out, "01-intro.md")); got != fixedIntro {
		t.Errorf("01-intro.md = %q", got)
	}
	if got := readFile(t, filepath.Join(out, "img.png")); got != "PNG" {
		t.Errorf("img.png = %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "intro.md")); !os.IsNotExist(err) {
		t.Error("expected intro.md to be renamed away")
	}
	if got := readFile(t, filepath.Join(in, "intro.md")); got != fixtureIntro {
		t.Error("input tree must not be modified")
	}
}

func TestFixCmd_DefaultsOutputDirFromConfig(t *testing.T) {
	dir, in := newExport(t)
	e := newEnv()
	e.cfg.OutputDir = filepath.Join(dir, "site")

	if _, _, err := runFix(t, e, in); err != nil {
		t.Fatalf("fix: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "site", "01-intro.md")); err != nil {
		t.Errorf("expected output under configured output_dir: %v", err)
	}
}

func TestFixCmd_InPlace(t *testing.T) {
	_, in := newExport(t)

	if _, _, err := runFix(t, newEnv(), "--in-place", in); err != nil {
		t.Fatalf("fix: %v", err)
	}
	if got := readFile(t, filepath.Join(in, "01-intro.md")); got != fixedIntro {
		t.Errorf("01-intro.md = %q", got)
	}
}

func TestFixCmd_DryRunListsChangesAndWritesNothing(t *testing.T) {
	dir, in := newExport(t)
	out := filepath.Join(dir, "out")

	stdout, _, err := runFix(t, newEnv(), "--dry-run", in, out)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	want := filepath.Join(out, "01-intro.md") + "\n" + filepath.Join(out, "README.md") + "\n"
	if stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("dry run must not create the output directory")
	}
}

func TestFixCmd_DiffPrintsUnifiedDiff(t *testing.T) {
	dir, in := newExport(t)
	out := filepath.Join(dir, "out")

	stdout, _, err := runFix(t, newEnv(), "--diff", in, out)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	for _, want := range []string{
		"+++ " + filepath.Join(out, "README.md"),
		"-- [Intro](intro.md)",
		"+- [Intro](01-intro.md)",
		`+A["Unsupported markdown: link"]`,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("diff missing %q:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("--diff must not write output")
	}
}

func TestFixCmd_JSONReport(t *testing.T) {
	dir, in := newExport(t)
	e := newEnv()
	e.runID = "run-42"

	stdout, _, err := runFix(t, e, "--json", in, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	var report pipeline.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if report.RunID != "run-42" {
		t.Errorf("RunID = %q", report.RunID)
	}
	if len(report.Changed) != 2 || len(report.Renamed) != 1 || report.Copied != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Findings) != 1 || report.Findings[0].Path != filepath.Join(dir, "out", "01-intro.md") {
		t.Errorf("unexpected findings: %+v", report.Findings)
	}
}

func TestFixCmd_MissingInputDir(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runFix(t, newEnv(), filepath.Join(dir, "nope"), filepath.Join(dir, "out"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing directory error, got %v", err)
	}
}

func TestFixCmd_RejectsTooManyArgs(t *testing.T) {
	if _, _, err := runFix(t, newEnv(), "a", "b", "c"); err == nil {
		t.Error("expected error for three arguments")
	}
}

func TestFixCmd_ReportsUnreadableDocument(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir, in := newExport(t)
	locked := filepath.Join(in, "locked.md")
	writeTree(t, in, map[string]string{"locked.md": "# Locked\n"})
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	_, stderr, err := runFix(t, newEnv(), in, filepath.Join(dir, "out"))
	if err == nil {
		t.Fatal("expected error for unreadable document")
	}
	if !strings.Contains(stderr, "error: "+locked) {
		t.Errorf("expected failure on stderr, got %q", stderr)
	}
}
