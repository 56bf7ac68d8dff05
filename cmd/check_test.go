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

// undecidedBranch is already normalized but keeps a label that cannot be
// placed, so checking it changes nothing and warns.
const undecidedBranch = "# Flow\n```mermaid\nflowchart TD\n" +
	"    A --> B\n" +
	"    B --> |\"yes\"| C\n" +
	"    C --> D\n" +
	"    C --> E\n" +
	"    D[\"Node D\"]\n" +
	"    E[\"Node E\"]\n" +
	"```\n"

func runCheck(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := NewCheckCmd(newDefaultFileIO(), newEnv())
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestCheckCmd_CleanTreePasses(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"doc.md": "# Doc\n\nplain text\n"})

	out, err := runCheck(t, dir)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestCheckCmd_ReportsPendingChanges(t *testing.T) {
	_, in := newExport(t)

	out, err := runCheck(t, in)
	if err == nil || !strings.Contains(err.Error(), "need fixing") {
		t.Fatalf("expected need fixing error, got %v", err)
	}
	for _, want := range []string{
		"MMD002 info " + filepath.Join(in, "01-intro.md") + ":4",
		"would change: " + filepath.Join(in, "README.md"),
		"would rename: " + filepath.Join(in, "intro.md") + " -> " + filepath.Join(in, "01-intro.md"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := readFile(t, filepath.Join(in, "intro.md")); got != fixtureIntro {
		t.Error("check must not modify files")
	}
	if _, err := os.Stat(filepath.Join(in, "01-intro.md")); !os.IsNotExist(err) {
		t.Error("check must not rename files")
	}
}

func TestCheckCmd_WarningsFailOnlyWhenStrict(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"flow.md": undecidedBranch})

	out, err := runCheck(t, dir)
	if err != nil {
		t.Fatalf("check without --strict: %v", err)
	}
	if !strings.Contains(out, "MMW001 warning") {
		t.Errorf("expected MMW001 in output, got %q", out)
	}

	if _, err := runCheck(t, "--strict", dir); err == nil {
		t.Error("expected --strict to fail on warnings")
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	_, in := newExport(t)

	out, err := runCheck(t, "--json", in)
	if err == nil {
		t.Fatal("expected error for pending changes")
	}
	var report pipeline.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !report.DryRun {
		t.Error("check must report a dry run")
	}
	if len(report.Changed) != 2 {
		t.Errorf("Changed = %v", report.Changed)
	}
}

func TestCheckCmd_MissingDir(t *testing.T) {
	if _, err := runCheck(t, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
