// Package mermaid sanitizes mermaid diagrams embedded in markdown so that
// renderers accept them.
//
// Every block gets its quoted node labels neutralized (lists and links are
// replaced with fixed text) and nodes with a lost label repaired. Flowcharts
// additionally get misplaced branch labels (yes/no/true/false) moved onto the
// decision edge they belong to; sequence diagrams get safe aliases for
// participant names containing spaces or hyphens.
//
// Sanitizing never fails. Lines the package does not understand pass through
// unchanged, and every transform is idempotent.
package mermaid

import (
	"sort"

	"github.com/eykd/fixdocs-go/internal/document"
)

// Result is the outcome of sanitizing one diagram block.
type Result struct {
	Lines    []string
	Kind     Kind
	Findings []Finding // Line is relative to the block, 1-based
}

// Sanitize rewrites the lines of one diagram block (the content between the
// fences). A hint other than KindAuto overrides classification.
func Sanitize(lines []string, hint Kind) Result {
	kind := hint
	if kind == KindAuto {
		kind = Classify(lines)
	}

	out, findings := sanitizeNodeLabels(lines)
	out, repaired := repairLostLabels(out)
	findings = append(findings, repaired...)

	var extra []Finding
	switch kind {
	case KindFlowchart:
		out, extra = migrateBranchLabels(out)
	case KindSequence:
		out, extra = aliasParticipants(out)
	}
	findings = append(findings, extra...)

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Line < findings[j].Line
	})
	return Result{Lines: out, Kind: kind, Findings: findings}
}

// SanitizeBlock is Sanitize without the findings.
func SanitizeBlock(lines []string, hint Kind) []string {
	return Sanitize(lines, hint).Lines
}

// SanitizeDocument sanitizes every mermaid block of a markdown document and
// returns the new text with findings numbered by document line. Line endings
// are normalized to "\n".
func SanitizeDocument(text string, hint Kind) (string, []Finding) {
	doc := document.Split(text)
	segments := Extract(doc.Lines)

	var findings []Finding
	for _, seg := range segments {
		b := seg.Block
		if b == nil {
			continue
		}
		res := Sanitize(b.Lines, hint)
		b.Lines = res.Lines
		for _, f := range res.Findings {
			f.Line += b.Start + 1
			findings = append(findings, f)
		}
		if !b.Closed {
			findings = append(findings, warn(MMW003, b.Start+1, "diagram fence not closed before end of document"))
		}
	}

	doc.Lines = Assemble(segments)
	return doc.String(), findings
}
