package mermaid

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	unsupportedList = "Unsupported markdown: list"
	unsupportedLink = "Unsupported markdown: link"
)

var (
	quotedLabelRE = regexp.MustCompile(`\["(.*?)"\]`)
	lineBreakRE   = regexp.MustCompile(`<br\s*/?>`)
	listMarkerRE  = regexp.MustCompile(`^\s*(?:\d+\.\s+|[-*+]\s+)`)
	mdLinkRE      = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
	bareURLRE     = regexp.MustCompile(`https?://\S+`)

	// lostLabelRE matches a node whose label text was replaced by a placeholder on export.
	lostLabelRE = regexp.MustCompile(`\b([A-Za-z0-9_]+)\[(?:"undefined"|undefined)\]`)
)

// sanitizeLabel returns the replacement text for one quoted node label and the
// finding code describing the change, or "" if nothing changed.
func sanitizeLabel(label string) (string, Code) {
	if containsListMarker(label) {
		return unsupportedList, MMD001
	}
	out := mdLinkRE.ReplaceAllString(label, unsupportedLink)
	out = bareURLRE.ReplaceAllString(out, unsupportedLink)
	if out == label {
		return label, ""
	}
	return out, MMD002
}

// containsListMarker reports whether any <br>-separated segment of label starts
// like a markdown list item.
func containsListMarker(label string) bool {
	for _, part := range lineBreakRE.Split(label, -1) {
		if listMarkerRE.MatchString(strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

// sanitizeNodeLabels rewrites every quoted bracket label in lines.
func sanitizeNodeLabels(lines []string) ([]string, []Finding) {
	var findings []Finding
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = quotedLabelRE.ReplaceAllStringFunc(line, func(m string) string {
			label := quotedLabelRE.FindStringSubmatch(m)[1]
			replaced, code := sanitizeLabel(label)
			switch code {
			case MMD001:
				findings = append(findings, info(code, i+1, fmt.Sprintf("list in node label %q replaced", label)))
			case MMD002:
				findings = append(findings, info(code, i+1, fmt.Sprintf("link in node label %q replaced", label)))
			}
			return `["` + replaced + `"]`
		})
	}
	return out, findings
}

// repairLostLabels gives nodes exported with a placeholder label their own
// identifier as label.
func repairLostLabels(lines []string) ([]string, []Finding) {
	var findings []Finding
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = lostLabelRE.ReplaceAllStringFunc(line, func(m string) string {
			id := lostLabelRE.FindStringSubmatch(m)[1]
			findings = append(findings, info(MMD003, i+1, fmt.Sprintf("node %s had a lost label; using its identifier", id)))
			return id + `["` + id + `"]`
		})
	}
	return out, findings
}
