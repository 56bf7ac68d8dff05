package mermaid

import (
	"fmt"
	"strings"
)

// Kind is the diagram type of a block.
type Kind string

const (
	// KindAuto asks Sanitize to classify the block itself.
	KindAuto      Kind = ""
	KindFlowchart Kind = "flowchart"
	KindSequence  Kind = "sequence"
	KindUnknown   Kind = "unknown"
)

var (
	flowchartKeywords = []string{"flowchart", "graph"}
	sequenceKeywords  = []string{"sequenceDiagram"}
)

// Classify returns the kind of a block by looking at its first non-blank line only.
func Classify(lines []string) Kind {
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		switch {
		case hasAnyPrefix(stripped, flowchartKeywords):
			return KindFlowchart
		case hasAnyPrefix(stripped, sequenceKeywords):
			return KindSequence
		}
		return KindUnknown
	}
	return KindUnknown
}

// ParseKind converts a user-supplied kind name. The empty string and "auto"
// map to KindAuto.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "flowchart", "graph":
		return KindFlowchart, nil
	case "sequence", "sequencediagram":
		return KindSequence, nil
	case "unknown":
		return KindUnknown, nil
	}
	return KindAuto, fmt.Errorf("unknown diagram kind %q (want flowchart, sequence, unknown or auto)", s)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
