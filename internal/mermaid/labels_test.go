package mermaid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/fixdocs-go/internal/mermaid"
)

func TestSanitize_NodeLabels(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		want     string
		wantCode mermaid.Code
	}{
		{
			name:     "numbered list across line breaks replaced wholesale",
			line:     `    A["1. do X<br>2. do Y"]`,
			want:     `    A["Unsupported markdown: list"]`,
			wantCode: mermaid.MMD001,
		},
		{
			name:     "bullet in later segment",
			line:     `A["Steps<br/>* first"]`,
			want:     `A["Unsupported markdown: list"]`,
			wantCode: mermaid.MMD001,
		},
		{
			name:     "dash bullet",
			line:     `A["- only item"] --> B`,
			want:     `A["Unsupported markdown: list"] --> B`,
			wantCode: mermaid.MMD001,
		},
		{
			name:     "markdown link",
			line:     `A["see [docs](https://example.com/a)"]`,
			want:     `A["see Unsupported markdown: link"]`,
			wantCode: mermaid.MMD002,
		},
		{
			name:     "bare URL keeps surrounding text",
			line:     `A["visit https://example.com/path now"]`,
			want:     `A["visit Unsupported markdown: link now"]`,
			wantCode: mermaid.MMD002,
		},
		{
			name:     "two labels on one line handled independently",
			line:     `A["http://a.io"] --> B["fine"]`,
			want:     `A["Unsupported markdown: link"] --> B["fine"]`,
			wantCode: mermaid.MMD002,
		},
		{
			name: "decimal number is not a list",
			line: `A["3.5 retries"]`,
			want: `A["3.5 retries"]`,
		},
		{
			name: "plain label untouched",
			line: `A["Load config"]`,
			want: `A["Load config"]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mermaid.Sanitize([]string{tt.line}, mermaid.KindUnknown)
			require.Len(t, res.Lines, 1)
			assert.Equal(t, tt.want, res.Lines[0])
			if tt.wantCode == "" {
				assert.Empty(t, res.Findings)
				return
			}
			require.NotEmpty(t, res.Findings)
			assert.Equal(t, tt.wantCode, res.Findings[0].Code)
			assert.Equal(t, 1, res.Findings[0].Line)
		})
	}
}

func TestSanitize_LinkLabelsLeaveNoLinkSyntax(t *testing.T) {
	labels := []string{
		"[a](b)",
		"x [one](http://1) y [two](./two.md) z",
		"https://a.b/c?d=e and http://f.g",
		"prefix [text](https://host/p) https://other",
	}
	for _, label := range labels {
		line := `N["` + label + `"]`
		got := mermaid.SanitizeBlock([]string{line}, mermaid.KindUnknown)[0]
		assert.NotRegexp(t, `\[[^\]]+\]\([^)]+\)`, got, label)
		assert.NotRegexp(t, `https?://`, got, label)
	}
}

func TestSanitize_RepairsLostLabels(t *testing.T) {
	lines := []string{
		"flowchart TD",
		`    X["undefined"] --> Y`,
		"    Z[undefined]",
		`    W["undefinedish"]`,
	}
	res := mermaid.Sanitize(lines, mermaid.KindAuto)

	assert.Equal(t, []string{
		"flowchart TD",
		`    X["X"] --> Y`,
		`    Z["Z"]`,
		`    W["undefinedish"]`,
	}, res.Lines)

	var codes []mermaid.Code
	for _, f := range res.Findings {
		codes = append(codes, f.Code)
	}
	assert.Equal(t, []mermaid.Code{mermaid.MMD003, mermaid.MMD003}, codes)
}

func TestSanitize_UnknownKindOnlyGetsLabelFixes(t *testing.T) {
	lines := []string{
		"stateDiagram-v2",
		`    A -->|"yes"|B`,
		`    S["https://x.y"]`,
	}
	res := mermaid.Sanitize(lines, mermaid.KindAuto)
	assert.Equal(t, mermaid.KindUnknown, res.Kind)
	assert.Equal(t, `    A -->|"yes"|B`, res.Lines[1], "edge lines are not normalized outside flowcharts")
	assert.Equal(t, `    S["Unsupported markdown: link"]`, res.Lines[2])
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	lines := []string{"flowchart TD", `A["http://x"]`, `B-->C`}
	orig := append([]string(nil), lines...)
	_ = mermaid.Sanitize(lines, mermaid.KindAuto)
	assert.Equal(t, orig, lines)
}
