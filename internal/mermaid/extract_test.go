package mermaid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/fixdocs-go/internal/mermaid"
)

func TestExtract_SplitsProseAndBlocks(t *testing.T) {
	lines := []string{
		"# Title",
		"```mermaid",
		"flowchart TD",
		"A --> B",
		"```",
		"text",
		"```python",
		"print(1)",
		"```",
		"``` mermaid",
		"sequenceDiagram",
		"```",
		"tail",
	}

	segs := mermaid.Extract(lines)
	require.Len(t, segs, 3)

	assert.Equal(t, []string{"# Title"}, segs[0].Prose)
	require.NotNil(t, segs[0].Block)
	assert.Equal(t, "```mermaid", segs[0].Block.Open)
	assert.Equal(t, []string{"flowchart TD", "A --> B"}, segs[0].Block.Lines)
	assert.True(t, segs[0].Block.Closed)
	assert.Equal(t, 1, segs[0].Block.Start)

	assert.Equal(t, []string{"text", "```python", "print(1)", "```"}, segs[1].Prose)
	require.NotNil(t, segs[1].Block)
	assert.Equal(t, []string{"sequenceDiagram"}, segs[1].Block.Lines)
	assert.Equal(t, 9, segs[1].Block.Start)

	assert.Equal(t, []string{"tail"}, segs[2].Prose)
	assert.Nil(t, segs[2].Block)

	assert.Equal(t, lines, mermaid.Assemble(segs))
}

func TestExtract_UnterminatedBlockIsStillExtracted(t *testing.T) {
	lines := []string{"intro", "```mermaid", "graph LR", "A --> B"}

	segs := mermaid.Extract(lines)
	require.Len(t, segs, 1)
	require.NotNil(t, segs[0].Block)
	assert.False(t, segs[0].Block.Closed)
	assert.Equal(t, []string{"graph LR", "A --> B"}, segs[0].Block.Lines)
	assert.Equal(t, lines, mermaid.Assemble(segs))
}

func TestExtract_NoBlocks(t *testing.T) {
	lines := []string{"a", "b"}
	segs := mermaid.Extract(lines)
	require.Len(t, segs, 1)
	assert.Nil(t, segs[0].Block)
	assert.Equal(t, lines, mermaid.Assemble(segs))
}

func TestExtract_Empty(t *testing.T) {
	assert.Empty(t, mermaid.Extract(nil))
	assert.Equal(t, []string{}, mermaid.Assemble(nil))
}

func TestExtract_EmptyBlock(t *testing.T) {
	segs := mermaid.Extract([]string{"```mermaid", "```"})
	require.Len(t, segs, 1)
	require.NotNil(t, segs[0].Block)
	assert.Empty(t, segs[0].Block.Lines)
	assert.True(t, segs[0].Block.Closed)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  mermaid.Kind
	}{
		{name: "flowchart", lines: []string{"flowchart TD"}, want: mermaid.KindFlowchart},
		{name: "graph keyword", lines: []string{"graph LR"}, want: mermaid.KindFlowchart},
		{name: "leading blank lines skipped", lines: []string{"", "   ", "  sequenceDiagram"}, want: mermaid.KindSequence},
		{name: "class diagram", lines: []string{"classDiagram", "flowchart TD"}, want: mermaid.KindUnknown},
		{name: "only first non-blank line inspected", lines: []string{"%% comment", "flowchart TD"}, want: mermaid.KindUnknown},
		{name: "empty", lines: nil, want: mermaid.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mermaid.Classify(tt.lines))
		})
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]mermaid.Kind{
		"":          mermaid.KindAuto,
		"auto":      mermaid.KindAuto,
		"flowchart": mermaid.KindFlowchart,
		"graph":     mermaid.KindFlowchart,
		"Sequence":  mermaid.KindSequence,
		"unknown":   mermaid.KindUnknown,
	} {
		got, err := mermaid.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := mermaid.ParseKind("gantt")
	assert.Error(t, err)
}
