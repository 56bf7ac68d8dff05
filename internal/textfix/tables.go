package textfix

import (
	"regexp"
	"strings"

	"github.com/eykd/fixdocs-go/internal/document"
)

var tableSeparatorRE = regexp.MustCompile(`^\|?(\s*:?-+:?\s*\|)*\s*:?-+:?\s*\|?$`)

// ReflowTables renders markdown table rows outside code fences with single
// spaces around each cell. Separator rows are left as they are.
func ReflowTables(text string) string {
	return document.MapLines(text, func(lines []string) []string {
		inFence := false
		out := make([]string, len(lines))
		for i, line := range lines {
			out[i] = line
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "```") {
				inFence = !inFence
				continue
			}
			if inFence || !isTableRow(trimmed) || tableSeparatorRE.MatchString(trimmed) {
				continue
			}
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out[i] = indent + renderRow(splitCells(trimmed))
		}
		return out
	})
}

func isTableRow(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "|") && strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`)
}

// splitCells splits a row on unescaped pipes, dropping the outer ones.
func splitCells(row string) []string {
	row = row[1 : len(row)-1]
	var cells []string
	var cell strings.Builder
	for i := 0; i < len(row); i++ {
		switch {
		case row[i] == '\\' && i+1 < len(row) && row[i+1] == '|':
			cell.WriteString(`\|`)
			i++
		case row[i] == '|':
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteByte(row[i])
		}
	}
	return append(cells, cell.String())
}

func renderRow(cells []string) string {
	var b strings.Builder
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.Join(strings.Fields(c), " "))
		b.WriteString(" |")
	}
	return b.String()
}
