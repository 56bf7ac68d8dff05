package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eykd/fixdocs-go/internal/document"
	"github.com/eykd/fixdocs-go/internal/mermaid"
)

// RenderFunc renders diagram source to a PNG at outPath.
type RenderFunc func(ctx context.Context, source, outPath string) error

// ReplaceDiagrams sanitizes each diagram block of text and replaces it with
// an image reference rendered into imagesDir as <prefix>-diagram-<n>.png.
// A block that fails to render, or every block when render is nil, is kept
// as a plain code block. The returned errors describe failed renders.
func ReplaceDiagrams(ctx context.Context, text, imagesDir, prefix string, render RenderFunc) (string, []error) {
	doc := document.Split(text)
	var out []string
	var errs []error
	n := 0
	for _, seg := range mermaid.Extract(doc.Lines) {
		out = append(out, seg.Prose...)
		if seg.Block == nil {
			continue
		}
		n++
		lines := mermaid.SanitizeBlock(seg.Block.Lines, mermaid.KindAuto)

		if render != nil {
			img := filepath.Join(imagesDir, fmt.Sprintf("%s-diagram-%d.png", prefix, n))
			source := strings.Join(lines, "\n") + "\n"
			err := render(ctx, source, img)
			if err == nil {
				out = append(out, "", fmt.Sprintf("![Diagram %d](%s)", n, img), "")
				continue
			}
			errs = append(errs, fmt.Errorf("diagram %d (%s): %w", n, prefix, err))
		}
		out = append(out, "```")
		out = append(out, lines...)
		out = append(out, "```")
	}
	doc.Lines = out
	return doc.String(), errs
}

// WrapLongLines hard-wraps lines inside fenced code blocks that are longer
// than width runes. LaTeX does not wrap verbatim text.
func WrapLongLines(text string, width int) string {
	if width < 1 {
		return text
	}
	return document.MapLines(text, func(lines []string) []string {
		out := make([]string, 0, len(lines))
		inFence := false
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inFence = !inFence
				out = append(out, line)
				continue
			}
			runes := []rune(line)
			if !inFence || len(runes) <= width {
				out = append(out, line)
				continue
			}
			for len(runes) > width {
				out = append(out, string(runes[:width]))
				runes = runes[width:]
			}
			out = append(out, string(runes))
		}
		return out
	})
}

// dropTitle removes the first heading line when it is the first non-blank
// line, since the title page already shows the project name.
func dropTitle(text string) string {
	doc := document.Split(text)
	for i, line := range doc.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			doc.Lines = doc.Lines[i+1:]
		}
		break
	}
	return doc.String()
}

// latexEscape escapes characters that are special in LaTeX text.
func latexEscape(s string) string {
	return strings.NewReplacer(
		`\`, `\textbackslash{}`,
		`_`, `\_`,
		`&`, `\&`,
		`%`, `\%`,
		`$`, `\$`,
		`#`, `\#`,
		`{`, `\{`,
		`}`, `\}`,
	).Replace(s)
}
