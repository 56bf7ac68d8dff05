// Package document splits markdown text into lines and joins them back.
package document

import "strings"

// Doc is a document held as lines without their terminators.
type Doc struct {
	Lines []string
	// TrailingNewline is true if the source ended with a line terminator.
	TrailingNewline bool
}

// Split splits text on "\n", "\r\n" or a bare "\r".
// A trailing terminator does not produce an extra empty line.
func Split(text string) Doc {
	if text == "" {
		return Doc{Lines: []string{}}
	}

	var lines []string
	start := 0
	for i := 0; i < len(text); {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			i++
			start = i
		case '\r':
			lines = append(lines, text[start:i])
			i++
			if i < len(text) && text[i] == '\n' {
				i++
			}
			start = i
		default:
			i++
		}
	}

	doc := Doc{TrailingNewline: start == len(text)}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	doc.Lines = lines
	return doc
}

// String joins the lines with "\n", restoring the trailing newline.
func (d Doc) String() string {
	out := strings.Join(d.Lines, "\n")
	if d.TrailingNewline {
		out += "\n"
	}
	return out
}

// MapLines applies fn to the lines of text and rejoins them. Line endings
// are normalized to "\n".
func MapLines(text string, fn func([]string) []string) string {
	doc := Split(text)
	doc.Lines = fn(doc.Lines)
	return doc.String()
}
