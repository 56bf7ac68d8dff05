package mermaid

import "strings"

const (
	fenceMarker = "```"
	languageTag = "mermaid"
)

// Block is one fenced diagram block as found in a document.
type Block struct {
	Open   string   // opening fence line, verbatim
	Lines  []string // lines between the fences
	Close  string   // closing fence line, verbatim; empty when !Closed
	Closed bool     // false if the document ended inside the block
	Start  int      // 0-based index of the opening fence line in the document
}

// Segment is a run of prose lines followed by at most one diagram block.
// Only the final segment of a document may have a nil Block.
type Segment struct {
	Prose []string
	Block *Block
}

// Extract splits document lines into prose and diagram blocks. A block opens
// on a line starting with the fence marker and mentioning the mermaid tag,
// and closes on the next line starting with the fence marker. A block still
// open at end of input is returned with Closed set to false.
func Extract(lines []string) []Segment {
	var segments []Segment
	var prose []string
	var block *Block

	for i, line := range lines {
		if block == nil {
			if isDiagramFence(line) {
				block = &Block{Open: line, Lines: []string{}, Start: i}
				continue
			}
			prose = append(prose, line)
			continue
		}
		if strings.HasPrefix(line, fenceMarker) {
			block.Close, block.Closed = line, true
			segments = append(segments, Segment{Prose: prose, Block: block})
			prose, block = nil, nil
			continue
		}
		block.Lines = append(block.Lines, line)
	}

	if block != nil {
		segments = append(segments, Segment{Prose: prose, Block: block})
	} else if len(prose) > 0 {
		segments = append(segments, Segment{Prose: prose})
	}
	return segments
}

// Assemble is the inverse of Extract.
func Assemble(segments []Segment) []string {
	var out []string
	for _, seg := range segments {
		out = append(out, seg.Prose...)
		if seg.Block == nil {
			continue
		}
		out = append(out, seg.Block.Open)
		out = append(out, seg.Block.Lines...)
		if seg.Block.Closed {
			out = append(out, seg.Block.Close)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func isDiagramFence(line string) bool {
	return strings.HasPrefix(line, fenceMarker) && strings.Contains(line, languageTag)
}
