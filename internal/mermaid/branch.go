package mermaid

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	edgeRE     = regexp.MustCompile(`^(\s*)([A-Za-z0-9_]+)\s*([-.=]+>)\s*(?:\|"([^"]*)"\|\s*)?([A-Za-z0-9_]+)\s*$`)
	nodeDeclRE = regexp.MustCompile(`([A-Za-z0-9_]+)\["(.*?)"\]`)
)

var (
	branchTokens  = []string{"yes", "no", "true", "false"}
	positiveHints = []string{"add", "use", "enable", "create", "remove", "success", "ready", "connected", "established", "proceed", "continue"}
	negativeHints = []string{"fail", "error", "invalid", "reject", "timeout", "blocked", "missing", "not", "false", "empty", "return", "skip", "default"}
)

// Edge is one parsed flowchart connection statement.
type Edge struct {
	Line    int    // index of the edge's line within the block
	Indent  string // leading whitespace, kept verbatim
	Source  string
	Arrow   string // "-->", "-.->", "==>", ...
	Label   string
	Labeled bool // false when the edge has no |"..."| label at all
	Target  string
}

// ParseEdge parses a single flowchart line of the form
// `A --> B` or `A -->|"label"| B`.
func ParseEdge(line string) (Edge, bool) {
	m := edgeRE.FindStringSubmatchIndex(line)
	if m == nil {
		return Edge{}, false
	}
	e := Edge{
		Indent: line[m[2]:m[3]],
		Source: line[m[4]:m[5]],
		Arrow:  line[m[6]:m[7]],
		Target: line[m[10]:m[11]],
	}
	if m[8] >= 0 {
		e.Label, e.Labeled = line[m[8]:m[9]], true
	}
	return e, true
}

// String renders the edge with normalized spacing.
func (e Edge) String() string {
	if e.Labeled {
		return fmt.Sprintf(`%s%s %s |"%s"| %s`, e.Indent, e.Source, e.Arrow, e.Label, e.Target)
	}
	return fmt.Sprintf("%s%s %s %s", e.Indent, e.Source, e.Arrow, e.Target)
}

// polarity is the orientation implied by a branch token.
type polarity int

const (
	polarityNone polarity = iota
	polarityPositive
	polarityNegative
)

func isBranchToken(e Edge) bool {
	if !e.Labeled {
		return false
	}
	lowered := strings.ToLower(strings.TrimSpace(e.Label))
	for _, tok := range branchTokens {
		if lowered == tok {
			return true
		}
	}
	return false
}

func labelPolarity(label string) polarity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes", "true":
		return polarityPositive
	case "no", "false":
		return polarityNegative
	}
	return polarityNone
}

// hintScore counts the hint words contained in text, signed by polarity.
func hintScore(text string, pol polarity) int {
	if pol == polarityNone {
		return 0
	}
	lowered := strings.ToLower(text)
	pos, neg := 0, 0
	for _, h := range positiveHints {
		if strings.Contains(lowered, h) {
			pos++
		}
	}
	for _, h := range negativeHints {
		if strings.Contains(lowered, h) {
			neg++
		}
	}
	if pol == polarityPositive {
		return pos - neg
	}
	return neg - pos
}

// graph is the immutable snapshot the migration planner works on.
type graph struct {
	edges      []Edge
	nodeLabels map[string]string // node id -> last declared label
	outgoing   map[string][]int  // node id -> indexes into edges, in order
}

func buildGraph(lines []string) graph {
	g := graph{
		nodeLabels: make(map[string]string),
		outgoing:   make(map[string][]int),
	}
	for i, line := range lines {
		for _, m := range nodeDeclRE.FindAllStringSubmatch(line, -1) {
			g.nodeLabels[m[1]] = m[2]
		}
		if e, ok := ParseEdge(line); ok {
			e.Line = i
			g.outgoing[e.Source] = append(g.outgoing[e.Source], len(g.edges))
			g.edges = append(g.edges, e)
		}
	}
	return g
}

// displayText is what the hint vocabularies are matched against for a node.
func (g graph) displayText(id string) string {
	if label, ok := g.nodeLabels[id]; ok {
		return label
	}
	return id
}

// labelMove relocates the label of edge from onto edge to.
type labelMove struct {
	from, to int
}

// planMoves computes every label relocation against the unmodified snapshot.
// An edge chosen as a target is consumed and cannot receive a second label.
func (g graph) planMoves() ([]labelMove, []Finding) {
	var moves []labelMove
	var findings []Finding
	consumed := make(map[int]bool)

	for i, e := range g.edges {
		if consumed[i] || !isBranchToken(e) {
			continue
		}
		if len(g.outgoing[e.Source]) != 1 {
			continue
		}
		siblings := g.outgoing[e.Target]
		if len(siblings) < 2 {
			continue
		}
		var candidates []int
		for _, j := range siblings {
			if !g.edges[j].Labeled && !consumed[j] {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		target, ok := g.choose(candidates, labelPolarity(e.Label))
		if !ok {
			findings = append(findings, warn(MMW001, e.Line+1, fmt.Sprintf(
				"branch label %q on %s %s %s left in place: no unique match among %d edges leaving %s",
				e.Label, e.Source, e.Arrow, e.Target, len(candidates), e.Target)))
			continue
		}
		moves = append(moves, labelMove{from: i, to: target})
		consumed[target] = true
	}
	return moves, findings
}

// choose picks the candidate edge that should receive a label of the given
// polarity. It declines (false) unless the winner is unique.
func (g graph) choose(candidates []int, pol polarity) (int, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}
	if pol == polarityNone {
		return g.soleUnlabeled(candidates)
	}

	best := 0
	var winners []int
	for n, idx := range candidates {
		score := hintScore(g.displayText(g.edges[idx].Target), pol)
		switch {
		case n == 0 || score > best:
			best, winners = score, []int{idx}
		case score == best:
			winners = append(winners, idx)
		}
	}
	if best <= 0 {
		return g.soleUnlabeled(candidates)
	}
	if len(winners) != 1 {
		return 0, false
	}
	return winners[0], true
}

func (g graph) soleUnlabeled(candidates []int) (int, bool) {
	var unlabeled []int
	for _, idx := range candidates {
		if !g.edges[idx].Labeled {
			unlabeled = append(unlabeled, idx)
		}
	}
	if len(unlabeled) != 1 {
		return 0, false
	}
	return unlabeled[0], true
}

// migrateBranchLabels moves branch tokens from pass-through edges onto the
// matching outgoing edge of the decision node they lead into. Planning repeats
// until a pass moves nothing, since a move can leave a declined label with a
// single remaining candidate; only declines of the final pass are reported.
// Every parsed edge line is re-rendered with normalized spacing.
func migrateBranchLabels(lines []string) ([]string, []Finding) {
	out := make([]string, len(lines))
	copy(out, lines)

	var findings []Finding
	for {
		g := buildGraph(out)
		moves, declined := g.planMoves()

		edges := make([]Edge, len(g.edges))
		copy(edges, g.edges)
		for _, mv := range moves {
			from, to := &edges[mv.from], &edges[mv.to]
			to.Label, to.Labeled = from.Label, true
			from.Label, from.Labeled = "", false
			findings = append(findings, info(MMD004, to.Line+1, fmt.Sprintf(
				"branch label %q moved from %s %s %s to %s %s %s",
				to.Label, from.Source, from.Arrow, from.Target, to.Source, to.Arrow, to.Target)))
		}
		for _, e := range edges {
			out[e.Line] = e.String()
		}
		if len(moves) == 0 {
			return out, append(findings, declined...)
		}
	}
}
