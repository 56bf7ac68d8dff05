package mermaid

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var participantRE = regexp.MustCompile(`^(\s*)(participant|actor)\s+(.+?)\s*$`)

var (
	messageRE    = regexp.MustCompile(`^\s*(.+?)\s*(?:--?>>|--?>|--?x|--?\))\s*[+-]?\s*(.+?)\s*:`)
	identifierRE = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

var aliasReplacer = strings.NewReplacer(" ", "_", "-", "_")

// messageIdentifiers returns the sender and receiver of a message line that
// are plain identifiers.
func messageIdentifiers(line string) []string {
	m := messageRE.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var ids []string
	for _, name := range m[1:] {
		if identifierRE.MatchString(name) {
			ids = append(ids, name)
		}
	}
	return ids
}

// participantDecl is a parsed participant or actor declaration line.
type participantDecl struct {
	line    int
	indent  string
	keyword string
	name    string // identifier part, before any " as "
	display string // text after " as ", empty if absent
}

func parseParticipant(line string) (participantDecl, bool) {
	m := participantRE.FindStringSubmatch(line)
	if m == nil {
		return participantDecl{}, false
	}
	d := participantDecl{indent: m[1], keyword: m[2], name: m[3]}
	if idx := strings.Index(d.name, " as "); idx >= 0 {
		d.name, d.display = strings.TrimSpace(d.name[:idx]), strings.TrimSpace(d.name[idx+4:])
	}
	return d, true
}

func needsAlias(name string) bool {
	return strings.ContainsAny(name, " -")
}

// aliasParticipants gives participants whose names contain spaces or hyphens
// an underscore alias. The alias map is complete before any line is rewritten,
// so message lines above a declaration are rewritten too.
func aliasParticipants(lines []string) ([]string, []Finding) {
	var decls []participantDecl
	taken := make(map[string]bool)
	for i, line := range lines {
		d, ok := parseParticipant(line)
		if !ok {
			for _, id := range messageIdentifiers(line) {
				taken[id] = true
			}
			continue
		}
		d.line = i
		decls = append(decls, d)
		if !needsAlias(d.name) {
			taken[d.name] = true
		}
	}

	var findings []Finding
	aliases := make(map[string]string)
	for _, d := range decls {
		if !needsAlias(d.name) {
			continue
		}
		if _, seen := aliases[d.name]; seen {
			continue
		}
		base := aliasReplacer.Replace(d.name)
		alias := base
		for n := 2; taken[alias]; n++ {
			alias = base + "_" + strconv.Itoa(n)
		}
		if alias != base {
			findings = append(findings, warn(MMW002, d.line+1, fmt.Sprintf(
				"participant %q aliased to %s because %s is already in use", d.name, alias, base)))
		}
		taken[alias] = true
		aliases[d.name] = alias
	}
	if len(aliases) == 0 {
		return lines, findings
	}

	// Longest names first so "API Gateway" is not rewritten inside "API Gateway Service".
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, name, aliases[name])
	}
	substitute := strings.NewReplacer(pairs...)

	out := make([]string, len(lines))
	copy(out, lines)
	isDecl := make(map[int]bool, len(decls))
	for _, d := range decls {
		isDecl[d.line] = true
		alias, ok := aliases[d.name]
		if !ok {
			continue
		}
		display := d.display
		if display == "" {
			display = d.name
		}
		out[d.line] = fmt.Sprintf("%s%s %s as %s", d.indent, d.keyword, alias, display)
		findings = append(findings, info(MMD005, d.line+1, fmt.Sprintf("participant %q aliased to %s", d.name, alias)))
	}
	for i, line := range out {
		if !isDecl[i] {
			out[i] = substitute.Replace(line)
		}
	}
	return out, findings
}
