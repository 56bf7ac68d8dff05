// Package textfix cleans up markdown exported from a wiki: it strips export
// chrome, makes repository links absolute and sanitizes embedded diagrams.
package textfix

import (
	"regexp"
	"sort"
	"strings"

	"github.com/eykd/fixdocs-go/internal/document"
	"github.com/eykd/fixdocs-go/internal/mermaid"
)

const repoPath = `/[^)/\s]+/[^)/\s]+(?:/[^)\s]*)?`

var (
	internalLinkRE = regexp.MustCompile(`\]\((` + repoPath + `)\)`)
	refStyleLinkRE = regexp.MustCompile(`(?m)(^\s*\[[^\]]+\]:\s*)(` + repoPath + `)`)
)

// Options configures a Fixer.
type Options struct {
	GitHubBase     string            // e.g. https://github.com, without trailing slash
	SectionAnchors map[string]string // section page name to README anchor
	Inline         []string          // markers removed together with preceding whitespace
	LinePrefixes   []string          // lines starting with one of these are dropped
	ReflowTables   bool
}

type sectionRule struct {
	re     *regexp.Regexp
	anchor string
}

// Fixer applies the cleanup steps with compiled patterns.
type Fixer struct {
	opts     Options
	base     string
	inline   []*regexp.Regexp
	sections []sectionRule
	blobSHA  *regexp.Regexp
}

// New compiles a Fixer for opts.
func New(opts Options) *Fixer {
	base := strings.TrimRight(opts.GitHubBase, "/")
	f := &Fixer{opts: opts, base: base}

	for _, marker := range opts.Inline {
		if marker == "" {
			continue
		}
		f.inline = append(f.inline, regexp.MustCompile(`\s*`+regexp.QuoteMeta(marker)))
	}

	repoBlob := regexp.QuoteMeta(base) + `/([^/]+)/([^/]+)/blob/([0-9a-f]{7,40})/`
	names := make([]string, 0, len(opts.SectionAnchors))
	for name := range opts.SectionAnchors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.sections = append(f.sections, sectionRule{
			re:     regexp.MustCompile(repoBlob + regexp.QuoteMeta(name)),
			anchor: opts.SectionAnchors[name],
		})
	}
	f.blobSHA = regexp.MustCompile(repoBlob)
	return f
}

// Process runs every cleanup step in order and returns the new text with the
// diagram findings.
func (f *Fixer) Process(text string) (string, []mermaid.Finding) {
	text = StripPreamble(text)
	text = f.RemoveInline(text)
	text = f.RemoveBoilerplateLines(text)
	text = f.FixInternalLinks(text)
	text = f.FixSectionLinks(text)
	text = f.StripBlobSHA(text)
	if f.opts.ReflowTables {
		text = ReflowTables(text)
	}
	return mermaid.SanitizeDocument(text, mermaid.KindAuto)
}

// Clean is Process without the findings.
func (f *Fixer) Clean(text string) string {
	out, _ := f.Process(text)
	return out
}

// StripPreamble drops everything before the first heading line.
func StripPreamble(text string) string {
	doc := document.Split(text)
	for i, line := range doc.Lines {
		if !strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			continue
		}
		if i == 0 {
			return text
		}
		doc.Lines = doc.Lines[i:]
		return doc.String()
	}
	return text
}

// RemoveInline removes each inline marker and the whitespace before it.
func (f *Fixer) RemoveInline(text string) string {
	for _, re := range f.inline {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

// RemoveBoilerplateLines drops lines whose trimmed text starts with one of
// the configured prefixes.
func (f *Fixer) RemoveBoilerplateLines(text string) string {
	if len(f.opts.LinePrefixes) == 0 {
		return text
	}
	return document.MapLines(text, func(lines []string) []string {
		out := make([]string, 0, len(lines))
		for _, line := range lines {
			if !f.isBoilerplate(line) {
				out = append(out, line)
			}
		}
		return out
	})
}

func (f *Fixer) isBoilerplate(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range f.opts.LinePrefixes {
		if prefix != "" && strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// FixInternalLinks makes root-relative repository links absolute, both inline
// "](/owner/repo/...)" and reference definitions "[x]: /owner/repo/...".
func (f *Fixer) FixInternalLinks(text string) string {
	text = internalLinkRE.ReplaceAllStringFunc(text, func(m string) string {
		return "](" + f.base + internalLinkRE.FindStringSubmatch(m)[1] + ")"
	})
	return refStyleLinkRE.ReplaceAllStringFunc(text, func(m string) string {
		sub := refStyleLinkRE.FindStringSubmatch(m)
		return sub[1] + f.base + sub[2]
	})
}

// FixSectionLinks points links at a section page to the matching README
// anchor instead.
func (f *Fixer) FixSectionLinks(text string) string {
	for _, rule := range f.sections {
		text = rule.re.ReplaceAllStringFunc(text, func(m string) string {
			sub := rule.re.FindStringSubmatch(m)
			return f.base + "/" + sub[1] + "/" + sub[2] + "/blob/" + sub[3] + "/README.md#" + rule.anchor
		})
	}
	return text
}

// StripBlobSHA drops the "blob/<sha>" part of links pinned to a commit.
func (f *Fixer) StripBlobSHA(text string) string {
	return f.blobSHA.ReplaceAllStringFunc(text, func(m string) string {
		sub := f.blobSHA.FindStringSubmatch(m)
		return f.base + "/" + sub[1] + "/" + sub[2] + "/"
	})
}
