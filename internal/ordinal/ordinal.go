// Package ordinal numbers the pages listed in a README index so that their
// file names sort in reading order, and rewrites links to the renamed files.
package ordinal

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// ReadmeName is the index file that drives renaming.
const ReadmeName = "README.md"

var (
	brokenLinkRE = regexp.MustCompile(`\]\([^)]*\n[^)]*\)`)
	indexItemRE  = regexp.MustCompile(`^\s*-\s+\[[^\]]+\]\(([^)]+)\)\s*$`)
	numberedRE   = regexp.MustCompile(`^\d{2}-`)
	linkTargetRE = regexp.MustCompile(`\]\(([^)]+)\)`)
)

// FS is the file access Apply needs. Paths use the host separator.
type FS interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	Rename(from, to string) error // creates the parent directory of to
	Exists(path string) bool
	// MarkdownFiles lists every .md file below dir, recursively, in lexical
	// order. A missing dir yields no files.
	MarkdownFiles(dir string) ([]string, error)
}

// Rename records one file moved by Apply.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result lists what Apply changed in one directory.
type Result struct {
	Rewritten []string // files whose content changed, README included
	Renamed   []Rename
}

// ParseIndex returns the relative markdown targets of the README's list
// items, in order. Links broken across lines are joined first.
func ParseIndex(readme string) []string {
	readme = brokenLinkRE.ReplaceAllStringFunc(readme, func(m string) string {
		return strings.NewReplacer("\r", "", "\n", "").Replace(m)
	})

	var items []string
	for _, line := range strings.Split(readme, "\n") {
		m := indexItemRE.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		target := m[1]
		if isExternal(target) || !strings.HasSuffix(strings.ToLower(target), ".md") {
			continue
		}
		items = append(items, target)
	}
	return items
}

// BuildMapping maps the i-th index target (1-based) to the same path with
// its base name prefixed "NN-". Targets already numbered are left out.
func BuildMapping(items []string) map[string]string {
	mapping := make(map[string]string)
	for i, target := range items {
		target = strings.TrimPrefix(target, "./")
		dir, base := path.Split(target)
		if base == "" || numberedRE.MatchString(base) {
			continue
		}
		mapping[target] = dir + fmt.Sprintf("%02d-%s", i+1, base)
	}
	return mapping
}

// RewriteLinks points inline link targets found in mapping at their new
// names. Leading "../" and "./" segments and any "#anchor" are preserved.
func RewriteLinks(text string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return text
	}
	return linkTargetRE.ReplaceAllStringFunc(text, func(m string) string {
		target := linkTargetRE.FindStringSubmatch(m)[1]
		if isExternal(target) {
			return m
		}

		rest, anchor := target, ""
		if i := strings.IndexByte(target, '#'); i >= 0 {
			rest, anchor = target[:i], target[i:]
		}
		prefix := ""
		for strings.HasPrefix(rest, "../") {
			prefix += "../"
			rest = rest[3:]
		}
		if strings.HasPrefix(rest, "./") {
			prefix += "./"
			rest = rest[2:]
		}

		renamed, ok := mapping[rest]
		if !ok {
			return m
		}
		return "](" + prefix + renamed + anchor + ")"
	})
}

// Apply numbers the pages indexed by dir/README.md. The README is first
// cleaned with clean, then links in every markdown file below dir are
// rewritten and the indexed files that exist are renamed.
func Apply(dir string, fsys FS, clean func(string) string) (Result, error) {
	var res Result
	readmePath := filepath.Join(dir, ReadmeName)
	if !fsys.Exists(readmePath) {
		return res, nil
	}

	readme, err := fsys.ReadFile(readmePath)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", readmePath, err)
	}
	if clean != nil {
		if cleaned := clean(readme); cleaned != readme {
			if err := fsys.WriteFile(readmePath, cleaned); err != nil {
				return res, fmt.Errorf("writing %s: %w", readmePath, err)
			}
			readme = cleaned
			res.Rewritten = append(res.Rewritten, readmePath)
		}
	}

	mapping := BuildMapping(ParseIndex(readme))
	if len(mapping) == 0 {
		return res, nil
	}

	files, err := fsys.MarkdownFiles(dir)
	if err != nil {
		return res, fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, p := range files {
		text, err := fsys.ReadFile(p)
		if err != nil {
			return res, fmt.Errorf("reading %s: %w", p, err)
		}
		updated := RewriteLinks(text, mapping)
		if updated == text {
			continue
		}
		if err := fsys.WriteFile(p, updated); err != nil {
			return res, fmt.Errorf("writing %s: %w", p, err)
		}
		if !slices.Contains(res.Rewritten, p) {
			res.Rewritten = append(res.Rewritten, p)
		}
	}

	olds := make([]string, 0, len(mapping))
	for old := range mapping {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	for _, old := range olds {
		from := filepath.Join(dir, filepath.FromSlash(old))
		to := filepath.Join(dir, filepath.FromSlash(mapping[old]))
		if from == to || !fsys.Exists(from) {
			continue
		}
		if err := fsys.Rename(from, to); err != nil {
			return res, fmt.Errorf("renaming %s: %w", from, err)
		}
		res.Renamed = append(res.Renamed, Rename{From: from, To: to})
	}
	return res, nil
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
