package pipeline

import (
	"os"
	"sort"
	"sync"
)

// planFS records writes and renames in memory on top of the real files, so
// a dry run can number pages against the contents it would have written.
type planFS struct {
	Files

	mu      sync.Mutex
	planned map[string]string
	removed map[string]bool
}

func newPlanFS(files Files) *planFS {
	return &planFS{Files: files, planned: make(map[string]string), removed: make(map[string]bool)}
}

func (p *planFS) ReadFile(path string) (string, error) {
	p.mu.Lock()
	content, ok := p.planned[path]
	gone := p.removed[path]
	p.mu.Unlock()
	if ok {
		return content, nil
	}
	if gone {
		return "", &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}
	return p.Files.ReadFile(path)
}

func (p *planFS) WriteFile(path, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.planned[path] = content
	delete(p.removed, path)
	return nil
}

func (p *planFS) Rename(from, to string) error {
	content, err := p.ReadFile(from)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.planned, from)
	p.removed[from] = true
	p.planned[to] = content
	delete(p.removed, to)
	return nil
}

func (p *planFS) Exists(path string) bool {
	p.mu.Lock()
	_, ok := p.planned[path]
	gone := p.removed[path]
	p.mu.Unlock()
	if ok {
		return true
	}
	return !gone && p.Files.Exists(path)
}

func (p *planFS) CopyFile(string, string) error { return nil }

func (p *planFS) MarkdownFiles(dir string) ([]string, error) {
	onDisk, err := p.Files.MarkdownFiles(dir)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, path := range onDisk {
		if !p.removed[path] && !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	for path := range p.planned {
		if within(dir, path) && isMarkdown(path) && !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}
