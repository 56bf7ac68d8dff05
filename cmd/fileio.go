package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// fileIO implements the command IO interfaces using OS file I/O.
// *Impl functions wrap OS calls and are excluded from coverage requirements.
type fileIO struct{}

func newDefaultFileIO() *fileIO {
	return &fileIO{}
}

// maxDocumentSize is the largest document ReadFile and ReadInput accept (10 MB).
const maxDocumentSize = 10 * 1024 * 1024

// ReadFile reads the file at path.
func (f *fileIO) ReadFile(path string) (string, error) {
	data, err := ReadLimitedImpl(path, maxDocumentSize)
	return string(data), err
}

// WriteFile writes content to path atomically, creating parent directories.
func (f *fileIO) WriteFile(path, content string) error {
	return WriteFileAtomicImpl(path, []byte(content))
}

// Rename moves a file, creating the parent directory of to.
func (f *fileIO) Rename(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	return os.Rename(from, to)
}

// Exists reports whether path exists.
func (f *fileIO) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is a directory.
func (f *fileIO) IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// ListFiles returns every regular file below root.
func (f *fileIO) ListFiles(root string) ([]string, error) {
	return WalkFilesImpl(root, func(string) bool { return true })
}

// MarkdownFiles returns every .md file below dir. A missing dir yields none.
func (f *fileIO) MarkdownFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return WalkFilesImpl(dir, func(path string) bool {
		return strings.EqualFold(filepath.Ext(path), ".md")
	})
}

// CopyFile copies src to dst, keeping the permission bits.
func (f *fileIO) CopyFile(src, dst string) error {
	return CopyFileImpl(src, dst)
}

// ReadInput reads a document from path.
func (f *fileIO) ReadInput(path string) ([]byte, error) {
	return ReadLimitedImpl(path, maxDocumentSize)
}

// ReadLimitedImpl reads path, refusing files larger than limit bytes.
func ReadLimitedImpl(path string, limit int64) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Size() > limit {
		return nil, fmt.Errorf("%s is %d bytes, exceeding the %d byte limit", path, fi.Size(), limit)
	}
	return os.ReadFile(path)
}

// WalkFilesImpl walks root recursively and returns the regular files for
// which keep reports true, in lexical order.
func WalkFilesImpl(root string, keep func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if keep(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// WriteFileAtomicImpl writes data to path via a temp file rename. An existing
// file keeps its permission bits; a new one gets 0644.
func WriteFileAtomicImpl(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		if fi.Mode().Perm()&0o200 == 0 {
			return fmt.Errorf("%s is read-only", path)
		}
		perm = fi.Mode().Perm()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".fixdocs-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// CopyFileImpl copies src to dst, creating dst's parent directory.
func CopyFileImpl(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
