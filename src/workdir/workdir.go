// Package workdir confines file traffic to one permitted directory: path
// validation for user-supplied inputs, and persistence plus listing of
// artifacts produced by calls.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PathOutsideRootError is returned when a candidate path escapes the
// permitted working directory.
type PathOutsideRootError struct {
	Path string
	Root string
}

func (e *PathOutsideRootError) Error() string {
	return fmt.Sprintf("path %q is outside the permitted working directory %q", e.Path, e.Root)
}

// Dir is one permitted working directory.
type Dir struct {
	root string
}

// New resolves the given directory and returns a Dir rooted there.
func New(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: abs}, nil
}

// Root returns the resolved root path.
func (d *Dir) Root() string { return d.root }

// IsURL reports whether a candidate is an http(s) URL, which bypasses
// containment checking.
func IsURL(candidate string) bool {
	return strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://")
}

// ValidatePath resolves a candidate against the root and fails when it
// escapes. URLs are passed through untouched. Relative paths resolve
// against the root, not the process working directory.
func (d *Dir) ValidatePath(candidate string) (string, error) {
	if IsURL(candidate) {
		return candidate, nil
	}
	resolved := candidate
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(d.root, resolved)
	}
	resolved = filepath.Clean(resolved)
	if resolved != d.root && !strings.HasPrefix(resolved, d.root+string(filepath.Separator)) {
		return "", &PathOutsideRootError{Path: candidate, Root: d.root}
	}
	return resolved, nil
}

// SaveFile writes bytes under the root and returns the absolute path.
func (d *Dir) SaveFile(data []byte, name string) (string, error) {
	target, err := d.ValidatePath(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// GenerateFilename builds a collision-resistant artifact name:
// <date>_<toolname>_<prefix>_<suffix>.<ext>.
func (d *Dir) GenerateFilename(prefix, ext, toolName string) string {
	date := time.Now().Format("20060102")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s_%s_%s_%s.%s", date, sanitize(toolName), prefix, suffix, ext)
	return filepath.Join(d.root, name)
}

// sanitize keeps filenames shell- and filesystem-friendly.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// Entry describes one file available in the working directory.
type Entry struct {
	Name    string
	Path    string
	URI     string
	Size    int64
	ModTime time.Time
}

// List enumerates the regular files directly under the root.
func (d *Dir) List() ([]Entry, error) {
	dirents, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		full := filepath.Join(d.root, de.Name())
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    full,
			URI:     FileURI(full),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Read returns the contents of a file under the root, addressed by file://
// URI or plain path.
func (d *Dir) Read(uriOrPath string) ([]byte, error) {
	p := strings.TrimPrefix(uriOrPath, "file://")
	resolved, err := d.ValidatePath(p)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}

// FileURI renders an absolute path as a file:// URI.
func FileURI(path string) string {
	return "file://" + filepath.ToSlash(path)
}
