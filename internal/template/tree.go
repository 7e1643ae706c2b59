package template

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ErrInvalidPath is returned when a tree entry path is absolute, empty, or
// escapes the tree root.
var ErrInvalidPath = errors.New("invalid tree path")

// Entry is a single file in a FileTree.
type Entry struct {
	Path    string      // slash-separated, relative to the tree root
	Content []byte
	Mode    fs.FileMode // permission bits; zero means 0644
}

// Perm returns the entry's permission bits, defaulting to 0644.
func (e Entry) Perm() fs.FileMode {
	if e.Mode.Perm() == 0 {
		return 0644
	}
	return e.Mode.Perm()
}

// FileTree is an immutable snapshot of a template's files.
type FileTree struct {
	Root    string // origin the tree was loaded from, for messages only
	Entries []Entry
}

// NewFileTree builds a tree from entries, sorting them by path and
// validating the path invariants.
func NewFileTree(root string, entries []Entry) (*FileTree, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	t := &FileTree{Root: root, Entries: sorted}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of entries.
func (t *FileTree) Len() int {
	return len(t.Entries)
}

// Paths returns the entry paths in tree order.
func (t *FileTree) Paths() []string {
	paths := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		paths[i] = e.Path
	}
	return paths
}

// Lookup returns the entry at p, if present.
func (t *FileTree) Lookup(p string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Path == p {
			return e, true
		}
	}
	return Entry{}, false
}

// Without returns a copy of the tree with the entry at p removed.
func (t *FileTree) Without(p string) *FileTree {
	out := &FileTree{Root: t.Root, Entries: make([]Entry, 0, len(t.Entries))}
	for _, e := range t.Entries {
		if e.Path != p {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Validate checks that every path is relative, stays inside the root, and
// appears only once.
func (t *FileTree) Validate() error {
	seen := make(map[string]bool, len(t.Entries))
	for _, e := range t.Entries {
		if err := ValidatePath(e.Path); err != nil {
			return err
		}
		if seen[e.Path] {
			return fmt.Errorf("%w: duplicate entry %q", ErrInvalidPath, e.Path)
		}
		seen[e.Path] = true
	}
	return nil
}

// ValidatePath reports whether p is a clean, relative, slash-separated path
// that does not climb out of its root.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") || hasVolume(p) {
		return fmt.Errorf("%w: %q is not a relative slash path", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q escapes the root", ErrInvalidPath, p)
		}
	}
	if path.Clean(p) != p {
		return fmt.Errorf("%w: %q is not clean", ErrInvalidPath, p)
	}
	return nil
}

// hasVolume catches Windows drive prefixes such as "C:".
func hasVolume(p string) bool {
	return len(p) >= 2 && p[1] == ':' &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
