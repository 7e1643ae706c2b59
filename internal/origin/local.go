package origin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/stencil/internal/template"
	"github.com/spf13/afero"
)

// excludedNames are version-control metadata and OS litter skipped during a
// load.
var excludedNames = map[string]bool{
	".git":      true,
	".hg":       true,
	".svn":      true,
	".DS_Store": true,
}

// Local loads a template tree from a directory.
type Local struct {
	Path string
	Fs   afero.Fs
}

// NewLocal returns a Local loader reading from the OS filesystem.
func NewLocal(path string) *Local {
	return &Local{Path: path, Fs: afero.NewOsFs()}
}

// Load walks the directory and reads every regular file. Symlinks and other
// special files are skipped.
func (l *Local) Load(ctx context.Context) (*template.FileTree, error) {
	fsys := l.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	// Clean drops trailing separators.
	root := filepath.Clean(l.Path)

	info, err := fsys.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, &ReadError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, root)
	}

	// Walk lstats its root, so a symlinked root would yield no entries.
	root, err = resolveRoot(fsys, root)
	if err != nil {
		return nil, &ReadError{Path: l.Path, Err: err}
	}

	var entries []template.Entry
	err = afero.Walk(fsys, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return &ReadError{Path: path, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != root && excludedNames[info.Name()] {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return &ReadError{Path: path, Err: err}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return &ReadError{Path: path, Err: err}
		}

		entries = append(entries, template.Entry{
			Path:    filepath.ToSlash(rel),
			Content: data,
			Mode:    info.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	tree, err := template.NewFileTree(filepath.Clean(l.Path), entries)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", root, err)
	}
	return tree, nil
}

// maxLinkHops bounds symlink resolution of the root.
const maxLinkHops = 40

// resolveRoot follows symlinks at root itself on filesystems that support
// them. Symlinks below the root are not followed.
func resolveRoot(fsys afero.Fs, root string) (string, error) {
	links, ok := fsys.(afero.Symlinker)
	if !ok {
		return root, nil
	}
	for i := 0; i < maxLinkHops; i++ {
		info, _, err := links.LstatIfPossible(root)
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return root, nil
		}
		target, err := links.ReadlinkIfPossible(root)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(root), target)
		}
		root = filepath.Clean(target)
	}
	return "", fmt.Errorf("too many levels of symbolic links at %s", root)
}
