package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/agentx-labs/stencil/internal/platform"
	"github.com/agentx-labs/stencil/internal/template"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"
)

// Engine renders and writes template trees.
type Engine struct {
	Fs      afero.Fs
	Workers int // render pool size; <= 0 means runtime.NumCPU()
	Log     logrus.FieldLogger
}

// New returns an Engine writing to fsys.
func New(fsys afero.Fs, workers int, log logrus.FieldLogger) *Engine {
	return &Engine{Fs: fsys, Workers: workers, Log: log}
}

// Result lists what was written.
type Result struct {
	Destination string
	Written     []string // rendered relative paths, in tree order
}

// RenderAndPush substitutes the request's answers into every entry of the
// tree and writes the results under the destination. The first write
// failure aborts; files already written stay in place and are listed in the
// returned Result.
func (e *Engine) RenderAndPush(ctx context.Context, req template.RenderRequest) (*Result, error) {
	if req.Configuration == nil || req.Configuration.Tree == nil {
		return nil, fmt.Errorf("render request has no template tree")
	}
	fsys := e.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	answers := map[string]string{}
	if req.Configuration.Specification != nil {
		answers = req.Configuration.Specification.Answers()
	}
	files, err := e.render(req.Configuration.Tree, answers)
	if err != nil {
		return nil, err
	}

	if err := checkTargets(fsys, req.Destination, files, req.Force); err != nil {
		return nil, err
	}

	result := &Result{Destination: req.Destination}
	if err := fsys.MkdirAll(req.Destination, 0755); err != nil {
		return result, &WriteError{Path: req.Destination, Err: err}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := writeFile(fsys, req.Destination, f); err != nil {
			return result, err
		}
		log.WithField("file", f.Path).Debug("wrote file")
		result.Written = append(result.Written, f.Path)
	}

	return result, nil
}

func (e *Engine) render(tree *template.FileTree, answers map[string]string) ([]rendered, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sub := NewSubstitution(answers)

	mapper := iter.Mapper[template.Entry, rendered]{MaxGoroutines: workers}
	files := mapper.Map(tree.Entries, func(entry *template.Entry) rendered {
		return renderEntry(sub, entry)
	})

	seen := make(map[string]string, len(files))
	for i, f := range files {
		clean := path.Clean(f.Path)
		if clean == "." {
			return nil, &WriteError{Path: f.Path, Err: fmt.Errorf("%w: %q names the destination itself", ErrPathEscape, f.Path)}
		}
		if err := template.ValidatePath(clean); err != nil {
			return nil, &WriteError{Path: f.Path, Err: fmt.Errorf("%w: %v", ErrPathEscape, err)}
		}
		if src, dup := seen[clean]; dup {
			return nil, &WriteError{
				Path: clean,
				Err:  fmt.Errorf("%w: %s and %s", ErrPathCollision, src, f.Source),
			}
		}
		seen[clean] = f.Source
		files[i].Path = clean
	}
	return files, nil
}

// checkTargets fails on the first rendered path that already exists at the
// destination, unless force is set.
func checkTargets(fsys afero.Fs, dest string, files []rendered, force bool) error {
	if force {
		return nil
	}
	for _, f := range files {
		_, err := fsys.Stat(filepath.Join(dest, filepath.FromSlash(f.Path)))
		if err == nil {
			return &ConflictError{Path: f.Path}
		}
		if !os.IsNotExist(err) {
			return &WriteError{Path: f.Path, Err: err}
		}
	}
	return nil
}

func writeFile(fsys afero.Fs, dest string, f rendered) error {
	target := filepath.Join(dest, filepath.FromSlash(f.Path))
	if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return &WriteError{Path: f.Path, Err: err}
	}
	perm := fs.FileMode(f.Perm)
	if err := afero.WriteFile(fsys, target, f.Content, perm); err != nil {
		return &WriteError{Path: f.Path, Err: err}
	}
	// WriteFile honours perm only on create and is subject to umask.
	if err := platform.Chmod(fsys, target, perm); err != nil {
		return &WriteError{Path: f.Path, Err: err}
	}
	return nil
}
