package origin

import (
	"context"
	"fmt"
	"os"

	"github.com/agentx-labs/stencil/internal/template"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Remote loads a template tree from a branch of a git repository.
type Remote struct {
	URL     string
	Branch  string
	TempDir string // parent of the working copy; empty uses os.TempDir
	Depth   int    // clone depth; zero fetches full history
	Log     logrus.FieldLogger
}

// Load clones the branch into a fresh temporary directory and reads it with
// a Local loader. The working copy is removed before Load returns.
func (r *Remote) Load(ctx context.Context) (*template.FileTree, error) {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	dir, err := os.MkdirTemp(r.TempDir, "stencil-remote-*")
	if err != nil {
		return nil, &RemoteError{URL: r.URL, Branch: r.Branch, Err: fmt.Errorf("creating working directory: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Warn("removing remote working copy")
		}
	}()

	log.WithFields(logrus.Fields{"url": r.URL, "branch": r.Branch}).Debug("cloning template")
	if err := r.fetch(ctx, dir); err != nil {
		return nil, err
	}

	tree, err := (&Local{Path: dir, Fs: afero.NewOsFs()}).Load(ctx)
	if err != nil {
		return nil, err
	}
	tree.Root = r.URL + "@" + r.Branch
	return tree, nil
}

// fetch clones only the requested branch and checks it out into dir.
func (r *Remote) fetch(ctx context.Context, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           r.URL,
		ReferenceName: plumbing.NewBranchReferenceName(r.Branch),
		SingleBranch:  true,
		Depth:         r.Depth,
		Tags:          git.NoTags,
	})
	if err != nil {
		return &RemoteError{URL: r.URL, Branch: r.Branch, Err: err}
	}
	return nil
}
