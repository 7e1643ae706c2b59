package origin

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentx-labs/stencil/internal/template"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Loader produces a FileTree from an origin.
type Loader interface {
	Load(ctx context.Context) (*template.FileTree, error)
}

// Origin describes where a template comes from: either a local Path or a
// remote URL plus Branch.
type Origin struct {
	Path   string
	URL    string
	Branch string
}

// IsRemote reports whether the origin points at a git remote.
func (o Origin) IsRemote() bool {
	return o.URL != ""
}

func (o Origin) String() string {
	if o.IsRemote() {
		return o.URL + "@" + o.Branch
	}
	return o.Path
}

type options struct {
	fs      afero.Fs
	tempDir string
	depth   int
	log     logrus.FieldLogger
}

// Option configures the loader built by New.
type Option func(*options)

// WithFs sets the filesystem used by local loads.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithTempDir sets the parent directory for remote working copies.
func WithTempDir(dir string) Option {
	return func(o *options) { o.tempDir = dir }
}

// WithDepth limits remote clone history. Zero fetches full history.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// New selects the loader variant for o.
func New(o Origin, opts ...Option) (Loader, error) {
	cfg := options{fs: afero.NewOsFs(), log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if o.IsRemote() {
		if strings.TrimSpace(o.Branch) == "" {
			return nil, fmt.Errorf("remote origin %s: branch is required", o.URL)
		}
		return &Remote{
			URL:     o.URL,
			Branch:  o.Branch,
			TempDir: cfg.tempDir,
			Depth:   cfg.depth,
			Log:     cfg.log,
		}, nil
	}

	if strings.TrimSpace(o.Path) == "" {
		return nil, fmt.Errorf("origin path is empty")
	}
	return &Local{Path: o.Path, Fs: cfg.fs}, nil
}
