package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agentx-labs/stencil/internal/branding"
	"github.com/agentx-labs/stencil/internal/config"
	"github.com/agentx-labs/stencil/internal/engine"
	"github.com/agentx-labs/stencil/internal/generate"
	"github.com/agentx-labs/stencil/internal/origin"
	"github.com/agentx-labs/stencil/internal/prompt"
	"github.com/agentx-labs/stencil/internal/specification"
	"github.com/agentx-labs/stencil/internal/watch"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Shared flags for all create subcommands.
var (
	createDestination string
	createForce       bool
	createSet         []string
	createAnswersFile string
	createPromptStyle string
	createWorkers     int
)

func init() {
	// Parent create command.
	createCmd.PersistentFlags().StringVar(&createDestination, "destination-path", "", "Directory to create the project in (required)")
	createCmd.PersistentFlags().BoolVar(&createForce, "force", false, "Overwrite files that already exist in the destination")
	createCmd.PersistentFlags().StringArrayVar(&createSet, "set", nil, "Answer a placeholder as key=value (repeatable)")
	createCmd.PersistentFlags().StringVar(&createAnswersFile, "answers", "", "Read answers from a YAML, JSON, or TOML file")
	createCmd.PersistentFlags().StringVar(&createPromptStyle, "prompt", "", "Prompt style: line or survey (default from config)")
	createCmd.PersistentFlags().IntVar(&createWorkers, "workers", 0, "Render worker count (default from config)")
	_ = createCmd.MarkPersistentFlagRequired("destination-path")
	rootCmd.AddCommand(createCmd)

	// Subcommands.
	createCmd.AddCommand(createLocalCmd)
	createCmd.AddCommand(createGitCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project from a template",
	Long: `Create a project from a local template directory or a branch of a git repository.

Placeholders declared in ` + branding.SpecFile() + ` are answered interactively unless
supplied with --set or --answers. Every {{key}} token in file contents and paths
is replaced with its answer. UTF-16 files are substituted when they start with a
byte order mark; any other file containing a NUL byte is copied verbatim.`,
}

// ─── create local ──────────────────────────────────────────────────

var (
	localTemplatePath string
	localWatch        bool
)

var createLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Create a project from a local template directory",
	Long: `Create a project from a template directory on this machine.

Examples:
  stencil create local --template-path ./templates/service --destination-path ./billing
  stencil create local --template-path ./tpl --destination-path ./out --set name=billing --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loader, err := origin.New(origin.Origin{Path: localTemplatePath}, origin.WithLogger(logger))
		if err != nil {
			return err
		}

		res, err := runCreate(ctx, cmd, loader, nil, createForce)
		if err != nil {
			return err
		}
		if !localWatch {
			return nil
		}

		// Re-render with the first run's answers; later runs overwrite.
		w := watch.New(localTemplatePath, config.WatchDebounce(), logger)
		fmt.Fprintln(cmd.OutOrStdout(), "Watching for template changes (Ctrl-C to stop)...")
		return w.Run(ctx, func(ctx context.Context) error {
			replay := &prompt.Preset{Answers: res.Answers, Fallback: prompt.Skip{}}
			_, err := runCreate(ctx, cmd, loader, replay, true)
			return err
		})
	},
}

func init() {
	createLocalCmd.Flags().StringVar(&localTemplatePath, "template-path", "", "Template directory (required)")
	createLocalCmd.Flags().BoolVar(&localWatch, "watch", false, "Re-render when the template changes")
	_ = createLocalCmd.MarkFlagRequired("template-path")
}

// ─── create git ────────────────────────────────────────────────────

var (
	gitRemotePath string
	gitBranch     string
)

var createGitCmd = &cobra.Command{
	Use:   "git",
	Short: "Create a project from a branch of a git repository",
	Long: `Create a project from a template stored in a git repository. The branch is
cloned into a temporary directory that is removed afterwards.

Example:
  stencil create git --remote-path https://github.com/acme/templates.git --branch service --destination-path ./billing`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loader, err := origin.New(
			origin.Origin{URL: gitRemotePath, Branch: gitBranch},
			origin.WithTempDir(config.RemoteTmpDir()),
			origin.WithDepth(cloneDepth(gitRemotePath)),
			origin.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		_, err = runCreate(ctx, cmd, loader, nil, createForce)
		return err
	},
}

func init() {
	createGitCmd.Flags().StringVar(&gitRemotePath, "remote-path", "", "Git repository URL (required)")
	createGitCmd.Flags().StringVar(&gitBranch, "branch", "", "Branch holding the template (required)")
	_ = createGitCmd.MarkFlagRequired("remote-path")
	_ = createGitCmd.MarkFlagRequired("branch")
}

// ─── Helpers ───────────────────────────────────────────────────────

// runCreate generates a project from loader. A nil p builds the prompt from
// the shared flags.
func runCreate(ctx context.Context, cmd *cobra.Command, loader origin.Loader, p prompt.Prompt, force bool) (*generate.Result, error) {
	if p == nil {
		var err error
		if p, err = buildPrompt(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return nil, err
		}
	}

	workers := createWorkers
	if workers <= 0 {
		workers = config.Workers()
	}

	svc := generate.New(
		specification.NewService(loader, buildVersion),
		p,
		engine.New(afero.NewOsFs(), workers, logger),
		logger,
	)

	res, err := svc.GenerateProject(ctx, generate.Input{Destination: createDestination, Force: force})
	if err != nil {
		if errors.Is(err, engine.ErrDestinationConflict) {
			return res, fmt.Errorf("%w; nothing was written", err)
		}
		if len(res.Files) > 0 {
			return res, fmt.Errorf("%w (%d files written before the failure)", err, len(res.Files))
		}
		return res, err
	}

	printCreateResult(cmd.OutOrStdout(), res)
	return res, nil
}

// buildPrompt combines preset answers from --answers and --set (later
// wins) with an interactive fallback for everything else.
func buildPrompt(in io.Reader, out io.Writer) (prompt.Prompt, error) {
	var interactive prompt.Prompt
	style := createPromptStyle
	if style == "" {
		style = config.PromptStyle()
	}
	switch style {
	case config.PromptStyleLine:
		interactive = prompt.NewConsole(in, out)
	case config.PromptStyleSurvey:
		interactive = prompt.NewSurvey()
	default:
		return nil, fmt.Errorf("--prompt must be %q or %q, got %q", config.PromptStyleLine, config.PromptStyleSurvey, style)
	}

	var fromFile map[string]string
	if createAnswersFile != "" {
		var err error
		if fromFile, err = prompt.LoadAnswersFile(createAnswersFile); err != nil {
			return nil, err
		}
	}
	fromFlags, err := prompt.ParseAssignments(createSet)
	if err != nil {
		return nil, err
	}

	answers := prompt.Merge(fromFile, fromFlags)
	if len(answers) == 0 {
		return interactive, nil
	}
	return &prompt.Preset{Answers: answers, Fallback: interactive}, nil
}

// cloneDepth returns 1 for network remotes and 0 (full history) for local
// repositories, which the file transport cannot clone shallowly.
func cloneDepth(url string) int {
	if strings.HasPrefix(url, "file://") {
		return 0
	}
	if strings.Contains(url, "://") || strings.HasPrefix(url, "git@") {
		return 1
	}
	return 0
}

func printCreateResult(w io.Writer, res *generate.Result) {
	fmt.Fprintf(w, "Created project at %s/\n", createDestination)
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if len(res.Unanswered) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, key := range res.Unanswered {
			fmt.Fprintf(w, "  - %s was not answered; {{%s}} tokens were left in place\n", key, key)
		}
	}
}
