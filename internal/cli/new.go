package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/agentx-labs/stencil/internal/branding"
	"github.com/agentx-labs/stencil/internal/scaffold"
	"github.com/spf13/cobra"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

var newOutputDir string

func init() {
	newCmd.Flags().StringVar(&newOutputDir, "output-dir", "", "Output directory (default: ./<name>)")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new template",
	Long: `Scaffold a starter template with a ` + branding.SpecFile() + ` document and sample files.

Example:
  stencil new service --output-dir ./templates/service`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}

		result, err := scaffold.Generate(scaffold.NewData(name, buildVersion), resolveOutputDir(name))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printScaffoldResult(out, result)

		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Edit %s to declare your placeholders\n", branding.SpecFile())
		fmt.Fprintln(out, "  2. Use {{key}} tokens in file contents and paths")
		fmt.Fprintf(out, "  3. Try it with '%s create local --template-path %s --destination-path <dir>'\n",
			branding.CLIName(), result.OutputDir)
		return nil
	},
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must match pattern [a-z0-9][a-z0-9-]*", name)
	}
	return nil
}

func resolveOutputDir(name string) string {
	if newOutputDir != "" {
		return newOutputDir
	}
	return filepath.Join(".", name)
}

func printScaffoldResult(w io.Writer, result *scaffold.Result) {
	fmt.Fprintf(w, "Created template at %s/\n", result.OutputDir)
	for _, f := range result.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
}
