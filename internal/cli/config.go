package cli

import (
	"fmt"

	"github.com/agentx-labs/stencil/internal/branding"
	"github.com/agentx-labs/stencil/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: fmt.Sprintf(`Read and write %s configuration stored at ~/%s/config.yaml.

Keys:
  %-16s render worker pool size (default: number of CPUs)
  %-16s interactive prompt style: %s or %s
  %-16s parent directory for remote template checkouts
  %-16s delay before re-rendering in --watch mode`,
		branding.DisplayName(), branding.HomeDir(),
		config.KeyRenderWorkers,
		config.KeyPromptStyle, config.PromptStyleLine, config.PromptStyleSurvey,
		config.KeyRemoteTmpDir,
		config.KeyWatchDebounce),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}
