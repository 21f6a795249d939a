package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/config"
	"github.com/xgui3783/ebrains-util/internal/prompt"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"github.com/xgui3783/ebrains-util/internal/ui/response"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: fmt.Sprintf("Manage settings stored in the user path. Every key can also be set with an %s_ environment variable.\n\nKeys: %s",
			config.EnvPrefix, strings.Join(config.Keys, ", ")),
	}
	configCmd.AddCommand(newConfigSetCommand(), newConfigGetCommand())
	return configCmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a configuration value; secrets are prompted for when the value is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.NormalizeKey(args[0])
			if err != nil {
				return err
			}

			var value string
			switch {
			case len(args) == 2:
				value = args[1]
			case config.IsSecret(key):
				value, err = prompt.ReadSecret(key, "Stored encrypted with a key kept in the OS keyring")
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("a value is required for %s", key)
			}

			if err := config.Set(key, value); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			response.New(cmd.ErrOrStderr()).
				FooterSuccess("Configuration updated: %s", ui.Code.Render(key)).
				Display()
			return nil
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
}
