package iam

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/config"
	"github.com/xgui3783/ebrains-util/internal/token"
)

func newSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token <token>",
		Short: "Save a token obtained elsewhere as the cached token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return token.NewCache(cfg.TokenPath()).Set(strings.TrimSpace(args[0]))
		},
	}
}
