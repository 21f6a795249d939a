package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/cmd/bucket"
	"github.com/xgui3783/ebrains-util/cmd/iam"
	"github.com/xgui3783/ebrains-util/internal/constants"
	"github.com/xgui3783/ebrains-util/internal/flags"
	"github.com/xgui3783/ebrains-util/internal/prompt"
	"github.com/xgui3783/ebrains-util/internal/token"
	"github.com/xgui3783/ebrains-util/internal/transfer"
	"github.com/xgui3783/ebrains-util/internal/ui"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ebrains",
		Short:         fmt.Sprintf("CLI for EBRAINS IAM and data-proxy buckets version %s", constants.Version),
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.RegisterVerbose(root)

	root.AddCommand(
		iam.NewCommand(),
		bucket.NewCommand(),
		newConfigCommand(),
	)
	return root
}

func configureColorScheme(_ lipgloss.LightDarkFunc) fang.ColorScheme {
	return ui.FangTheme()
}

// errorTitle is the headline shown above a failed command's error.
func errorTitle(err error) string {
	switch {
	case errors.Is(err, token.ErrNotFound):
		return "Token not found."
	case errors.Is(err, token.ErrExpired):
		return "Token expired"
	case errors.Is(err, transfer.ErrDestExists), errors.Is(err, transfer.ErrMalformedHeader):
		return "Invalid arguments"
	case errors.Is(err, prompt.ErrUserCancelled):
		return "Cancelled"
	default:
		return "Error executing command"
	}
}

func handleError(w io.Writer, _ fang.Styles, err error) {
	_, _ = fmt.Fprintln(w, ui.ErrorBox(errorTitle(err), err))
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := fang.Execute(ctx, NewRootCommand(),
		fang.WithErrorHandler(handleError),
		fang.WithColorSchemeFunc(configureColorScheme),
		fang.WithVersion(constants.Version),
	)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
