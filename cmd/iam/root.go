package iam

import "github.com/spf13/cobra"

func NewCommand() *cobra.Command {
	iamCmd := &cobra.Command{
		Use:   "iam",
		Short: "Authenticate against EBRAINS IAM and administer collabs",
	}

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Acquire, inspect and discard access tokens",
	}
	authCmd.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newPrintCommand(),
		newSetTokenCommand(),
	)

	iamCmd.AddCommand(authCmd, newAdminCommand())
	return iamCmd
}
