package iam

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/iam"
	"github.com/xgui3783/ebrains-util/internal/token"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"go.uber.org/zap"
)

const (
	scopeFlag        = "scope"
	forceFlag        = "force"
	printFlag        = "print"
	clientIDFlag     = "client-id"
	clientSecretFlag = "client-secret"
)

const (
	reusedMessage  = "Current token can be reused."
	successMessage = "Auth successful!"
)

type reuseCheck struct {
	reusable bool
	current  []string
	missing  []string
}

var (
	reuseKey    = executor.NewKey[reuseCheck]("reuse")
	acquiredKey = executor.NewKey[string]("acquired")
)

func newLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the device flow, or with client credentials when both are given",
		Args:  cobra.NoArgs,
		RunE: executor.New().
			WithConfig().
			Step(executor.NewStep(reuseKey, "Checking current token").Func(checkReusable)).
			Step(executor.NewStep(acquiredKey, "").Silent().Func(acquireToken)).
			Display(printLogin).
			RunE(),
	}
	cmd.Flags().String(scopeFlag, "", "Comma separated scopes to request")
	cmd.Flags().BoolP(forceFlag, "f", false, "Request a new token even if the current one is usable")
	cmd.Flags().Bool(printFlag, false, "Print the new token to stdout instead of saving it")
	cmd.Flags().String(clientIDFlag, "", "OAuth client id (default: client_id setting, then "+iam.DefaultClientID+")")
	cmd.Flags().String(clientSecretFlag, "", "OAuth client secret; enables the client credentials grant")
	return cmd
}

func requestedScopes(ctx *executor.Context) []string {
	raw, _ := ctx.Cmd.Flags().GetString(scopeFlag)
	if scopes := iam.ParseScopes(raw); len(scopes) > 0 {
		return scopes
	}
	return ctx.Config.Scopes()
}

func checkReusable(ctx *executor.Context, _ chan<- string) (reuseCheck, error) {
	if force, _ := ctx.Cmd.Flags().GetBool(forceFlag); force {
		return reuseCheck{}, nil
	}
	tok, missing, err := iam.Reusable(ctx.Ctx, ctx.Resolver(), requestedScopes(ctx))
	if err != nil || tok == nil {
		return reuseCheck{}, err
	}
	return reuseCheck{
		reusable: len(missing) == 0,
		current:  tok.Scopes,
		missing:  missing,
	}, nil
}

func acquireToken(ctx *executor.Context, _ chan<- string) (string, error) {
	check := executor.Get(ctx, reuseKey)
	if check.reusable {
		return "", nil
	}
	if len(check.missing) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr(), ui.Info(fmt.Sprintf(
			"Requested scopes %v are not in the current token's scopes %v. Rerequesting...", check.missing, check.current)))
	}

	clientID, _ := ctx.Cmd.Flags().GetString(clientIDFlag)
	clientSecret, _ := ctx.Cmd.Flags().GetString(clientSecretFlag)
	if clientID == "" {
		clientID = ctx.Config.ClientID
	}
	if clientSecret == "" {
		clientSecret = string(ctx.Config.ClientSecret)
	}

	client := iam.NewClient(ctx.Config.IAMURL, ctx.Logger)
	client.Out = ctx.Stderr()
	raw, err := client.Acquire(ctx.Ctx, clientID, clientSecret, requestedScopes(ctx))
	if err != nil {
		return "", err
	}

	if printOnly, _ := ctx.Cmd.Flags().GetBool(printFlag); printOnly {
		return raw, nil
	}
	if _, err := token.Parse(raw); err != nil {
		return "", fmt.Errorf("IAM returned an unusable token: %w", err)
	}
	cache := token.NewCache(ctx.Config.TokenPath())
	if err := cache.Set(raw); err != nil {
		return "", err
	}
	ctx.Logger.Debug("token saved", zap.String("path", cache.Path))
	return raw, nil
}

func printLogin(ctx *executor.Context) {
	if executor.Get(ctx, reuseKey).reusable {
		_, _ = fmt.Fprintln(ctx.Stdout(), reusedMessage)
		return
	}
	if printOnly, _ := ctx.Cmd.Flags().GetBool(printFlag); printOnly {
		_, _ = fmt.Fprintln(ctx.Stdout(), executor.Get(ctx, acquiredKey))
		return
	}
	_, _ = fmt.Fprintln(ctx.Stderr(), successMessage)
}
