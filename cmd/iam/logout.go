package iam

import (
	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/token"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"github.com/xgui3783/ebrains-util/internal/ui/response"
)

var logoutKey = executor.NewKey[struct{}]("logout")

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the cached token",
		Args:  cobra.NoArgs,
		RunE: executor.New().
			WithConfig().
			Step(executor.NewStep(logoutKey, "").Silent().Func(func(ctx *executor.Context, _ chan<- string) (struct{}, error) {
				return struct{}{}, token.NewCache(ctx.Config.TokenPath()).Delete()
			})).
			Display(func(ctx *executor.Context) {
				response.New(ctx.Stderr()).
					FooterSuccess("Logged out, removed %s", ui.Code.Render(ctx.Config.TokenPath())).
					Display()
			}).
			RunE(),
	}
}
