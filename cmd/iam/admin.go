package iam

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/collab"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/flags"
	"github.com/xgui3783/ebrains-util/internal/iam"
	"github.com/xgui3783/ebrains-util/internal/prompt"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"github.com/xgui3783/ebrains-util/internal/ui/response"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const roleFlag = "role"

type teamChange struct {
	user   string
	collab *collab.Collab
	id     string
	role   collab.Role
}

var (
	changeKey  = executor.NewKey[*teamChange]("team_change")
	appliedKey = executor.NewKey[bool]("applied")
	updateKey  = executor.NewKey[struct{}]("team_update")
)

func newAdminCommand() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage collab team membership",
	}

	addCmd := &cobra.Command{
		Use:   "add-team <user_id> <collab_id>",
		Short: "Grant a user a role in a collab",
		Args:  cobra.ExactArgs(2),
		RunE:  teamPipeline(false).RunE(),
	}
	addCmd.Flags().String(roleFlag, string(collab.RoleViewer), "Role to grant: administrator, editor or viewer")

	removeCmd := &cobra.Command{
		Use:   "remove-team <user_id> <collab_id>",
		Short: "Revoke a user's role in a collab",
		Args:  cobra.ExactArgs(2),
		RunE:  teamPipeline(true).RunE(),
	}
	removeCmd.Flags().String(roleFlag, string(collab.RoleViewer), "Role to revoke: administrator, editor or viewer")
	flags.RegisterConfirmation(removeCmd)

	adminCmd.AddCommand(addCmd, removeCmd)
	return adminCmd
}

func teamPipeline(remove bool) *executor.ContextBuilder {
	return executor.New().
		WithConfig().
		WithToken(executor.TokenRequired).
		Step(executor.NewStep(changeKey, "Fetching collab").Func(prepareTeamChange)).
		Step(executor.NewStep(appliedKey, "").Silent().Func(func(ctx *executor.Context, _ chan<- string) (bool, error) {
			if !remove {
				return true, nil
			}
			return confirmRemoval(ctx)
		})).
		Step(executor.NewStep(updateKey, "Updating team").Func(func(ctx *executor.Context, _ chan<- string) (struct{}, error) {
			if !executor.Get(ctx, appliedKey) {
				return struct{}{}, nil
			}
			change := executor.Get(ctx, changeKey)
			client := collab.New(ctx.Config.CollabURL, ctx.RawToken(), ctx.Logger)
			if remove {
				return struct{}{}, client.RemoveTeam(ctx.Ctx, change.id, change.user, change.role)
			}
			return struct{}{}, client.AddTeam(ctx.Ctx, change.id, change.user, change.role)
		})).
		Display(func(ctx *executor.Context) {
			printTeamChange(ctx, remove)
		})
}

func prepareTeamChange(ctx *executor.Context, _ chan<- string) (*teamChange, error) {
	if err := iam.RequireScopes(ctx.Token, collab.RequiredScopes...); err != nil {
		return nil, fmt.Errorf("%w; run 'ebrains iam auth login --scope %s'", err, "clb.wiki.read,clb.wiki.write")
	}
	roleName, _ := ctx.Cmd.Flags().GetString(roleFlag)
	role, err := collab.ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	user, id := ctx.Args[0], ctx.Args[1]
	c, err := collab.New(ctx.Config.CollabURL, ctx.RawToken(), ctx.Logger).Get(ctx.Ctx, id)
	if err != nil {
		return nil, err
	}
	return &teamChange{user: user, collab: c, id: id, role: role}, nil
}

func confirmRemoval(ctx *executor.Context) (bool, error) {
	if yes, _ := ctx.Cmd.Flags().GetBool(flags.YesFlag); yes {
		return true, nil
	}
	if !ui.IsTerminal(os.Stdin) {
		return false, errors.New("refusing to remove without confirmation; pass --yes")
	}
	change := executor.Get(ctx, changeKey)
	ok, err := prompt.Confirm(fmt.Sprintf("Remove %s as %s from %s?", change.user, change.role, collabLabel(change)))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, prompt.ErrUserCancelled
	}
	return true, nil
}

func collabLabel(change *teamChange) string {
	if change.collab.Title != "" {
		return change.collab.Title
	}
	return change.id
}

func printTeamChange(ctx *executor.Context, removed bool) {
	change := executor.Get(ctx, changeKey)
	role := cases.Title(language.English).String(string(change.role))

	rb := response.New(ctx.Stderr()).
		Title(collabLabel(change)).
		Summary("Collab", change.id).
		Summary("User", change.user).
		Summary("Role", role)
	if removed {
		rb.FooterSuccess("Removed %s from %s", change.user, role)
	} else {
		rb.FooterSuccess("Added %s as %s", change.user, role)
	}
	rb.Display()
}
