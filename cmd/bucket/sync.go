package bucket

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/db"
	"github.com/xgui3783/ebrains-util/internal/envscope"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/flags"
	"github.com/xgui3783/ebrains-util/internal/syncer"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"github.com/xgui3783/ebrains-util/internal/ui/response"
)

const hashFlag = "hash"

var syncKey = executor.NewKey[*syncer.Result]("sync")

func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <src> [dst]",
		Short: "Upload new or changed files under src to dst (default: bucket root)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: executor.New().
			WithConfig().
			WithToken(executor.TokenRequired).
			Step(executor.NewStep(syncKey, "Syncing").Func(runSync)).
			Display(printSync).
			RunE(),
	}
	cmd.Flags().Bool(hashFlag, false, "Hash local files in parallel before comparing with the bucket")
	return cmd
}

func runSync(ctx *executor.Context, progress chan<- string) (*syncer.Result, error) {
	src, dst := ctx.Args[0], "."
	if len(ctx.Args) > 1 {
		dst = ctx.Args[1]
	}
	bucket, _ := ctx.Cmd.Flags().GetString(flags.BucketNameFlag)
	hash, _ := ctx.Cmd.Flags().GetBool(hashFlag)

	store, err := db.Open(ctx.Config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("Sync failed: %w", err)
	}
	defer store.Close()

	restore := envscope.Override(syncer.TokenEnv, ctx.RawToken())
	defer restore()

	engine := syncer.NewEngine(ctx.Config.DataProxyURL, store, ctx.Logger)
	engine.OnUpload = func(name string, size int64) {
		if progress != nil {
			progress <- fmt.Sprintf("Uploaded %s (%s)", name, ui.FormatBytes(size))
		}
	}
	res, err := engine.Sync(ctx.Ctx, bucket, src, dst, syncer.Options{Token: ctx.RawToken(), Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("Sync failed: %w", err)
	}
	return res, nil
}

func printSync(ctx *executor.Context) {
	res := executor.Get(ctx, syncKey)
	for _, name := range res.Uploaded {
		_, _ = fmt.Fprintln(ctx.Stdout(), name)
	}
	response.New(ctx.Stderr()).
		Summary("Uploaded", len(res.Uploaded)).
		Summary("Unchanged", res.Skipped).
		FooterSuccess("Sync complete %s", ui.Muted(fmt.Sprintf("(took %v)", ctx.Duration))).
		Display()
}
