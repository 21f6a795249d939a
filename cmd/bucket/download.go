package bucket

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/transfer"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"go.uber.org/zap"
)

const (
	forceFlag = "force"

	// stdioPath selects stdout for downloads and stdin for uploads.
	stdioPath = "-"
)

type downloadResult struct {
	dest  string
	bytes int64
}

var downloadKey = executor.NewKey[downloadResult]("download")

func newDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <filename> [dest]",
		Short: "Download an object; dest may be a file, a directory or - for stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: executor.New().
			WithConfig().
			WithToken(executor.TokenOptional).
			WithBucket().
			Step(executor.NewStep(downloadKey, "").Silent().Func(download)).
			Display(func(ctx *executor.Context) {
				res := executor.Get(ctx, downloadKey)
				if res.dest == stdioPath {
					return
				}
				_, _ = fmt.Fprintln(ctx.Stderr(), ui.Success(fmt.Sprintf("Downloaded %s to %s", ui.FormatBytes(res.bytes), res.dest)))
			}).
			RunE(),
	}
	cmd.Flags().BoolP(forceFlag, "f", false, "Overwrite an existing destination file")
	return cmd
}

func download(ctx *executor.Context, _ chan<- string) (downloadResult, error) {
	filename := ctx.Args[0]
	dest := ""
	if len(ctx.Args) > 1 {
		dest = ctx.Args[1]
	}

	if dest == stdioPath {
		body, err := ctx.Bucket.Open(ctx.Ctx, filename)
		if err != nil {
			return downloadResult{}, err
		}
		defer body.Close()
		n, err := io.Copy(ctx.Stdout(), body)
		return downloadResult{dest: stdioPath, bytes: n}, err
	}

	force, _ := ctx.Cmd.Flags().GetBool(forceFlag)
	target, err := transfer.DestFile(filename, dest, force)
	if err != nil {
		return downloadResult{}, err
	}

	body, err := ctx.Bucket.Open(ctx.Ctx, filename)
	if err != nil {
		return downloadResult{}, err
	}
	defer body.Close()

	var src io.Reader = body
	if f, ok := ctx.Stderr().(*os.File); ok && ui.IsTerminal(f) {
		bar := ui.NewProgress(f, filename)
		defer bar.Done()
		src = transfer.NewProgressReader(body, body.Size, bar.Update)
	}

	n, err := transfer.WriteAtomic(target, src)
	if err != nil {
		return downloadResult{}, fmt.Errorf("failed to download %s: %w", filename, err)
	}
	ctx.Logger.Debug("download complete", zap.String("object", filename), zap.String("dest", target), zap.Int64("bytes", n))
	return downloadResult{dest: target, bytes: n}, nil
}
