package bucket

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/transfer"
	"github.com/xgui3783/ebrains-util/internal/ui"
)

const (
	progressFlag = "progress"
	headerFlag   = "header"
)

type uploadResult struct {
	dest  string
	bytes int64
}

var uploadKey = executor.NewKey[uploadResult]("upload")

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <filename> <dest>",
		Short: "Upload a local file, or - for stdin, to dest in the bucket",
		Args:  cobra.ExactArgs(2),
		RunE: executor.New().
			WithConfig().
			WithToken(executor.TokenOptional).
			WithBucket().
			Step(executor.NewStep(uploadKey, "").Silent().Func(upload)).
			Display(func(ctx *executor.Context) {
				res := executor.Get(ctx, uploadKey)
				_, _ = fmt.Fprintln(ctx.Stderr(), ui.Success(fmt.Sprintf("Uploaded %s to %s", ui.FormatBytes(res.bytes), res.dest)))
			}).
			RunE(),
	}
	cmd.Flags().Bool(progressFlag, false, "Show a progress bar")
	cmd.Flags().StringArrayP(headerFlag, "H", nil, "Extra header for the object, as name:value (repeatable)")
	return cmd
}

func upload(ctx *executor.Context, _ chan<- string) (uploadResult, error) {
	filename, dest := ctx.Args[0], ctx.Args[1]

	rawHeaders, _ := ctx.Cmd.Flags().GetStringArray(headerFlag)
	headers, err := transfer.ParseHeaders(rawHeaders)
	if err != nil {
		return uploadResult{}, err
	}
	showProgress, _ := ctx.Cmd.Flags().GetBool(progressFlag)

	var body transfer.Sized
	if filename == stdioPath {
		if showProgress {
			return uploadResult{}, errors.New("--progress cannot be used when uploading from stdin")
		}
		// The upload URL needs a Content-Length, so stdin is read in full.
		data, err := io.ReadAll(ctx.Cmd.InOrStdin())
		if err != nil {
			return uploadResult{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		body = transfer.NewProgressReader(bytes.NewReader(data), int64(len(data)), nil)
	} else {
		var update func(read, total int64)
		if showProgress {
			bar := ui.NewProgress(ctx.Stderr(), filename)
			defer bar.Done()
			update = bar.Update
		}
		f, err := transfer.OpenProgress(filename, update)
		if err != nil {
			return uploadResult{}, err
		}
		defer f.Close()
		body = f
	}

	size := body.Len()
	if err := ctx.Bucket.Upload(ctx.Ctx, dest, body, size, headers); err != nil {
		return uploadResult{}, err
	}
	return uploadResult{dest: dest, bytes: size}, nil
}
