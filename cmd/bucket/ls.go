package bucket

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/dataproxy"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/pagination"
	"github.com/xgui3783/ebrains-util/internal/ui"
)

const (
	prefixFlag = "prefix"
	jsonFlag   = "json"

	emptyListingMessage = "Could not find any file."
)

var objectsKey = executor.NewKey[[]dataproxy.Object]("objects")

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List objects in the bucket",
		Args:  cobra.NoArgs,
		RunE: executor.New().
			WithConfig().
			WithToken(executor.TokenOptional).
			WithBucket().
			WithPagination().
			Step(executor.NewStep(objectsKey, "Listing objects").Func(listObjects)).
			Display(printObjects).
			RunE(),
	}
	cmd.Flags().String(prefixFlag, "", "Only list objects whose name starts with this prefix")
	cmd.Flags().Bool(jsonFlag, false, "Print a JSON array of names")
	pagination.RegisterFlags(cmd)
	return cmd
}

func listObjects(ctx *executor.Context, _ chan<- string) ([]dataproxy.Object, error) {
	prefix, _ := ctx.Cmd.Flags().GetString(prefixFlag)
	return ctx.Bucket.List(ctx.Ctx, prefix)
}

func printObjects(ctx *executor.Context) {
	objects, info := pagination.Paginate(executor.Get(ctx, objectsKey), ctx.Pagination)
	if len(objects) == 0 {
		_, _ = fmt.Fprintln(ctx.Stderr(), emptyListingMessage)
		return
	}

	names := make([]string, len(objects))
	for i, o := range objects {
		names[i] = o.Name
	}

	if asJSON, _ := ctx.Cmd.Flags().GetBool(jsonFlag); asJSON {
		out, _ := json.Marshal(names)
		_, _ = fmt.Fprintln(ctx.Stdout(), string(out))
	} else {
		_, _ = fmt.Fprintln(ctx.Stdout(), strings.Join(names, "\n"))
	}

	if info.Limit > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr(), ui.Muted(info.FooterMessage("object(s)")))
	}
}
