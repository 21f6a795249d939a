package bucket

import (
	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/flags"
)

func NewCommand() *cobra.Command {
	bucketCmd := &cobra.Command{
		Use:   "bucket",
		Short: "List, transfer and sync objects in a data-proxy bucket",
	}
	flags.RegisterBucketName(bucketCmd)

	bucketCmd.AddCommand(
		newListCommand(),
		newDownloadCommand(),
		newUploadCommand(),
		newSyncCommand(),
	)
	return bucketCmd
}
