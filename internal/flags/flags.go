package flags

import "github.com/spf13/cobra"

const (
	BucketNameFlag = "bucket-name"
	VerboseFlag    = "verbose"
	YesFlag        = "yes"
)

func RegisterBucketName(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(BucketNameFlag, "n", "", "Name of the bucket (collab) to operate on")
	_ = cmd.MarkPersistentFlagRequired(BucketNameFlag)
}

func RegisterVerbose(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(VerboseFlag, false, "Log HTTP and token resolution details to stderr")
}

func RegisterConfirmation(cmd *cobra.Command) {
	cmd.Flags().BoolP(YesFlag, "y", false, "Skip confirmation prompt")
}
