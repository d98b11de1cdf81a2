package cmd

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Qovery/pleco-iam/pkg"
	"github.com/Qovery/pleco-iam/pkg/common"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve the IAM user cleanup as an AWS Lambda function",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig(cmd)
		_ = setLogLevel(config.LogLevel)

		log.Infof("Starting Pleco IAM %s in Lambda", GetCurrentVersion())

		lambda.Start(newCleanupHandler(config))
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
	common.InitFlags(lambdaCmd.Use, lambdaCmd)
}

// The scheduled event carries nothing the cleanup needs.
func newCleanupHandler(config common.Config) func(ctx context.Context, event events.CloudWatchEvent) (pkg.RunStatus, error) {
	return func(ctx context.Context, event events.CloudWatchEvent) (pkg.RunStatus, error) {
		log.Debugf("Invoked by event %s from %s.", event.ID, event.Source)
		return pkg.StartUserCleanup(ctx, config), nil
	}
}
