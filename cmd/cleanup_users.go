package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Qovery/pleco-iam/pkg"
	"github.com/Qovery/pleco-iam/pkg/common"
)

const banner = " ____  _     _____ ____ ___  \n|  _ \\| |   | ____/ ___/ _ \\ \n| |_) | |   |  _|| |  | | | |\n|  __/| |___| |__| |__| |_| |\n|_|   |_____|_____\\____\\___/\nIAM by Qovery"

var cleanupUsersCmd = &cobra.Command{
	Use:   "cleanup-users",
	Short: "Warn and delete inactive IAM users in every account of the organization",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig(cmd)
		_ = setLogLevel(config.LogLevel)

		fmt.Println("")
		fmt.Println(banner)
		fmt.Println("")
		log.Infof("Starting Pleco IAM %s", GetCurrentVersion())

		pkg.StartUserCleanup(context.Background(), config)
	},
}

func init() {
	rootCmd.AddCommand(cleanupUsersCmd)
	common.InitFlags(cleanupUsersCmd.Use, cleanupUsersCmd)
}
