package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Qovery/pleco-iam/pkg"
	"github.com/Qovery/pleco-iam/pkg/common"
)

// Per-account failures are logged only and never change the exit code.
var passwordPolicyCmd = &cobra.Command{
	Use:   "enforce-password-policy",
	Short: "Apply the organization password policy to every member account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig(cmd)
		_ = setLogLevel(config.LogLevel)

		log.Infof("Starting Pleco IAM %s", GetCurrentVersion())

		pkg.StartPasswordPolicy(context.Background(), config)
	},
}

func init() {
	rootCmd.AddCommand(passwordPolicyCmd)
	common.InitFlags(passwordPolicyCmd.Use, passwordPolicyCmd)
}
