package common

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func InitFlags(command string, cmd *cobra.Command) {
	switch command {
	case "cleanup-users", "lambda":
		initCleanupFlags(cmd)
	case "enforce-password-policy":
		initPasswordPolicyFlags(cmd)
	}
}

func initCleanupFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dry-run", "d", false, "Only log the warnings and deletions that would happen")
	cmd.Flags().StringP("email-sender", "s", DefaultEmailSender, "Sender address of the warning emails")
	cmd.Flags().StringP("ses-region", "r", DefaultSESRegion, "Region of the SES endpoint used to send warnings")
}

func initPasswordPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dry-run", "d", false, "Only log the accounts the policy would be applied to")
}

// BindFlags makes explicitly set flags take precedence over the environment.
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	for _, name := range []string{"dry-run", "email-sender", "ses-region"} {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			_ = v.BindPFlag(flagKey(name), flag)
		}
	}
}

func flagKey(name string) string {
	switch name {
	case "dry-run":
		return "dry_run"
	case "email-sender":
		return "email_sender"
	case "ses-region":
		return "ses_region"
	}
	return name
}
