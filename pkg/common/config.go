package common

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	// WarningDays is the inactivity after which a user gets a warning email.
	WarningDays = 60
	// DeletionDays is the inactivity after which a user is deleted.
	DeletionDays = 90

	// RoleName is the role assumed in every member account.
	RoleName = "OrganizationAccountAccessRole"

	CleanupSessionName        = "IAMUserCleanup"
	PasswordPolicySessionName = "PasswordPolicyUpdate"

	EmailTagKey = "email"

	DefaultSESRegion   = "us-east-1"
	DefaultEmailSender = "noreply@yourcompany.com"
)

type Config struct {
	SESRegion   string
	EmailSender string
	DryRun      bool
	LogLevel    string
}

// SetDefaults registers the environment keys and their fallbacks on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ses_region", DefaultSESRegion)
	v.SetDefault("email_sender", DefaultEmailSender)
	v.SetDefault("dry_run", false)
	v.SetDefault("level", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("level", "LOG_LEVEL")
}

func LoadConfig(v *viper.Viper) Config {
	return Config{
		SESRegion:   v.GetString("ses_region"),
		EmailSender: v.GetString("email_sender"),
		DryRun:      v.GetBool("dry_run"),
		LogLevel:    v.GetString("level"),
	}
}
