package pkg

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	log "github.com/sirupsen/logrus"

	"github.com/Qovery/pleco-iam/pkg/aws"
	"github.com/Qovery/pleco-iam/pkg/common"
)

const (
	CleanupCompletedStatus = "Completed IAM user cleanup"
	CleanupFailedStatus    = "IAM user cleanup could not start"
)

// RunStatus is what the scheduled cleanup returns to its caller.
type RunStatus struct {
	Status            string `json:"status"`
	AccountsListed    int    `json:"accounts_listed"`
	AccountsSkipped   int    `json:"accounts_skipped"`
	AccountsProcessed int    `json:"accounts_processed"`
	UsersWarned       int    `json:"users_warned"`
	UsersDeleted      int    `json:"users_deleted"`
	DryRun            bool   `json:"dry_run"`
}

func NewRunStatus(report aws.RunReport, dryRun bool) RunStatus {
	return RunStatus{
		Status:            CleanupCompletedStatus,
		AccountsListed:    report.AccountsListed,
		AccountsSkipped:   report.AccountsSkipped,
		AccountsProcessed: report.AccountsProcessed,
		UsersWarned:       report.Users.Warned,
		UsersDeleted:      report.Users.Deleted,
		DryRun:            dryRun,
	}
}

func logDryRun(dryRun bool) {
	if dryRun {
		log.Info("Dry run mode enabled")
	} else {
		log.Warn("Dry run mode disabled")
	}
}

// baseSession signs with the caller's own credentials. IAM and Organizations
// are global, so a missing region falls back to the SES default.
func baseSession() (*session.Session, error) {
	sess, err := aws.CreateSessionWithoutRegion()
	if err != nil {
		log.Errorf("Can't create AWS session: %s", err)
		return nil, err
	}

	if awssdk.StringValue(sess.Config.Region) == "" {
		sess = sess.Copy(awssdk.NewConfig().WithRegion(common.DefaultSESRegion))
	}

	return sess, nil
}

func StartUserCleanup(ctx context.Context, config common.Config) RunStatus {
	logDryRun(config.DryRun)
	log.Infof("Warning after %d days of inactivity, deletion after %d days.", common.WarningDays, common.DeletionDays)

	sess, err := baseSession()
	if err != nil {
		return RunStatus{Status: CleanupFailedStatus, DryRun: config.DryRun}
	}

	options := aws.AwsOptions{
		DryRun:      config.DryRun,
		EmailSender: config.EmailSender,
		SESRegion:   config.SESRegion,
	}

	notifier := aws.NewNotifier(sess, options.SESRegion, options.EmailSender)
	processor := aws.NewInactiveUsersProcessor(notifier, options)
	sessions := aws.NewAWSSessions(sess, common.CleanupSessionName)

	report := aws.RunUserCleanup(ctx, sessions, processor)

	return NewRunStatus(report, config.DryRun)
}

func StartPasswordPolicy(ctx context.Context, config common.Config) {
	logDryRun(config.DryRun)

	sess, err := baseSession()
	if err != nil {
		return
	}

	options := aws.AwsOptions{DryRun: config.DryRun}
	sessions := aws.NewAWSSessions(sess, common.PasswordPolicySessionName)

	aws.RunPasswordPolicy(ctx, sessions, aws.OrganizationPasswordPolicy(), options)
}
