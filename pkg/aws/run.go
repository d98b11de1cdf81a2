package aws

import (
	"context"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	"github.com/sirupsen/logrus"

	"github.com/Qovery/pleco-iam/pkg/common"
)

type AwsOptions struct {
	DryRun      bool
	EmailSender string
	SESRegion   string
}

type AWSSessions struct {
	Organizations organizationsiface.OrganizationsAPI
	Assumer       IAMAssumer
}

type RunReport struct {
	AccountsListed    int
	AccountsSkipped   int
	AccountsProcessed int
	PoliciesApplied   int
	PoliciesFailed    int
	Users             UserCleanupReport
}

type funcProcessAccount func(ctx context.Context, iamSession iamiface.IAMAPI, account Account)

func NewAWSSessions(baseSession *session.Session, sessionName string) AWSSessions {
	return AWSSessions{
		Organizations: organizations.New(baseSession),
		Assumer:       NewRoleAssumer(baseSession, common.RoleName, sessionName),
	}
}

// runOnAccounts calls process once for every account whose role could be
// assumed. Accounts are handled one after the other.
func runOnAccounts(ctx context.Context, sessions AWSSessions, report *RunReport, process funcProcessAccount) {
	accounts := ListAccounts(ctx, sessions.Organizations)
	report.AccountsListed = len(accounts)

	logrus.Infof("Found %d accounts in the organization.", len(accounts))

	for _, account := range accounts {
		logrus.Infof("Processing account: %s (%s)", account.Name, account.Id)

		iamSession := sessions.Assumer.AssumeIAM(ctx, account.Id)
		if iamSession == nil {
			report.AccountsSkipped++
			continue
		}

		process(ctx, iamSession, account)
		report.AccountsProcessed++
	}
}

func RunUserCleanup(ctx context.Context, sessions AWSSessions, processor *InactiveUsersProcessor) RunReport {
	report := RunReport{}

	runOnAccounts(ctx, sessions, &report, func(ctx context.Context, iamSession iamiface.IAMAPI, account Account) {
		report.Users.add(processor.Process(ctx, iamSession, account.Id))
	})

	logrus.WithFields(logrus.Fields{
		"accounts":        report.AccountsListed,
		"skipped":         report.AccountsSkipped,
		"users":           report.Users.Users,
		"warned":          report.Users.Warned,
		"deleted":         report.Users.Deleted,
		"deletion_errors": report.Users.DeletionsFailed,
	}).Info("IAM user cleanup completed.")

	return report
}

func RunPasswordPolicy(ctx context.Context, sessions AWSSessions, policy PasswordPolicy, options AwsOptions) RunReport {
	report := RunReport{}

	runOnAccounts(ctx, sessions, &report, func(ctx context.Context, iamSession iamiface.IAMAPI, account Account) {
		if err := EnforcePasswordPolicy(ctx, iamSession, account.Id, policy, options.DryRun); err != nil {
			report.PoliciesFailed++
			return
		}
		report.PoliciesApplied++
	})

	logrus.WithFields(logrus.Fields{
		"accounts": report.AccountsListed,
		"skipped":  report.AccountsSkipped,
		"applied":  report.PoliciesApplied,
		"failed":   report.PoliciesFailed,
	}).Info("Password policy enforcement completed.")

	return report
}
