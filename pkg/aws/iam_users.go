package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/Qovery/pleco-iam/pkg/common"
)

type User struct {
	Name             string
	PasswordLastUsed *time.Time
	DaysInactive     int
}

type UserCleanupReport struct {
	Users           int
	NeverLoggedIn   int
	Warned          int
	WarningsFailed  int
	MissingEmail    int
	Deleted         int
	DeletionsFailed int
	UsersFailed     int
	WouldWarn       int
	WouldDelete     int
}

func (r *UserCleanupReport) add(other UserCleanupReport) {
	r.Users += other.Users
	r.NeverLoggedIn += other.NeverLoggedIn
	r.Warned += other.Warned
	r.WarningsFailed += other.WarningsFailed
	r.MissingEmail += other.MissingEmail
	r.Deleted += other.Deleted
	r.DeletionsFailed += other.DeletionsFailed
	r.UsersFailed += other.UsersFailed
	r.WouldWarn += other.WouldWarn
	r.WouldDelete += other.WouldDelete
}

type InactiveUsersProcessor struct {
	Notifier WarningSender
	DryRun   bool
	// Limiter paces mutating IAM calls.
	Limiter ratelimit.Limiter
	Now     func() time.Time
}

func NewInactiveUsersProcessor(notifier WarningSender, options AwsOptions) *InactiveUsersProcessor {
	return &InactiveUsersProcessor{
		Notifier: notifier,
		DryRun:   options.DryRun,
		Limiter:  ratelimit.New(5),
		Now:      time.Now,
	}
}

type userDeletionStep struct {
	name string
	run  func(ctx context.Context, iamSession iamiface.IAMAPI, limiter ratelimit.Limiter, userName string) error
}

// Steps run in this order and each one runs even if a previous one failed.
var userDeletionSteps = []userDeletionStep{
	{name: "login profile", run: deleteUserLoginProfile},
	{name: "attached policies", run: detachUserPolicies},
	{name: "access keys", run: deleteUserAccessKeys},
	{name: "user", run: deleteUserRecord},
}

func getUsers(ctx context.Context, iamSession iamiface.IAMAPI) ([]string, error) {
	var userNames []string

	err := iamSession.ListUsersPagesWithContext(ctx, &iam.ListUsersInput{},
		func(page *iam.ListUsersOutput, lastPage bool) bool {
			for _, user := range page.Users {
				userNames = append(userNames, aws.StringValue(user.UserName))
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return userNames, nil
}

func getUser(ctx context.Context, iamSession iamiface.IAMAPI, userName string) (User, error) {
	result, err := iamSession.GetUserWithContext(ctx, &iam.GetUserInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", userName, err)
	}

	user := User{Name: userName}
	if result.User != nil && result.User.PasswordLastUsed != nil {
		lastUsed := result.User.PasswordLastUsed.UTC()
		user.PasswordLastUsed = &lastUsed
	}

	return user, nil
}

func getUserTags(ctx context.Context, iamSession iamiface.IAMAPI, userName string) ([]*iam.Tag, error) {
	var tags []*iam.Tag
	var marker *string

	for {
		result, err := iamSession.ListUserTagsWithContext(ctx, &iam.ListUserTagsInput{
			UserName: aws.String(userName),
			Marker:   marker,
		})
		if err != nil {
			return nil, fmt.Errorf("list tags of user %s: %w", userName, err)
		}

		tags = append(tags, result.Tags...)

		if !aws.BoolValue(result.IsTruncated) || result.Marker == nil {
			break
		}
		marker = result.Marker
	}

	return tags, nil
}

func getUserAccessKeysIds(ctx context.Context, iamSession iamiface.IAMAPI, userName string) ([]string, error) {
	var accessKeysIds []string

	err := iamSession.ListAccessKeysPagesWithContext(ctx, &iam.ListAccessKeysInput{
		UserName: aws.String(userName),
	}, func(page *iam.ListAccessKeysOutput, lastPage bool) bool {
		for _, accessKey := range page.AccessKeyMetadata {
			accessKeysIds = append(accessKeysIds, aws.StringValue(accessKey.AccessKeyId))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list access keys of user %s: %w", userName, err)
	}

	return accessKeysIds, nil
}

func getUserAttachedPoliciesArns(ctx context.Context, iamSession iamiface.IAMAPI, userName string) ([]string, error) {
	var policiesArns []string

	err := iamSession.ListAttachedUserPoliciesPagesWithContext(ctx, &iam.ListAttachedUserPoliciesInput{
		UserName: aws.String(userName),
	}, func(page *iam.ListAttachedUserPoliciesOutput, lastPage bool) bool {
		for _, policy := range page.AttachedPolicies {
			policiesArns = append(policiesArns, aws.StringValue(policy.PolicyArn))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list attached policies of user %s: %w", userName, err)
	}

	return policiesArns, nil
}

func deleteUserLoginProfile(ctx context.Context, iamSession iamiface.IAMAPI, limiter ratelimit.Limiter, userName string) error {
	limiter.Take()
	_, err := iamSession.DeleteLoginProfileWithContext(ctx, &iam.DeleteLoginProfileInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == iam.ErrCodeNoSuchEntityException {
			log.Debugf("User %s has no login profile.", userName)
			return nil
		}
		return fmt.Errorf("delete login profile of user %s: %w", userName, err)
	}

	return nil
}

func detachUserPolicies(ctx context.Context, iamSession iamiface.IAMAPI, limiter ratelimit.Limiter, userName string) error {
	policiesArns, err := getUserAttachedPoliciesArns(ctx, iamSession, userName)
	if err != nil {
		return err
	}

	var errs []error
	for _, policyArn := range policiesArns {
		limiter.Take()
		_, err := iamSession.DetachUserPolicyWithContext(ctx, &iam.DetachUserPolicyInput{
			UserName:  aws.String(userName),
			PolicyArn: aws.String(policyArn),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("detach policy %s from user %s: %w", policyArn, userName, err))
		}
	}

	return errors.Join(errs...)
}

func deleteUserAccessKey(ctx context.Context, iamSession iamiface.IAMAPI, limiter ratelimit.Limiter, userName string, accessKeyId string) error {
	limiter.Take()
	_, err := iamSession.DeleteAccessKeyWithContext(ctx, &iam.DeleteAccessKeyInput{
		UserName:    aws.String(userName),
		AccessKeyId: aws.String(accessKeyId),
	})
	if err != nil {
		return fmt.Errorf("delete access key %s of user %s: %w", accessKeyId, userName, err)
	}

	return nil
}

func deleteUserAccessKeys(ctx context.Context, iamSession iamiface.IAMAPI, limiter ratelimit.Limiter, userName string) error {
	accessKeysIds, err := getUserAccessKeysIds(ctx, iamSession, userName)
	if err != nil {
		return err
	}

	var errs []error
	for _, accessKeyId := range accessKeysIds {
		if err := deleteUserAccessKey(ctx, iamSession, limiter, userName, accessKeyId); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func deleteUserRecord(ctx context.Context, iamSession iamiface.IAMAPI, limiter ratelimit.Limiter, userName string) error {
	limiter.Take()
	_, err := iamSession.DeleteUserWithContext(ctx, &iam.DeleteUserInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", userName, err)
	}

	return nil
}

// deleteUser runs every deletion step and returns the errors of the failed
// ones. A partially deleted user is left as is.
func (p *InactiveUsersProcessor) deleteUser(ctx context.Context, iamSession iamiface.IAMAPI, userName string) []error {
	var errs []error

	for _, step := range userDeletionSteps {
		if err := step.run(ctx, iamSession, p.Limiter, userName); err != nil {
			log.Errorf("Can't delete %s of user %s: %s", step.name, userName, err.Error())
			errs = append(errs, err)
		}
	}

	return errs
}

func (p *InactiveUsersProcessor) warnUser(ctx context.Context, iamSession iamiface.IAMAPI, user User, report *UserCleanupReport) {
	tags, err := getUserTags(ctx, iamSession, user.Name)
	if err != nil {
		log.Errorf("Can't get tags of user %s: %s", user.Name, err.Error())
		report.UsersFailed++
		return
	}

	email := common.GetTagValue(tags, common.EmailTagKey)
	if email == "" {
		log.Warnf("No email found for user %s, can't send warning.", user.Name)
		report.MissingEmail++
		return
	}

	if p.DryRun {
		log.Infof("User %s (%d days inactive) would be warned at %s.", user.Name, user.DaysInactive, email)
		report.WouldWarn++
		return
	}

	if err := p.Notifier.SendWarning(ctx, email, user.Name, user.DaysInactive); err != nil {
		report.WarningsFailed++
		return
	}
	report.Warned++
}

// Process warns or deletes the inactive users of one account. Failures are
// logged per user and never stop the remaining users.
func (p *InactiveUsersProcessor) Process(ctx context.Context, iamSession iamiface.IAMAPI, accountId string) UserCleanupReport {
	report := UserCleanupReport{}
	logger := log.WithField("account", accountId)

	userNames, err := getUsers(ctx, iamSession)
	if err != nil {
		logger.Errorf("Can't process users in account %s: %s", accountId, err.Error())
		return report
	}
	report.Users = len(userNames)

	now := p.Now().UTC()
	var toDelete []User

	for _, userName := range userNames {
		user, err := getUser(ctx, iamSession, userName)
		if err != nil {
			logger.Errorf("Can't get user %s: %s", userName, err.Error())
			report.UsersFailed++
			continue
		}

		if user.PasswordLastUsed == nil {
			logger.Infof("User %s has never logged in. Skipping...", userName)
			report.NeverLoggedIn++
			continue
		}

		user.DaysInactive = common.InactiveDays(now, *user.PasswordLastUsed)
		switch common.ActionForInactivity(user.DaysInactive) {
		case common.WarnUser:
			p.warnUser(ctx, iamSession, user, &report)
		case common.DeleteUser:
			toDelete = append(toDelete, user)
		default:
			logger.Debugf("User %s is active (%d days since last login).", userName, user.DaysInactive)
		}
	}

	count, start := common.ElemToDeleteFormattedInfos("inactive IAM user", len(toDelete), accountId)
	logger.Info(count)

	if len(toDelete) == 0 {
		return report
	}

	if p.DryRun {
		for _, user := range toDelete {
			logger.Infof("User %s would be deleted due to %d days of inactivity.", user.Name, user.DaysInactive)
		}
		report.WouldDelete += len(toDelete)
		return report
	}

	logger.Info(start)

	for _, user := range toDelete {
		logger.Infof("Deleting user %s due to %d days of inactivity.", user.Name, user.DaysInactive)
		if errs := p.deleteUser(ctx, iamSession, user.Name); len(errs) > 0 {
			report.DeletionsFailed++
			continue
		}
		logger.Infof("User %s deleted.", user.Name)
		report.Deleted++
	}

	return report
}
