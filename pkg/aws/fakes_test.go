package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"go.uber.org/ratelimit"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) *time.Time {
	t := testNow.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

type fakeUser struct {
	name     string
	lastUsed *time.Time
	tags     []*iam.Tag
	policies []string
	keys     []string
}

func emailTag(email string) []*iam.Tag {
	return []*iam.Tag{
		{Key: aws.String("team"), Value: aws.String("platform")},
		{Key: aws.String("email"), Value: aws.String(email)},
	}
}

// fakeIAM serves users two per page and records every call it receives.
type fakeIAM struct {
	iamiface.IAMAPI

	users []fakeUser

	listUsersErr          error
	getUserErr            map[string]error
	listTagsErr           error
	deleteLoginProfileErr error
	detachErr             error
	deleteKeyErr          error
	deleteUserErr         error
	passwordPolicyErr     error

	calls            []string
	passwordPolicies []*iam.UpdateAccountPasswordPolicyInput
}

func (f *fakeIAM) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeIAM) user(name string) (fakeUser, bool) {
	for _, u := range f.users {
		if u.name == name {
			return u, true
		}
	}
	return fakeUser{}, false
}

func (f *fakeIAM) callsWithPrefix(prefix string) []string {
	var matching []string
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			matching = append(matching, call)
		}
	}
	return matching
}

func (f *fakeIAM) ListUsersPagesWithContext(ctx aws.Context, in *iam.ListUsersInput, fn func(*iam.ListUsersOutput, bool) bool, opts ...request.Option) error {
	f.record("ListUsers")
	if f.listUsersErr != nil {
		return f.listUsersErr
	}

	for start := 0; start < len(f.users); start += 2 {
		end := start + 2
		if end > len(f.users) {
			end = len(f.users)
		}
		page := &iam.ListUsersOutput{}
		for _, u := range f.users[start:end] {
			page.Users = append(page.Users, &iam.User{UserName: aws.String(u.name)})
		}
		if !fn(page, end == len(f.users)) {
			break
		}
	}
	return nil
}

func (f *fakeIAM) GetUserWithContext(ctx aws.Context, in *iam.GetUserInput, opts ...request.Option) (*iam.GetUserOutput, error) {
	name := aws.StringValue(in.UserName)
	f.record("GetUser:%s", name)
	if err := f.getUserErr[name]; err != nil {
		return nil, err
	}

	u, ok := f.user(name)
	if !ok {
		return nil, errors.New("no such user")
	}
	return &iam.GetUserOutput{User: &iam.User{
		UserName:         aws.String(name),
		PasswordLastUsed: u.lastUsed,
	}}, nil
}

func (f *fakeIAM) ListUserTagsWithContext(ctx aws.Context, in *iam.ListUserTagsInput, opts ...request.Option) (*iam.ListUserTagsOutput, error) {
	name := aws.StringValue(in.UserName)
	f.record("ListUserTags:%s", name)
	if f.listTagsErr != nil {
		return nil, f.listTagsErr
	}

	u, _ := f.user(name)
	return &iam.ListUserTagsOutput{Tags: u.tags, IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeIAM) DeleteLoginProfileWithContext(ctx aws.Context, in *iam.DeleteLoginProfileInput, opts ...request.Option) (*iam.DeleteLoginProfileOutput, error) {
	f.record("DeleteLoginProfile:%s", aws.StringValue(in.UserName))
	if f.deleteLoginProfileErr != nil {
		return nil, f.deleteLoginProfileErr
	}
	return &iam.DeleteLoginProfileOutput{}, nil
}

func (f *fakeIAM) ListAttachedUserPoliciesPagesWithContext(ctx aws.Context, in *iam.ListAttachedUserPoliciesInput, fn func(*iam.ListAttachedUserPoliciesOutput, bool) bool, opts ...request.Option) error {
	name := aws.StringValue(in.UserName)
	f.record("ListAttachedUserPolicies:%s", name)

	u, _ := f.user(name)
	page := &iam.ListAttachedUserPoliciesOutput{}
	for _, arn := range u.policies {
		page.AttachedPolicies = append(page.AttachedPolicies, &iam.AttachedPolicy{PolicyArn: aws.String(arn)})
	}
	fn(page, true)
	return nil
}

func (f *fakeIAM) DetachUserPolicyWithContext(ctx aws.Context, in *iam.DetachUserPolicyInput, opts ...request.Option) (*iam.DetachUserPolicyOutput, error) {
	f.record("DetachUserPolicy:%s:%s", aws.StringValue(in.UserName), aws.StringValue(in.PolicyArn))
	if f.detachErr != nil {
		return nil, f.detachErr
	}
	return &iam.DetachUserPolicyOutput{}, nil
}

func (f *fakeIAM) ListAccessKeysPagesWithContext(ctx aws.Context, in *iam.ListAccessKeysInput, fn func(*iam.ListAccessKeysOutput, bool) bool, opts ...request.Option) error {
	name := aws.StringValue(in.UserName)
	f.record("ListAccessKeys:%s", name)

	u, _ := f.user(name)
	page := &iam.ListAccessKeysOutput{}
	for _, key := range u.keys {
		page.AccessKeyMetadata = append(page.AccessKeyMetadata, &iam.AccessKeyMetadata{AccessKeyId: aws.String(key)})
	}
	fn(page, true)
	return nil
}

func (f *fakeIAM) DeleteAccessKeyWithContext(ctx aws.Context, in *iam.DeleteAccessKeyInput, opts ...request.Option) (*iam.DeleteAccessKeyOutput, error) {
	f.record("DeleteAccessKey:%s:%s", aws.StringValue(in.UserName), aws.StringValue(in.AccessKeyId))
	if f.deleteKeyErr != nil {
		return nil, f.deleteKeyErr
	}
	return &iam.DeleteAccessKeyOutput{}, nil
}

func (f *fakeIAM) DeleteUserWithContext(ctx aws.Context, in *iam.DeleteUserInput, opts ...request.Option) (*iam.DeleteUserOutput, error) {
	f.record("DeleteUser:%s", aws.StringValue(in.UserName))
	if f.deleteUserErr != nil {
		return nil, f.deleteUserErr
	}
	return &iam.DeleteUserOutput{}, nil
}

func (f *fakeIAM) UpdateAccountPasswordPolicyWithContext(ctx aws.Context, in *iam.UpdateAccountPasswordPolicyInput, opts ...request.Option) (*iam.UpdateAccountPasswordPolicyOutput, error) {
	f.record("UpdateAccountPasswordPolicy")
	f.passwordPolicies = append(f.passwordPolicies, in)
	if f.passwordPolicyErr != nil {
		return nil, f.passwordPolicyErr
	}
	return &iam.UpdateAccountPasswordPolicyOutput{}, nil
}

type sentWarning struct {
	email        string
	userName     string
	daysInactive int
}

type fakeNotifier struct {
	sent []sentWarning
	err  error
}

func (f *fakeNotifier) SendWarning(ctx context.Context, email string, userName string, daysInactive int) error {
	f.sent = append(f.sent, sentWarning{email: email, userName: userName, daysInactive: daysInactive})
	return f.err
}

type fakeOrganizations struct {
	organizationsiface.OrganizationsAPI

	pages [][]*organizations.Account
	// errAfter fails the listing once that many pages were served.
	errAfter int
	err      error
}

func (f *fakeOrganizations) ListAccountsPagesWithContext(ctx aws.Context, in *organizations.ListAccountsInput, fn func(*organizations.ListAccountsOutput, bool) bool, opts ...request.Option) error {
	for i, accounts := range f.pages {
		if f.err != nil && i == f.errAfter {
			return f.err
		}
		if !fn(&organizations.ListAccountsOutput{Accounts: accounts}, i == len(f.pages)-1) {
			return nil
		}
	}
	if f.err != nil && f.errAfter >= len(f.pages) {
		return f.err
	}
	return nil
}

func orgAccount(id string, name string) *organizations.Account {
	return &organizations.Account{
		Id:     aws.String(id),
		Name:   aws.String(name),
		Status: aws.String(organizations.AccountStatusActive),
	}
}

// fakeSTS issues credentials whose access key id embeds the account id.
type fakeSTS struct {
	stsiface.STSAPI

	failAccounts map[string]bool
	assumed      []*sts.AssumeRoleInput
}

func accountFromRoleArn(roleArn string) string {
	parts := strings.Split(roleArn, ":")
	if len(parts) < 5 {
		return ""
	}
	return parts[4]
}

func (f *fakeSTS) AssumeRoleWithContext(ctx aws.Context, in *sts.AssumeRoleInput, opts ...request.Option) (*sts.AssumeRoleOutput, error) {
	f.assumed = append(f.assumed, in)

	accountId := accountFromRoleArn(aws.StringValue(in.RoleArn))
	if f.failAccounts[accountId] {
		return nil, errors.New("AccessDenied: not authorized to perform sts:AssumeRole")
	}

	return &sts.AssumeRoleOutput{Credentials: &sts.Credentials{
		AccessKeyId:     aws.String("ASIA" + accountId),
		SecretAccessKey: aws.String("secret-" + accountId),
		SessionToken:    aws.String("token-" + accountId),
		Expiration:      aws.Time(testNow.Add(time.Hour)),
	}}, nil
}

func testSession() *session.Session {
	return session.Must(session.NewSession(&aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials("AKIABASE", "base-secret", ""),
	}))
}

// newTestAssumer returns a RoleAssumer whose IAM clients are looked up by the
// account id carried in the assumed credentials.
func newTestAssumer(stsSession *fakeSTS, iamByAccount map[string]*fakeIAM) *RoleAssumer {
	return &RoleAssumer{
		stsSession:  stsSession,
		baseSession: testSession(),
		roleName:    "OrganizationAccountAccessRole",
		sessionName: "IAMUserCleanup",
		newIAM: func(sess *session.Session) iamiface.IAMAPI {
			creds, err := sess.Config.Credentials.Get()
			if err != nil {
				return nil
			}
			iamSession, ok := iamByAccount[strings.TrimPrefix(creds.AccessKeyID, "ASIA")]
			if !ok {
				return nil
			}
			return iamSession
		},
	}
}

func newTestProcessor(notifier WarningSender) *InactiveUsersProcessor {
	return &InactiveUsersProcessor{
		Notifier: notifier,
		Limiter:  ratelimit.NewUnlimited(),
		Now:      func() time.Time { return testNow },
	}
}
