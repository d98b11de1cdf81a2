package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	log "github.com/sirupsen/logrus"
)

type PasswordPolicy struct {
	MinimumPasswordLength      int64
	RequireSymbols             bool
	RequireNumbers             bool
	RequireUppercaseCharacters bool
	RequireLowercaseCharacters bool
	AllowUsersToChangePassword bool
	MaxPasswordAge             int64
	PasswordReusePrevention    int64
	HardExpiry                 bool
}

// OrganizationPasswordPolicy is applied as is to every member account.
func OrganizationPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinimumPasswordLength:      8,
		RequireSymbols:             true,
		RequireNumbers:             true,
		RequireUppercaseCharacters: true,
		RequireLowercaseCharacters: true,
		AllowUsersToChangePassword: true,
		MaxPasswordAge:             90,
		PasswordReusePrevention:    12,
		HardExpiry:                 false, // users are warned before expiry
	}
}

func (p PasswordPolicy) input() *iam.UpdateAccountPasswordPolicyInput {
	return &iam.UpdateAccountPasswordPolicyInput{
		MinimumPasswordLength:      aws.Int64(p.MinimumPasswordLength),
		RequireSymbols:             aws.Bool(p.RequireSymbols),
		RequireNumbers:             aws.Bool(p.RequireNumbers),
		RequireUppercaseCharacters: aws.Bool(p.RequireUppercaseCharacters),
		RequireLowercaseCharacters: aws.Bool(p.RequireLowercaseCharacters),
		AllowUsersToChangePassword: aws.Bool(p.AllowUsersToChangePassword),
		MaxPasswordAge:             aws.Int64(p.MaxPasswordAge),
		PasswordReusePrevention:    aws.Int64(p.PasswordReusePrevention),
		HardExpiry:                 aws.Bool(p.HardExpiry),
	}
}

func EnforcePasswordPolicy(ctx context.Context, iamSession iamiface.IAMAPI, accountId string, policy PasswordPolicy, dryRun bool) error {
	if dryRun {
		log.Infof("Password policy would be updated in account %s.", accountId)
		return nil
	}

	_, err := iamSession.UpdateAccountPasswordPolicyWithContext(ctx, policy.input())
	if err != nil {
		log.Errorf("Can't update password policy in account %s: %s", accountId, err.Error())
		return fmt.Errorf("update password policy in account %s: %w", accountId, err)
	}

	log.Infof("Password policy updated in account %s.", accountId)
	return nil
}
