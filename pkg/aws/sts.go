package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	log "github.com/sirupsen/logrus"
)

// IAMAssumer hands out an IAM client scoped to a member account.
type IAMAssumer interface {
	AssumeIAM(ctx context.Context, accountId string) iamiface.IAMAPI
}

type RoleAssumer struct {
	stsSession  stsiface.STSAPI
	baseSession *session.Session
	roleName    string
	sessionName string
	newIAM      func(sess *session.Session) iamiface.IAMAPI
}

func NewRoleAssumer(baseSession *session.Session, roleName string, sessionName string) *RoleAssumer {
	return &RoleAssumer{
		stsSession:  sts.New(baseSession),
		baseSession: baseSession,
		roleName:    roleName,
		sessionName: sessionName,
		newIAM: func(sess *session.Session) iamiface.IAMAPI {
			return iam.New(sess)
		},
	}
}

func RoleArn(accountId string, roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", accountId, roleName)
}

// AssumeIAM returns nil when the role can't be assumed in the account.
func (r *RoleAssumer) AssumeIAM(ctx context.Context, accountId string) iamiface.IAMAPI {
	result, err := r.stsSession.AssumeRoleWithContext(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(RoleArn(accountId, r.roleName)),
		RoleSessionName: aws.String(r.sessionName),
	})
	if err != nil {
		log.Errorf("Can't assume role %s for account %s: %s", r.roleName, accountId, err.Error())
		return nil
	}

	creds := result.Credentials
	if creds == nil {
		log.Errorf("Can't assume role %s for account %s: no credentials returned", r.roleName, accountId)
		return nil
	}

	accountSession := createSessionWithCredentials(r.baseSession,
		aws.StringValue(creds.AccessKeyId),
		aws.StringValue(creds.SecretAccessKey),
		aws.StringValue(creds.SessionToken),
	)

	return r.newIAM(accountSession)
}
