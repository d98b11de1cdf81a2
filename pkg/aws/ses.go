package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/Qovery/pleco-iam/pkg/common"
)

// WarningSender notifies a user that their IAM user is about to be deleted.
type WarningSender interface {
	SendWarning(ctx context.Context, email string, userName string, daysInactive int) error
}

type Notifier struct {
	sesSession sesiface.SESAPI
	sender     string
	limiter    ratelimit.Limiter
}

// NewNotifier sends through SES in region. Sends are paced at one per second,
// the lowest sending rate SES grants an account.
func NewNotifier(sess *session.Session, region string, sender string) *Notifier {
	return &Notifier{
		sesSession: ses.New(sess, aws.NewConfig().WithRegion(region)),
		sender:     sender,
		limiter:    ratelimit.New(1),
	}
}

func warningEmail(userName string, daysInactive int) (string, string) {
	subject := fmt.Sprintf("Inactive AWS Account - Action Required for %s", userName)
	body := fmt.Sprintf(`Hello %s,

Your AWS IAM account has been inactive for %d days.
Per company security policy, inactive accounts will be deleted after %d days of inactivity.

If you need to retain access, please log into AWS as soon as possible.
If no action is taken, your account will be permanently deleted.

Best,
Security Team
`, userName, daysInactive, common.DeletionDays)

	return subject, body
}

func (n *Notifier) SendWarning(ctx context.Context, email string, userName string, daysInactive int) error {
	subject, body := warningEmail(userName, daysInactive)

	n.limiter.Take()
	_, err := n.sesSession.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(email)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{Data: aws.String(subject)},
			Body: &ses.Body{
				Text: &ses.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		log.Errorf("Can't send warning email to %s for user %s: %s", email, userName, err.Error())
		return fmt.Errorf("send warning to %s: %w", email, err)
	}

	log.Infof("Warning email sent to %s for user %s.", email, userName)
	return nil
}
