package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/sirupsen/logrus"
)

func CreateSessionWithoutRegion() (*session.Session, error) {
	sess, err := session.NewSession()
	if err != nil {
		logrus.Errorf("Can't connect to AWS: %s", err)
		return nil, err
	}
	return sess, nil
}

// createSessionWithCredentials derives a session from base that signs with
// the given temporary credentials instead of the base credential chain.
func createSessionWithCredentials(base *session.Session, accessKeyId string, secretAccessKey string, sessionToken string) *session.Session {
	return base.Copy(&aws.Config{
		Credentials: credentials.NewStaticCredentials(accessKeyId, secretAccessKey, sessionToken),
	})
}
