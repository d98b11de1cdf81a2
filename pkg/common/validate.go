package common

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/sirupsen/logrus"
)

func sendsEmails(command string) bool {
	return command == "cleanup-users" || command == "lambda"
}

// CheckConfig reports every setting that would make the given command fail
// before it reaches AWS.
func CheckConfig(command string, config Config) error {
	var problems []error

	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		problems = append(problems, fmt.Errorf("invalid log level %q", config.LogLevel))
	}

	if sendsEmails(command) {
		if config.SESRegion == "" {
			problems = append(problems, errors.New("SES_REGION must not be empty"))
		}
		if _, err := mail.ParseAddress(config.EmailSender); err != nil {
			problems = append(problems, fmt.Errorf("EMAIL_SENDER %q is not a valid address", config.EmailSender))
		}
	}

	return errors.Join(problems...)
}
